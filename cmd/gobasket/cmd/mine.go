package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gobasket/internal/database"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/pipeline"
	"github.com/dbsmedya/gobasket/internal/report"
)

var (
	mineJob       string
	mineInput     string
	mineDelimiter string
	mineFormat    string
	mineOutput    string
	mineStore     bool
	mineNoColor   bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine association rules for a job or a transactions file",
	Long: `Mine loads the transactions of a job, finds frequent itemsets with
FP-Growth and prints the best association rules.

The search starts at upper_bound_support and lowers the support ratio by
lower_bound_support_delta until max_rules rules reach min_confidence or
min_support_ratio has been tried.

Examples:
  gobasket mine --config gobasket.yaml --job weekly_baskets
  gobasket mine --input groceries.csv --min-support 0.1 --format table
  gobasket mine --job weekly_baskets --store`,
	RunE: runMine,
}

func init() {
	mineCmd.Flags().StringVarP(&mineJob, "job", "j", "",
		"Job name from configuration file")
	mineCmd.Flags().StringVarP(&mineInput, "input", "i", "",
		"Transactions file to mine without a configured job")
	mineCmd.Flags().StringVar(&mineDelimiter, "delimiter", "",
		"Item delimiter (default: \",\" for .csv files, whitespace otherwise)")
	mineCmd.Flags().StringVar(&mineFormat, "format", "",
		"Output format (json, table)")
	mineCmd.Flags().StringVarP(&mineOutput, "output", "o", "",
		"Write rules to this file instead of stdout")
	mineCmd.Flags().BoolVar(&mineStore, "store", false,
		"Store the rules in the destination database")
	mineCmd.Flags().BoolVar(&mineNoColor, "no-color", false,
		"Disable colored table output")

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	cfg, target, err := loadTarget(mineJob, mineInput, mineDelimiter)
	if err != nil {
		return err
	}

	overrides := GetCLIOverrides()
	overrides.OutputFormat = mineFormat
	overrides.OutputPath = mineOutput
	overrides.NoColor = mineNoColor
	cfg.ApplyOverrides(overrides)
	if mineStore {
		cfg.Store.Enabled = true
	}
	mining := cfg.ApplyJobOverrides(target.name, overrides)

	if err := target.validate(cfg, &mining); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("Starting mining run",
		"job", target.name,
		"config", GetConfigFile(),
		"min_support_ratio", mining.MinSupportRatio,
		"min_confidence", mining.MinConfidence,
		"max_rules", mining.MaxRules,
		"ranking_metric", mining.RankingMetric,
	)

	dbManager := target.newManager(cfg)
	if dbManager != nil {
		defer func() { _ = dbManager.Close() }()
	}

	// Handle graceful shutdown
	ctx, stop := database.SetupSignalHandler(commandContext(cmd), func(sig os.Signal) {
		log.Warnf("Received %s - stopping mining run", sig)
	})
	defer stop()

	runner, err := pipeline.NewRunner(cfg, target.name, target.job, mining, dbManager, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Mining run cancelled by user")
			return nil
		}
		return fmt.Errorf("mining run failed: %w", err)
	}

	out, closeOut, err := openOutput(cmd, cfg.Output.Path)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := runner.Render(out, result); err != nil {
		return err
	}

	if result.RunID != "" {
		log.Infow("Rules stored", "run_id", result.RunID)
	}
	return nil
}

// openOutput returns the command's stdout for "" or "stdout" and a file
// otherwise.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "stdout" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	w, err := report.OpenOutput(path)
	if err != nil {
		return nil, nil, err
	}
	return w, func() { _ = w.Close() }, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
