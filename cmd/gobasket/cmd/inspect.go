package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gobasket/internal/database"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/pipeline"
	"github.com/dbsmedya/gobasket/internal/report"
)

var (
	inspectJob       string
	inspectInput     string
	inspectDelimiter string
	inspectTop       int
	inspectNoColor   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show item supports and FP-tree statistics without mining",
	Long: `Inspect loads the transactions of a job and reports how they look at
the job's min_support_ratio: transaction counts, the frequent items in
canonical order with their supports, how many items fall below the
threshold, and the size of the resulting FP-tree.

Examples:
  gobasket inspect --job weekly_baskets
  gobasket inspect --input groceries.csv --min-support 0.2 --top 20`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectJob, "job", "j", "",
		"Job name from configuration file")
	inspectCmd.Flags().StringVarP(&inspectInput, "input", "i", "",
		"Transactions file to inspect without a configured job")
	inspectCmd.Flags().StringVar(&inspectDelimiter, "delimiter", "",
		"Item delimiter (default: \",\" for .csv files, whitespace otherwise)")
	inspectCmd.Flags().IntVar(&inspectTop, "top", 25,
		"Number of items to list (0 = all)")
	inspectCmd.Flags().BoolVar(&inspectNoColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, target, err := loadTarget(inspectJob, inspectInput, inspectDelimiter)
	if err != nil {
		return err
	}

	overrides := GetCLIOverrides()
	overrides.NoColor = inspectNoColor
	cfg.ApplyOverrides(overrides)
	// inspect never writes rules
	cfg.Store.Enabled = false
	mining := cfg.ApplyJobOverrides(target.name, overrides)

	if err := target.validate(cfg, &mining); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dbManager := target.newManager(cfg)
	if dbManager != nil {
		defer func() { _ = dbManager.Close() }()
	}

	ctx, stop := database.SetupSignalHandler(commandContext(cmd), func(sig os.Signal) {
		log.Warnf("Received %s - stopping inspection", sig)
	})
	defer stop()

	runner, err := pipeline.NewRunner(cfg, target.name, target.job, mining, dbManager, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	inspection, err := runner.Inspect(ctx)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	return report.RenderInspection(cmd.OutOrStdout(), inspection, cfg.Output.Color, inspectTop)
}
