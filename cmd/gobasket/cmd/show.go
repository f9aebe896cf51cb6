package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/database"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/report"
	"github.com/dbsmedya/gobasket/internal/store"
)

var (
	showJob     string
	showFormat  string
	showOutput  string
	showNoColor bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the rules of the latest stored run of a job",
	Long: `Show reads the most recent run stored for a job with "mine --store"
and prints its rules in rank order.

Examples:
  gobasket show --job weekly_baskets
  gobasket show --job weekly_baskets --format table`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showJob, "job", "j", "",
		"Job name the run was stored under")
	showCmd.Flags().StringVar(&showFormat, "format", "",
		"Output format (json, table)")
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "",
		"Write rules to this file instead of stdout")
	showCmd.Flags().BoolVar(&showNoColor, "no-color", false,
		"Disable colored table output")

	rootCmd.AddCommand(showCmd)
}

// openRuleStore connects to the destination database. Replaced in tests.
var openRuleStore = func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store.RuleStore, func(), error) {
	manager := database.NewManager(cfg)
	if err := manager.ConnectDestination(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to destination: %w", err)
	}
	rs, err := store.NewRuleStore(manager.Destination, cfg.Store.LockTimeout, log)
	if err != nil {
		_ = manager.Close()
		return nil, nil, err
	}
	return rs, func() { _ = manager.Close() }, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showJob == "" {
		return fmt.Errorf("--job is required")
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	overrides.OutputFormat = showFormat
	overrides.OutputPath = showOutput
	overrides.NoColor = showNoColor
	cfg.ApplyOverrides(overrides)

	// stored runs live in the destination database
	cfg.Store.Enabled = true
	if err := cfg.ValidateRuntime(); err != nil {
		return err
	}

	renderer, err := report.New(cfg.Output.Format, cfg.Output.Color)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := commandContext(cmd)
	rs, closeStore, err := openRuleStore(ctx, cfg, log.WithJob(showJob))
	if err != nil {
		return err
	}
	defer closeStore()

	run, err := rs.LatestRun(ctx, showJob)
	if err != nil {
		return err
	}
	rules, err := rs.Rules(ctx, run.ID)
	if err != nil {
		return err
	}

	log.Infow("Showing stored run",
		"job", run.JobName,
		"run_id", run.ID,
		"created_at", run.CreatedAt,
		"transactions", run.Transactions,
		"min_support", run.MinSupport,
		"rules", len(rules))

	out, closeOut, err := openOutput(cmd, cfg.Output.Path)
	if err != nil {
		return err
	}
	defer closeOut()

	return renderer.Render(out, rules)
}
