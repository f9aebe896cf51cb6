package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/database"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/pipeline"
	"github.com/dbsmedya/gobasket/internal/source"
)

var validateSkipConnect bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and database connectivity",
	Long: `Validate checks the configuration file and the databases it uses.

Checks performed:
  - Configuration syntax and required fields
  - Mining options of every job (global and per-job overrides)
  - Input table and column names of MySQL jobs
  - Source connectivity when a job reads MySQL
  - Destination connectivity when the rule store is enabled

Example:
  gobasket validate --config gobasket.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipConnect, "skip-connect", false,
		"Only validate the configuration file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	cfg.ApplyOverrides(GetCLIOverrides())

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Jobs found: %d\n\n", len(cfg.Jobs))

	names := cfg.ListJobs()
	sort.Strings(names)

	hasErrors := false
	for _, name := range names {
		job, _ := cfg.GetJob(name)
		cmd.Printf("--- Job: %s ---\n", name)
		cmd.Printf("Input: %s\n", describeInput(&job.Input))

		if _, err := pipeline.OptionsFromConfig(job.GetJobMining(cfg.Mining)); err != nil {
			cmd.Printf("❌ Mining options invalid: %v\n\n", err)
			hasErrors = true
			continue
		}
		if job.Input.Type == config.InputMySQL {
			// a nil connection is fine; only identifiers are checked here
			if _, err := source.NewMySQLLoader(nil, &job.Input, log); err != nil {
				cmd.Printf("❌ Input invalid: %v\n\n", err)
				hasErrors = true
				continue
			}
		}
		cmd.Printf("✅ Job configuration valid\n\n")
	}

	if !validateSkipConnect {
		if err := checkConnectivity(cmd, cfg); err != nil {
			cmd.Printf("❌ %v\n", err)
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more jobs")
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Println("✅ Configuration validated successfully")
	return nil
}

func checkConnectivity(cmd *cobra.Command, cfg *config.Config) error {
	if !cfg.UsesMySQL() && !cfg.Store.Enabled {
		cmd.Println("No database connections required")
		return nil
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
	defer cancel()

	dbManager := database.NewManager(cfg)
	dbManager.MaxRetries = 1
	defer func() { _ = dbManager.Close() }()

	if cfg.UsesMySQL() {
		if err := dbManager.ConnectSource(ctx); err != nil {
			return err
		}
		cmd.Printf("✅ Source reachable (%s)\n", cfg.Source.Host)
	}
	if cfg.Store.Enabled {
		if err := dbManager.ConnectDestination(ctx); err != nil {
			return err
		}
		cmd.Printf("✅ Destination reachable (%s)\n", cfg.Destination.Host)
	}
	return dbManager.Ping(ctx)
}

func describeInput(in *config.InputConfig) string {
	if in.Type == config.InputMySQL {
		s := fmt.Sprintf("mysql %s (%s, %s)", in.Table, in.TransactionColumn, in.ItemColumn)
		if in.Where != "" {
			s += " WHERE " + in.Where
		}
		return s
	}
	if in.Delimiter != "" {
		return fmt.Sprintf("file %s (delimiter %q)", in.Path, in.Delimiter)
	}
	return "file " + in.Path
}
