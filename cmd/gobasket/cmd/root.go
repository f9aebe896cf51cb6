package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gobasket/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile       string
	logLevel      string
	logFormat     string
	minSupport    float64
	minConfidence float64
	maxRules      int
	metric        string
)

var rootCmd = &cobra.Command{
	Use:   "gobasket",
	Short: "Market-basket affinity analysis with FP-Growth",
	Long: `Mine frequent itemsets and association rules from transaction data.

Transactions are read from delimited text files or from a MySQL table with
one row per (transaction, item). Rules are ranked by confidence, lift,
leverage or conviction and written as JSON or as a table, and can be stored
in a MySQL database.

Features:
  - FP-Growth frequent itemset mining
  - Iterative support lowering until enough rules are found
  - File and MySQL transaction sources
  - Rule store with per-job advisory locking`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gobasket.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Mining overrides
	rootCmd.PersistentFlags().Float64Var(&minSupport, "min-support", 0,
		"Override minimum support ratio (0-1)")
	rootCmd.PersistentFlags().Float64Var(&minConfidence, "min-confidence", 0,
		"Override minimum confidence (0-1)")
	rootCmd.PersistentFlags().IntVar(&maxRules, "max-rules", 0,
		"Override number of rules to keep (-1 = unbounded)")
	rootCmd.PersistentFlags().StringVar(&metric, "metric", "",
		"Override ranking metric (confidence, lift, leverage, conviction)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	o := config.Overrides{
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
		Metric:        metric,
	}
	if rootCmd.PersistentFlags().Changed("max-rules") {
		v := maxRules
		o.MaxRules = &v
	}
	return o
}
