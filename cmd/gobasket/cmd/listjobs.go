package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gobasket/internal/config"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List all jobs defined in configuration",
	Long: `List-jobs displays all mining jobs defined in the configuration file
along with their input and mining settings.

Example:
  gobasket list-jobs --config gobasket.yaml`,
	RunE: runListJobs,
}

func init() {
	rootCmd.AddCommand(listJobsCmd)
}

func runListJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jobNames := cfg.ListJobs()
	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	// Sort job names for consistent output
	sort.Strings(jobNames)

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}

		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Input:         %s\n", describeInput(&job.Input))

		m := job.GetJobMining(cfg.Mining)
		cmd.Printf("   Support:       %.4f (search from %.4f, step %.4f)\n",
			m.MinSupportRatio, m.UpperBoundSupport, m.LowerBoundSupportDelta)
		cmd.Printf("   Confidence:    %.4f\n", m.MinConfidence)
		cmd.Printf("   Rules:         %s by %s\n", formatLimit(m.MaxRules), m.RankingMetric)

		if job.Mining != nil {
			cmd.Printf("   Mining:        Custom\n")
		}

		// Add spacing between jobs
		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}

func formatLimit(n int) string {
	if n < 0 {
		return "all"
	}
	return fmt.Sprintf("top %d", n)
}
