package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/database"
)

// jobTarget is the job a command runs: a named job from the configuration
// file or an ad-hoc file given with --input.
type jobTarget struct {
	name  string
	job   *config.JobConfig
	adhoc bool
}

// loadTarget loads the configuration and resolves the job. Exactly one of
// jobName and input must be set. Ad-hoc runs don't require a config file.
func loadTarget(jobName, input, delimiter string) (*config.Config, *jobTarget, error) {
	switch {
	case jobName == "" && input == "":
		return nil, nil, fmt.Errorf("either --job or --input is required")
	case jobName != "" && input != "":
		return nil, nil, fmt.Errorf("--job and --input are mutually exclusive")
	}

	configFile := GetConfigFile()

	if input != "" {
		cfg, err := config.LoadOrDefault(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		return cfg, &jobTarget{
			name: name,
			job: &config.JobConfig{Input: config.InputConfig{
				Type:      config.InputFile,
				Path:      input,
				Delimiter: delimiter,
			}},
			adhoc: true,
		}, nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	job, err := cfg.GetJob(jobName)
	if err != nil {
		return nil, nil, err
	}
	if delimiter != "" {
		job.Input.Delimiter = delimiter
	}
	return cfg, &jobTarget{name: jobName, job: job}, nil
}

// validate checks the configuration and the effective mining settings of
// the target.
func (t *jobTarget) validate(cfg *config.Config, mining *config.MiningConfig) error {
	var errs config.ValidationErrors

	if t.adhoc {
		if err := cfg.ValidateRuntime(); err != nil {
			return err
		}
	} else if err := cfg.Validate(); err != nil {
		return err
	}

	errs = append(errs, config.ValidateInput("input", &t.job.Input)...)
	errs = append(errs, config.ValidateMining("mining", mining)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// needsDatabase reports whether the run opens a MySQL connection.
func (t *jobTarget) needsDatabase(cfg *config.Config) bool {
	return t.job.Input.Type == config.InputMySQL || cfg.Store.Enabled
}

// newManager returns a database manager when the run needs one.
func (t *jobTarget) newManager(cfg *config.Config) *database.Manager {
	if !t.needsDatabase(cfg) {
		return nil
	}
	return database.NewManager(cfg)
}
