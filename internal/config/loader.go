package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOrDefault behaves like Load but returns DefaultConfig when the file
// does not exist. Ad-hoc runs (mine --input) need no config file.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	for _, db := range []*DatabaseConfig{&cfg.Source, &cfg.Destination} {
		db.Host = expandEnvVar(db.Host)
		db.User = expandEnvVar(db.User)
		db.Password = expandEnvVar(db.Password)
		db.Database = expandEnvVar(db.Database)
	}

	// Map values are copies; write each job back after expanding.
	for name, job := range cfg.Jobs {
		job.Input.Path = expandEnvVar(job.Input.Path)
		job.Input.Table = expandEnvVar(job.Input.Table)
		cfg.Jobs[name] = job
	}

	cfg.Output.Path = expandEnvVar(cfg.Output.Path)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// GetJob retrieves a specific job configuration by name.
func (c *Config) GetJob(name string) (*JobConfig, error) {
	job, exists := c.Jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %q not found in configuration", name)
	}
	return &job, nil
}

// ListJobs returns all job names defined in the configuration.
func (c *Config) ListJobs() []string {
	jobs := make([]string, 0, len(c.Jobs))
	for name := range c.Jobs {
		jobs = append(jobs, name)
	}
	return jobs
}

// Overrides carries CLI flag values. Zero values mean "not set"; negative
// MaxRules is meaningful (-1 = unbounded), so it uses a pointer.
type Overrides struct {
	LogLevel      string
	LogFormat     string
	MinSupport    float64
	MinConfidence float64
	MaxRules      *int
	Metric        string
	OutputFormat  string
	OutputPath    string
	NoColor       bool
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.OutputFormat != "" {
		c.Output.Format = o.OutputFormat
	}
	if o.OutputPath != "" {
		c.Output.Path = o.OutputPath
	}
	if o.NoColor {
		c.Output.Color = false
	}
}

// ApplyJobOverrides combines global, job-specific and CLI mining values.
// CLI values win.
func (c *Config) ApplyJobOverrides(jobName string, o Overrides) MiningConfig {
	mining := c.GetJobMining(jobName)

	if o.MinSupport > 0 {
		mining.MinSupportRatio = o.MinSupport
		if mining.UpperBoundSupport < o.MinSupport {
			mining.UpperBoundSupport = o.MinSupport
		}
	}
	if o.MinConfidence > 0 {
		mining.MinConfidence = o.MinConfidence
	}
	if o.MaxRules != nil {
		mining.MaxRules = *o.MaxRules
	}
	if o.Metric != "" {
		mining.RankingMetric = o.Metric
	}

	return mining
}
