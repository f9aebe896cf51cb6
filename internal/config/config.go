// Package config provides configuration structures and loading for gobasket.
package config

// Input types supported by a job.
const (
	InputFile  = "file"
	InputMySQL = "mysql"
)

// Config represents the complete application configuration.
type Config struct {
	Source      DatabaseConfig       `yaml:"source" mapstructure:"source"`
	Destination DatabaseConfig       `yaml:"destination" mapstructure:"destination"`
	Store       StoreConfig          `yaml:"store" mapstructure:"store"`
	Jobs        map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Mining      MiningConfig         `yaml:"mining" mapstructure:"mining"`
	Output      OutputConfig         `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// StoreConfig controls persistence of mined rules into the destination database.
type StoreConfig struct {
	Enabled     bool `yaml:"enabled" mapstructure:"enabled"`
	LockTimeout int  `yaml:"lock_timeout" mapstructure:"lock_timeout"` // seconds
}

// JobConfig represents a single mining job.
type JobConfig struct {
	Input  InputConfig   `yaml:"input" mapstructure:"input"`
	Mining *MiningConfig `yaml:"mining,omitempty" mapstructure:"mining"`
}

// InputConfig describes where a job reads its transactions from.
type InputConfig struct {
	Type              string `yaml:"type" mapstructure:"type"` // "file" or "mysql"
	Path              string `yaml:"path" mapstructure:"path"`
	Delimiter         string `yaml:"delimiter" mapstructure:"delimiter"` // empty: "," for .csv, whitespace otherwise
	Table             string `yaml:"table" mapstructure:"table"`
	TransactionColumn string `yaml:"transaction_column" mapstructure:"transaction_column"`
	ItemColumn        string `yaml:"item_column" mapstructure:"item_column"`
	Where             string `yaml:"where" mapstructure:"where"`
}

// MiningConfig holds the FP-Growth and rule generation settings.
type MiningConfig struct {
	MinSupportRatio        float64  `yaml:"min_support_ratio" mapstructure:"min_support_ratio"`
	UpperBoundSupport      float64  `yaml:"upper_bound_support" mapstructure:"upper_bound_support"`
	LowerBoundSupportDelta float64  `yaml:"lower_bound_support_delta" mapstructure:"lower_bound_support_delta"`
	MinConfidence          float64  `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxRules               int      `yaml:"max_rules" mapstructure:"max_rules"` // -1 = unbounded
	MaxItems               int      `yaml:"max_items" mapstructure:"max_items"` // -1 = unbounded
	RankingMetric          string   `yaml:"ranking_metric" mapstructure:"ranking_metric"`
	MinLift                *float64 `yaml:"min_lift,omitempty" mapstructure:"min_lift"`
	MinLeverage            *float64 `yaml:"min_leverage,omitempty" mapstructure:"min_leverage"`
	TopNScope              string   `yaml:"top_n_scope" mapstructure:"top_n_scope"` // global or consequent_size
	ParallelWorkers        int      `yaml:"parallel_workers" mapstructure:"parallel_workers"`
}

// OutputConfig represents rendering settings for mined rules.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // json or table
	Path   string `yaml:"path" mapstructure:"path"`     // stdout or file path
	Color  bool   `yaml:"color" mapstructure:"color"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultMining returns the mining defaults. They match the classic FP-Growth
// run: search from 100% support down to 5% in steps of 5% until 10 rules
// with confidence >= 0.9 are found.
func DefaultMining() MiningConfig {
	return MiningConfig{
		MinSupportRatio:        0.05,
		UpperBoundSupport:      1.0,
		LowerBoundSupportDelta: 0.05,
		MinConfidence:          0.9,
		MaxRules:               10,
		MaxItems:               -1,
		RankingMetric:          "confidence",
		TopNScope:              "global",
		ParallelWorkers:        0,
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Destination: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     5,
			MaxIdleConnections: 2,
		},
		Store: StoreConfig{
			Enabled:     false,
			LockTimeout: 10,
		},
		Mining: DefaultMining(),
		Output: OutputConfig{
			Format: "json",
			Path:   "stdout",
			Color:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// UsesMySQL reports whether any job reads transactions from MySQL.
func (c *Config) UsesMySQL() bool {
	for _, job := range c.Jobs {
		if job.Input.Type == InputMySQL {
			return true
		}
	}
	return false
}

// GetJobMining returns the mining config for a job by name, falling back to global if not set.
func (c *Config) GetJobMining(jobName string) MiningConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Mining
	}
	return job.GetJobMining(c.Mining)
}

// GetJobMining returns the mining config for a job, falling back to global if not set.
func (jc *JobConfig) GetJobMining(global MiningConfig) MiningConfig {
	if jc.Mining == nil {
		return global
	}

	// Merge job-specific with global defaults
	result := global
	m := jc.Mining
	if m.MinSupportRatio > 0 {
		result.MinSupportRatio = m.MinSupportRatio
	}
	if m.UpperBoundSupport > 0 {
		result.UpperBoundSupport = m.UpperBoundSupport
	}
	if m.LowerBoundSupportDelta > 0 {
		result.LowerBoundSupportDelta = m.LowerBoundSupportDelta
	}
	if m.MinConfidence > 0 {
		result.MinConfidence = m.MinConfidence
	}
	if m.MaxRules != 0 {
		result.MaxRules = m.MaxRules
	}
	if m.MaxItems != 0 {
		result.MaxItems = m.MaxItems
	}
	if m.RankingMetric != "" {
		result.RankingMetric = m.RankingMetric
	}
	if m.MinLift != nil {
		result.MinLift = m.MinLift
	}
	if m.MinLeverage != nil {
		result.MinLeverage = m.MinLeverage
	}
	if m.TopNScope != "" {
		result.TopNScope = m.TopNScope
	}
	if m.ParallelWorkers > 0 {
		result.ParallelWorkers = m.ParallelWorkers
	}
	return result
}
