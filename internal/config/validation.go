package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Databases are only required when something uses them
	if c.UsesMySQL() {
		errors = append(errors, c.validateDatabase("source", &c.Source)...)
	}
	errors = append(errors, c.validateStore()...)

	if len(c.Jobs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "jobs",
			Message: "at least one job must be defined",
		})
	}
	for name, job := range c.Jobs {
		errors = append(errors, c.validateJob(name, &job)...)
	}

	errors = append(errors, ValidateMining("mining", &c.Mining)...)
	errors = append(errors, c.validateRuntime()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateRuntime checks only the sections needed for an ad-hoc run without jobs.
func (c *Config) ValidateRuntime() error {
	errors := ValidateMining("mining", &c.Mining)
	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateRuntime()...)
	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateStore() ValidationErrors {
	if !c.Store.Enabled {
		return nil
	}
	errors := c.validateDatabase("destination", &c.Destination)
	if c.Store.LockTimeout < -1 {
		errors = append(errors, ValidationError{
			Field:   "store.lock_timeout",
			Message: "lock_timeout must be -1 (wait forever) or greater",
		})
	}
	return errors
}

func (c *Config) validateRuntime() ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)
	return errors
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateJob(name string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("jobs.%s", name)

	errors = append(errors, ValidateInput(prefix+".input", &job.Input)...)

	if job.Mining != nil {
		merged := job.GetJobMining(c.Mining)
		errors = append(errors, ValidateMining(prefix+".mining", &merged)...)
	}

	return errors
}

// ValidateInput checks a job input section.
func ValidateInput(prefix string, in *InputConfig) ValidationErrors {
	var errors ValidationErrors

	switch in.Type {
	case InputFile:
		if in.Path == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".path",
				Message: "path is required for file input",
			})
		}
	case InputMySQL:
		if in.Table == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".table",
				Message: "table is required for mysql input",
			})
		}
		if in.TransactionColumn == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".transaction_column",
				Message: "transaction_column is required for mysql input",
			})
		}
		if in.ItemColumn == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".item_column",
				Message: "item_column is required for mysql input",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".type",
			Message: "type must be 'file' or 'mysql'",
		})
	}

	return errors
}

// ValidateMining checks mining thresholds. Ratios live in [0,1] and
// max_rules accepts -1 for "unbounded".
func ValidateMining(prefix string, m *MiningConfig) ValidationErrors {
	var errors ValidationErrors

	if m.MinSupportRatio < 0 || m.MinSupportRatio > 1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".min_support_ratio",
			Message: "min_support_ratio must be between 0 and 1",
		})
	}

	if m.UpperBoundSupport < m.MinSupportRatio || m.UpperBoundSupport > 1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".upper_bound_support",
			Message: "upper_bound_support must be between min_support_ratio and 1",
		})
	}

	if m.LowerBoundSupportDelta < 0 || m.LowerBoundSupportDelta > 1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".lower_bound_support_delta",
			Message: "lower_bound_support_delta must be between 0 and 1",
		})
	}

	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".min_confidence",
			Message: "min_confidence must be between 0 and 1",
		})
	}

	if m.MaxRules < -1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_rules",
			Message: "max_rules must be -1 (unbounded) or greater",
		})
	}

	if m.MaxItems == 0 || m.MaxItems < -1 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_items",
			Message: "max_items must be -1 (unbounded) or positive",
		})
	}

	validMetrics := map[string]bool{"confidence": true, "lift": true, "leverage": true, "conviction": true, "": true}
	if !validMetrics[m.RankingMetric] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".ranking_metric",
			Message: "ranking_metric must be 'confidence', 'lift', 'leverage', or 'conviction'",
		})
	}

	validScopes := map[string]bool{"global": true, "consequent_size": true, "": true}
	if !validScopes[m.TopNScope] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".top_n_scope",
			Message: "top_n_scope must be 'global' or 'consequent_size'",
		})
	}

	if m.MinLift != nil && *m.MinLift < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".min_lift",
			Message: "min_lift cannot be negative",
		})
	}

	if m.MinLeverage != nil && (*m.MinLeverage < -0.25 || *m.MinLeverage > 0.25) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".min_leverage",
			Message: "min_leverage must be between -0.25 and 0.25",
		})
	}

	if m.ParallelWorkers < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".parallel_workers",
			Message: "parallel_workers cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	validFormats := map[string]bool{"json": true, "table": true, "": true}
	if !validFormats[c.Output.Format] {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: "format must be 'json' or 'table'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
