package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigFile(t *testing.T) {
	resetFlags(t)

	tests := []struct {
		name     string
		cfgValue string
	}{
		{"empty", ""},
		{"custom config file", "/path/to/custom.yaml"},
		{"config file with spaces", "/path/to/my config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgFile = tt.cfgValue
			assert.Equal(t, tt.cfgValue, GetConfigFile())
		})
	}
}

func TestGetCLIOverrides(t *testing.T) {
	resetFlags(t)

	logLevel = "debug"
	logFormat = "json"
	minSupport = 0.2
	minConfidence = 0.7
	metric = "lift"

	o := GetCLIOverrides()
	assert.Equal(t, "debug", o.LogLevel)
	assert.Equal(t, "json", o.LogFormat)
	assert.Equal(t, 0.2, o.MinSupport)
	assert.Equal(t, 0.7, o.MinConfidence)
	assert.Equal(t, "lift", o.Metric)
	assert.Nil(t, o.MaxRules, "max-rules is only passed on when the flag was set")
}

func TestGetCLIOverrides_MaxRulesChanged(t *testing.T) {
	resetFlags(t)

	flag := rootCmd.PersistentFlags().Lookup("max-rules")
	require.NotNil(t, flag)
	require.NoError(t, rootCmd.PersistentFlags().Set("max-rules", "-1"))
	t.Cleanup(func() {
		flag.Changed = false
		_ = flag.Value.Set("0")
	})

	o := GetCLIOverrides()
	require.NotNil(t, o.MaxRules)
	assert.Equal(t, -1, *o.MaxRules)
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "log-format", "min-support", "min-confidence", "max-rules", "metric"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "c", rootCmd.PersistentFlags().Lookup("config").Shorthand)
}
