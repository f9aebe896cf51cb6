package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gobasket/internal/config"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
	assert.NotEmpty(t, validateCmd.Long)
	assert.NotNil(t, validateCmd.RunE)
	assert.NotNil(t, validateCmd.Flags().Lookup("skip-connect"))
}

func TestRunValidate_SkipConnect(t *testing.T) {
	resetFlags(t)

	cfgFile = fileJobConfig(t, "groceries.txt")
	validateSkipConnect = true

	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	defer validateCmd.SetOut(nil)

	require.NoError(t, runValidate(validateCmd, nil))
	out := buf.String()
	assert.Contains(t, out, "Jobs found: 2")
	assert.Contains(t, out, "--- Job: groceries ---")
	assert.Contains(t, out, "mysql shop.order_items (order_id, sku) WHERE created_at >= '2024-01-01'")
	assert.Contains(t, out, "Validation Complete")
}

func TestRunValidate_NoDatabases(t *testing.T) {
	resetFlags(t)

	cfgFile = writeTemp(t, "gobasket.yaml", `
jobs:
  local:
    input:
      type: file
      path: baskets.txt
`)

	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	defer validateCmd.SetOut(nil)

	require.NoError(t, runValidate(validateCmd, nil))
	assert.Contains(t, buf.String(), "No database connections required")
}

func TestRunValidate_InvalidIdentifier(t *testing.T) {
	resetFlags(t)

	cfgFile = writeTemp(t, "gobasket.yaml", `
source:
  host: 127.0.0.1
  user: miner
  database: shop
jobs:
  bad:
    input:
      type: mysql
      table: "orders; DROP TABLE x"
      transaction_column: order_id
      item_column: sku
`)
	validateSkipConnect = true

	var buf bytes.Buffer
	validateCmd.SetOut(&buf)
	defer validateCmd.SetOut(nil)

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "invalid input table")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	resetFlags(t)

	cfgFile = writeTemp(t, "gobasket.yaml", `
mining:
  min_confidence: 2
jobs:
  local:
    input:
      type: file
`)

	err := runValidate(validateCmd, nil)
	require.Error(t, err)

	var verrs config.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.GreaterOrEqual(t, len(verrs), 2)
}

func TestRunValidate_MissingConfig(t *testing.T) {
	resetFlags(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestDescribeInput(t *testing.T) {
	assert.Equal(t, "file a.txt", describeInput(&config.InputConfig{Type: "file", Path: "a.txt"}))
	assert.Equal(t, `file a.txt (delimiter ";")`, describeInput(&config.InputConfig{Type: "file", Path: "a.txt", Delimiter: ";"}))
	assert.Equal(t, "mysql t (tx, item)", describeInput(&config.InputConfig{
		Type: "mysql", Table: "t", TransactionColumn: "tx", ItemColumn: "item",
	}))
}
