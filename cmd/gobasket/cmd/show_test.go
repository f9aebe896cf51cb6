package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/store"
)

var runColumns = []string{
	"run_id", "job_name", "transactions", "min_support", "support_ratio", "iterations",
	"itemset_count", "rule_count", "duration_ms", "created_at",
}

var ruleColumns = []string{
	"premise", "consequence", "premise_support", "consequence_support", "support",
	"confidence", "lift", "leverage", "conviction",
}

// storeConfig returns a config with a destination database.
func storeConfig(t *testing.T) string {
	t.Helper()
	return writeTemp(t, "gobasket.yaml", `
destination:
  host: 127.0.0.1
  user: miner
  database: analytics

logging:
  level: error
`)
}

// useMockStore routes openRuleStore to a sqlmock connection.
func useMockStore(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	openRuleStore = func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store.RuleStore, func(), error) {
		rs, err := store.NewRuleStore(db, cfg.Store.LockTimeout, log)
		return rs, func() { _ = db.Close() }, err
	}
	return mock
}

func TestShowCommandStructure(t *testing.T) {
	assert.Equal(t, "show", showCmd.Use)
	assert.NotEmpty(t, showCmd.Short)
	assert.NotNil(t, showCmd.RunE)

	for _, name := range []string{"job", "format", "output", "no-color"} {
		assert.NotNil(t, showCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "j", showCmd.Flags().Lookup("job").Shorthand)
}

func TestRunShow_LatestRun(t *testing.T) {
	resetFlags(t)
	mock := useMockStore(t)

	cfgFile = storeConfig(t)
	showJob = "weekly"

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT run_id, job_name").
		WithArgs("weekly").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-1", "weekly", 4, 2, 0.5, 1, 4, 2, 12, created))
	mock.ExpectQuery("FROM gobasket_rule WHERE run_id = \\? ORDER BY rule_rank").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow([]byte(`["eggs"]`), []byte(`["milk"]`), 2, 3, 2, 1.0, 4.0/3.0, 0.125, nil).
			AddRow([]byte(`["bread"]`), []byte(`["milk"]`), 3, 3, 2, 2.0/3.0, 8.0/9.0, -0.0625, 0.75))

	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	defer showCmd.SetOut(nil)

	require.NoError(t, runShow(showCmd, nil))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, []interface{}{"eggs"}, records[0]["premise"])
	assert.Equal(t, "Infinity", records[0]["conviction"])
	assert.Equal(t, []interface{}{"bread"}, records[1]["premise"])
	assert.Equal(t, 0.75, records[1]["conviction"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunShow_Table(t *testing.T) {
	resetFlags(t)
	mock := useMockStore(t)

	cfgFile = storeConfig(t)
	showJob = "weekly"
	showFormat = "table"
	showNoColor = true

	mock.ExpectQuery("SELECT run_id, job_name").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("run-1", "weekly", 4, 2, 0.5, 1, 4, 1, 12, time.Now()))
	mock.ExpectQuery("FROM gobasket_rule").
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow([]byte(`["eggs"]`), []byte(`["milk"]`), 2, 3, 2, 1.0, 4.0/3.0, 0.125, nil))

	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	defer showCmd.SetOut(nil)

	require.NoError(t, runShow(showCmd, nil))
	assert.Contains(t, buf.String(), "PREMISE")
	assert.Contains(t, buf.String(), "∞")
	assert.Contains(t, buf.String(), "1 rule")
}

func TestRunShow_NoRuns(t *testing.T) {
	resetFlags(t)
	mock := useMockStore(t)

	cfgFile = storeConfig(t)
	showJob = "weekly"

	mock.ExpectQuery("SELECT run_id, job_name").WillReturnRows(sqlmock.NewRows(runColumns))

	err := runShow(showCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNoRuns)
	assert.Contains(t, err.Error(), `"weekly"`)
}

func TestRunShow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr string
	}{
		{
			name:    "job required",
			setup:   func(t *testing.T) {},
			wantErr: "--job is required",
		},
		{
			name: "missing config",
			setup: func(t *testing.T) {
				showJob = "weekly"
				cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr: "failed to load config",
		},
		{
			name: "no destination",
			setup: func(t *testing.T) {
				showJob = "weekly"
				cfgFile = writeTemp(t, "gobasket.yaml", "logging:\n  level: error\n")
			},
			wantErr: "destination.host",
		},
		{
			name: "unknown format",
			setup: func(t *testing.T) {
				showJob = "weekly"
				showFormat = "xml"
				cfgFile = storeConfig(t)
			},
			wantErr: "output.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			tt.setup(t)

			err := runShow(showCmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
