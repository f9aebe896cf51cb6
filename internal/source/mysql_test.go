package source

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/fpgrowth"
)

func mysqlInput() *config.InputConfig {
	return &config.InputConfig{
		Type:              config.InputMySQL,
		Table:             "shop.order_items",
		TransactionColumn: "order_id",
		ItemColumn:        "sku",
	}
}

func TestNewMySQLLoader_Query(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	in := mysqlInput()
	l, err := NewMySQLLoader(db, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT `order_id`, `sku` FROM `shop`.`order_items` WHERE 1=1 ORDER BY `order_id`", l.Query())
	assert.Equal(t, "mysql:shop.order_items", l.Describe())

	in.Where = "created_at >= '2024-01-01'"
	l, err = NewMySQLLoader(db, in, nil)
	require.NoError(t, err)
	assert.Contains(t, l.Query(), "WHERE created_at >= '2024-01-01' ORDER BY")
}

func TestNewMySQLLoader_InvalidNames(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tests := []struct {
		name   string
		mutate func(*config.InputConfig)
		errMsg string
	}{
		{"table", func(in *config.InputConfig) { in.Table = "a.b.c" }, "invalid input table"},
		{"transaction column", func(in *config.InputConfig) { in.TransactionColumn = "id; DROP" }, "invalid transaction column"},
		{"item column", func(in *config.InputConfig) { in.ItemColumn = "" }, "invalid item column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mysqlInput()
			tt.mutate(in)
			_, err := NewMySQLLoader(db, in, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMySQLLoader_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"order_id", "sku"}).
		AddRow("1", "bread").
		AddRow("1", "milk").
		AddRow("2", nil).
		AddRow(nil, "orphan").
		AddRow("3", "eggs").
		AddRow("3", "milk")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `order_id`, `sku` FROM `shop`.`order_items`")).WillReturnRows(rows)

	l, err := NewMySQLLoader(db, mysqlInput(), nil)
	require.NoError(t, err)

	got, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []fpgrowth.Transaction{
		{"bread", "milk"},
		{},
		{"eggs", "milk"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLLoader_LoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("table missing"))

	l, err := NewMySQLLoader(db, mysqlInput(), nil)
	require.NoError(t, err)

	_, err = l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query transactions")
}

func TestMySQLLoader_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT `order_id`) FROM `shop`.`order_items` WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	l, err := NewMySQLLoader(db, mysqlInput(), nil)
	require.NoError(t, err)

	count, err := l.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	l, err := New(&config.InputConfig{Type: config.InputFile, Path: "x.txt"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileLoader{}, l)

	l, err = New(mysqlInput(), db, nil)
	require.NoError(t, err)
	assert.IsType(t, &MySQLLoader{}, l)

	_, err = New(mysqlInput(), nil, nil)
	assert.ErrorIs(t, err, ErrNoDatabase)

	_, err = New(&config.InputConfig{Type: "kafka"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input type")
}
