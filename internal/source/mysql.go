package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/fpgrowth"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/sqlutil"
)

// MySQLLoader reads transactions from a table with one row per
// (transaction, item) pair.
type MySQLLoader struct {
	db     *sql.DB
	table  string // quoted
	txCol  string // quoted
	item   string // quoted
	where  string
	name   string
	logger *logger.Logger
}

// NewMySQLLoader validates the table and column names of in and quotes them.
// The where clause is used verbatim.
func NewMySQLLoader(db *sql.DB, in *config.InputConfig, log *logger.Logger) (*MySQLLoader, error) {
	if log == nil {
		log = logger.NewNop()
	}

	table, err := sqlutil.QuoteQualifiedSafe(in.Table)
	if err != nil {
		return nil, fmt.Errorf("invalid input table: %w", err)
	}
	txCol, err := sqlutil.QuoteIdentifierSafe(in.TransactionColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction column: %w", err)
	}
	itemCol, err := sqlutil.QuoteIdentifierSafe(in.ItemColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid item column: %w", err)
	}

	where := in.Where
	if where == "" {
		where = "1=1"
	}

	return &MySQLLoader{
		db:     db,
		table:  table,
		txCol:  txCol,
		item:   itemCol,
		where:  where,
		name:   in.Table,
		logger: log,
	}, nil
}

// Describe implements Loader.
func (l *MySQLLoader) Describe() string {
	return "mysql:" + l.name
}

// Query returns the SELECT issued by Load.
func (l *MySQLLoader) Query() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s ORDER BY %s",
		l.txCol, l.item, l.table, l.where, l.txCol)
}

// Load implements Loader. Rows are grouped by consecutive transaction ids.
// Rows with a NULL transaction id are ignored; NULL items still open their
// transaction, so a basket of only NULL items counts as empty.
func (l *MySQLLoader) Load(ctx context.Context) ([]fpgrowth.Transaction, error) {
	rows, err := l.db.QueryContext(ctx, l.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		transactions []fpgrowth.Transaction
		current      string
		started      bool
		skipped      int
	)
	for rows.Next() {
		var tx, item sql.NullString
		if err := rows.Scan(&tx, &item); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		if !tx.Valid {
			skipped++
			continue
		}
		if !started || tx.String != current {
			transactions = append(transactions, fpgrowth.Transaction{})
			current, started = tx.String, true
		}
		if item.Valid && item.String != "" {
			last := len(transactions) - 1
			transactions[last] = append(transactions[last], item.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}

	if skipped > 0 {
		l.logger.Warnf("Ignored %d rows with NULL transaction id in %s", skipped, l.name)
	}
	l.logger.Debugw("Loaded transactions table", "table", l.name, "transactions", len(transactions))
	return transactions, nil
}

// Count returns the number of distinct transactions matching the filter.
func (l *MySQLLoader) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s WHERE %s", l.txCol, l.table, l.where)

	var count int64
	if err := l.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
