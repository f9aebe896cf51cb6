// Package source loads transactions for mining from delimited files or
// MySQL tables.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/fpgrowth"
	"github.com/dbsmedya/gobasket/internal/logger"
)

// ErrNoDatabase is returned when a MySQL input is configured without a
// source connection.
var ErrNoDatabase = errors.New("mysql input requires a source database connection")

// Loader produces the transactions of one job.
type Loader interface {
	// Load reads every transaction. Empty transactions are kept so that they
	// count toward the total.
	Load(ctx context.Context) ([]fpgrowth.Transaction, error)
	// Describe names the input for logs and reports.
	Describe() string
}

// New returns the loader for an input section.
func New(in *config.InputConfig, db *sql.DB, log *logger.Logger) (Loader, error) {
	switch in.Type {
	case config.InputFile:
		return NewFileLoader(in.Path, in.Delimiter, log), nil
	case config.InputMySQL:
		if db == nil {
			return nil, ErrNoDatabase
		}
		return NewMySQLLoader(db, in, log)
	default:
		return nil, fmt.Errorf("unsupported input type %q", in.Type)
	}
}

// Summary describes a loaded transaction list.
type Summary struct {
	Transactions int
	Empty        int
	Items        int // item occurrences, duplicates included
}

// Summarize counts transactions, empty ones and item occurrences.
func Summarize(transactions []fpgrowth.Transaction) Summary {
	s := Summary{Transactions: len(transactions)}
	for _, tx := range transactions {
		if len(tx) == 0 {
			s.Empty++
		}
		s.Items += len(tx)
	}
	return s
}
