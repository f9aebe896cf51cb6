package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dbsmedya/gobasket/internal/fpgrowth"
	"github.com/dbsmedya/gobasket/internal/logger"
)

const maxLineBytes = 16 * 1024 * 1024

// FileLoader reads one transaction per line of a text file.
type FileLoader struct {
	path      string
	delimiter string
	logger    *logger.Logger
}

// NewFileLoader creates a loader for path. An empty delimiter selects ","
// for .csv files and whitespace for anything else.
func NewFileLoader(path, delimiter string, log *logger.Logger) *FileLoader {
	if log == nil {
		log = logger.NewNop()
	}
	return &FileLoader{path: path, delimiter: delimiter, logger: log}
}

// Describe implements Loader.
func (l *FileLoader) Describe() string {
	return "file:" + l.path
}

// Delimiter returns the effective delimiter.
func (l *FileLoader) Delimiter() string {
	if l.delimiter != "" {
		return l.delimiter
	}
	if strings.EqualFold(filepath.Ext(l.path), ".csv") {
		return ","
	}
	return " "
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) ([]fpgrowth.Transaction, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	transactions, err := ReadTransactions(ctx, f, l.Delimiter())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.path, err)
	}

	l.logger.Debugw("Loaded transactions file", "path", l.path, "transactions", len(transactions))
	return transactions, nil
}

// ReadTransactions parses r line by line. Every line is one transaction,
// blank lines included. Items are trimmed and empty items dropped.
//
// A delimiter of " " splits on any run of whitespace. Any other single
// character is parsed CSV style, so quoted items may contain the delimiter.
// Longer delimiters split literally.
func ReadTransactions(ctx context.Context, r io.Reader, delimiter string) ([]fpgrowth.Transaction, error) {
	split, err := splitter(delimiter)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		transactions []fpgrowth.Transaction
		lineNo       int
	)
	for scanner.Scan() {
		lineNo++
		if lineNo%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := split(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		transactions = append(transactions, clean(fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func splitter(delimiter string) (func(string) ([]string, error), error) {
	switch {
	case delimiter == "" || delimiter == " ":
		return func(line string) ([]string, error) {
			return strings.Fields(line), nil
		}, nil
	case utf8.RuneCountInString(delimiter) == 1:
		comma, _ := utf8.DecodeRuneInString(delimiter)
		if comma == '"' || comma == '\r' || comma == '\n' || comma == utf8.RuneError {
			return nil, fmt.Errorf("invalid delimiter %q", delimiter)
		}
		return func(line string) ([]string, error) {
			if strings.TrimSpace(line) == "" {
				return nil, nil
			}
			cr := csv.NewReader(strings.NewReader(line))
			cr.Comma = comma
			cr.FieldsPerRecord = -1
			cr.LazyQuotes = true
			cr.TrimLeadingSpace = true
			fields, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return fields, err
		}, nil
	default:
		return func(line string) ([]string, error) {
			return strings.Split(line, delimiter), nil
		}, nil
	}
}

// clean trims items and drops empty ones. Never returns nil.
func clean(fields []string) fpgrowth.Transaction {
	tx := make(fpgrowth.Transaction, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tx = append(tx, f)
		}
	}
	return tx
}
