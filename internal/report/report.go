// Package report renders mined association rules as JSON or as a terminal
// table.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dbsmedya/gobasket/internal/fpgrowth"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Renderer writes a list of rules.
type Renderer interface {
	Render(w io.Writer, rules []fpgrowth.AssociationRule) error
}

// New returns the renderer for format. An empty format means JSON.
func New(format string, color bool) (Renderer, error) {
	switch format {
	case "", FormatJSON:
		return &JSONRenderer{Indent: "  "}, nil
	case FormatTable:
		return &TableRenderer{Color: color}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutput returns stdout for "" or "stdout" and creates the file at path
// otherwise. Closing stdout is a no-op.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "stdout" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
