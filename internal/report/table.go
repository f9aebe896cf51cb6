package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/gobasket/internal/fpgrowth"
)

// maxCellWidth bounds item list cells; longer lists are cut with an ellipsis.
const maxCellWidth = 48

var (
	headerStyle = color.New(color.FgCyan, color.OpBold)
	itemStyle   = color.New(color.FgGreen)
	dimStyle    = color.New(color.FgGray)
)

// TableRenderer writes rules as an aligned text table.
type TableRenderer struct {
	Color bool
}

// Render implements Renderer.
func (r *TableRenderer) Render(w io.Writer, rules []fpgrowth.AssociationRule) error {
	t := newTable(r.Color,
		column{title: "#", right: true},
		column{title: "PREMISE", style: itemStyle},
		column{title: "CONSEQUENCE", style: itemStyle},
		column{title: "SUPPORT", right: true},
		column{title: "CONFIDENCE", right: true},
		column{title: "LIFT", right: true},
		column{title: "LEVERAGE", right: true},
		column{title: "CONVICTION", right: true},
	)
	for i, rule := range rules {
		t.add(
			strconv.Itoa(i+1),
			strings.Join(rule.Premise, ", "),
			strings.Join(rule.Consequence, ", "),
			strconv.Itoa(rule.Support),
			formatMetric(rule.Confidence),
			formatMetric(rule.Lift),
			formatMetric(rule.Leverage),
			formatMetric(rule.Conviction),
		)
	}
	if err := t.write(w); err != nil {
		return err
	}

	footer := fmt.Sprintf("%d rules", len(rules))
	if len(rules) == 1 {
		footer = "1 rule"
	}
	_, err := fmt.Fprintln(w, t.paint(dimStyle, footer))
	return err
}

func formatMetric(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

type column struct {
	title string
	right bool
	style color.Style
}

type table struct {
	color   bool
	columns []column
	rows    [][]string
}

func newTable(useColor bool, columns ...column) *table {
	return &table{color: useColor, columns: columns}
}

func (t *table) add(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = runewidth.Truncate(cells[i], maxCellWidth, "…")
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table) paint(style color.Style, s string) string {
	if !t.color || len(style) == 0 {
		return s
	}
	return style.Sprint(s)
}

// widths are measured in terminal cells, so wide and combining runes line
// up.
func (t *table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *table) write(w io.Writer) error {
	widths := t.widths()

	cells := make([]string, len(t.columns))
	for i, c := range t.columns {
		cells[i] = t.paint(headerStyle, t.pad(c.title, widths[i], c.right))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		for i, c := range t.columns {
			cells[i] = t.paint(c.style, t.pad(row[i], widths[i], c.right))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) pad(s string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}
