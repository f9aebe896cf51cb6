package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dbsmedya/gobasket/internal/fpgrowth"
)

// Inspection summarizes a transaction set before mining.
type Inspection struct {
	Source       string
	Transactions int
	Empty        int
	Distinct     int
	MinSupport   int
	SupportRatio float64
	Tree         fpgrowth.TreeStats
	Items        []fpgrowth.ItemStat // frequent items in canonical order
}

// RenderInspection writes the summary and the top frequent items. top <= 0
// lists every item.
func RenderInspection(w io.Writer, in *Inspection, useColor bool, top int) error {
	t := newTable(useColor)

	summary := []struct {
		key   string
		value string
	}{
		{"source", in.Source},
		{"transactions", strconv.Itoa(in.Transactions)},
		{"empty transactions", strconv.Itoa(in.Empty)},
		{"distinct items", strconv.Itoa(in.Distinct)},
		{"min support", fmt.Sprintf("%d (ratio %.4f)", in.MinSupport, in.SupportRatio)},
		{"frequent items", strconv.Itoa(len(in.Items))},
		{"dropped items", strconv.Itoa(in.Distinct - len(in.Items))},
		{"fp-tree nodes", strconv.Itoa(in.Tree.Nodes)},
		{"single path", strconv.FormatBool(in.Tree.SinglePath)},
	}
	for _, s := range summary {
		if _, err := fmt.Fprintf(w, "%s %s\n", t.paint(headerStyle, s.key+":"), s.value); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	items := in.Items
	if top > 0 && top < len(items) {
		items = items[:top]
	}

	t.columns = []column{
		{title: "RANK", right: true},
		{title: "ITEM", style: itemStyle},
		{title: "SUPPORT", right: true},
		{title: "RATIO", right: true},
	}
	for i, it := range items {
		ratio := 0.0
		if in.Transactions > 0 {
			ratio = float64(it.Support) / float64(in.Transactions)
		}
		t.add(strconv.Itoa(i+1), it.Label, strconv.Itoa(it.Support), formatMetric(ratio))
	}
	return t.write(w)
}
