package fpgrowth

import (
	"cmp"
	"slices"
	"strconv"
)

// Itemset is a set of item ids in canonical order with its support count.
type Itemset struct {
	Items   []ItemID
	Support int
}

// Len returns the number of items.
func (s Itemset) Len() int { return len(s.Items) }

// Contains reports whether every id of sub is in s. Both must be sorted.
func (s Itemset) Contains(sub []ItemID) bool {
	i := 0
	for _, id := range s.Items {
		if i < len(sub) && sub[i] == id {
			i++
		}
	}
	return i == len(sub)
}

// itemsKey encodes ids as a map key.
func itemsKey(ids []ItemID) string {
	buf := make([]byte, 0, len(ids)*3)
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	return string(buf)
}

// supportIndex maps itemsKey(items) to support.
type supportIndex map[string]int

func newSupportIndex(itemsets []Itemset) supportIndex {
	idx := make(supportIndex, len(itemsets))
	for _, s := range itemsets {
		idx[itemsKey(s.Items)] = s.Support
	}
	return idx
}

func (idx supportIndex) lookup(ids []ItemID) (int, bool) {
	s, ok := idx[itemsKey(ids)]
	return s, ok
}

// compareItemsets orders by size, then lexicographically by ids.
func compareItemsets(a, b Itemset) int {
	if c := cmp.Compare(len(a.Items), len(b.Items)); c != 0 {
		return c
	}
	return slices.Compare(a.Items, b.Items)
}

// SortItemsets puts itemsets in deterministic order: size ascending, then ids.
func SortItemsets(itemsets []Itemset) {
	slices.SortFunc(itemsets, compareItemsets)
}
