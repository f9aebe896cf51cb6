package fpgrowth

import (
	"slices"
	"sort"

	"github.com/elliotchance/orderedmap/v2"
)

// ItemID identifies an item inside one Universe. IDs follow the canonical
// order: 0 is the most frequent item.
type ItemID int

// Transaction is one basket of item labels. Order is irrelevant and
// duplicate labels count once.
type Transaction []string

// ItemStat describes one frequent item.
type ItemStat struct {
	ID      ItemID
	Label   string
	Support int
}

// Universe is the ordered set of frequent items of a transaction list.
type Universe struct {
	labels   []string
	supports []int
	index    map[string]ItemID
	total    int
	distinct int
}

// NewUniverse counts the support of every label in transactions and keeps
// those with support >= minSupport, ordered by support descending. Ties keep
// the order in which labels were first seen.
func NewUniverse(transactions []Transaction, minSupport int) *Universe {
	counts := orderedmap.NewOrderedMap[string, int]()
	seen := make(map[string]struct{})

	for _, tx := range transactions {
		clear(seen)
		for _, label := range tx {
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			n, _ := counts.Get(label)
			counts.Set(label, n+1)
		}
	}

	stats := make([]ItemStat, 0, counts.Len())
	for el := counts.Front(); el != nil; el = el.Next() {
		if el.Value < minSupport {
			continue
		}
		stats = append(stats, ItemStat{Label: el.Key, Support: el.Value})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Support > stats[j].Support
	})

	u := &Universe{
		labels:   make([]string, len(stats)),
		supports: make([]int, len(stats)),
		index:    make(map[string]ItemID, len(stats)),
		total:    len(transactions),
		distinct: counts.Len(),
	}
	for i, s := range stats {
		u.labels[i] = s.Label
		u.supports[i] = s.Support
		u.index[s.Label] = ItemID(i)
	}
	return u
}

// Len returns the number of frequent items.
func (u *Universe) Len() int { return len(u.labels) }

// Total returns the number of transactions, empty ones included.
func (u *Universe) Total() int { return u.total }

// Distinct returns the number of distinct labels before support filtering.
func (u *Universe) Distinct() int { return u.distinct }

// Dropped returns how many labels fell below the minimum support.
func (u *Universe) Dropped() int { return u.distinct - len(u.labels) }

// Label returns the label of id.
func (u *Universe) Label(id ItemID) string { return u.labels[id] }

// Support returns the transaction count of id.
func (u *Universe) Support(id ItemID) int { return u.supports[id] }

// ID looks up the identity of a label. ok is false for unknown or
// infrequent labels.
func (u *Universe) ID(label string) (id ItemID, ok bool) {
	id, ok = u.index[label]
	return id, ok
}

// Labels maps ids back to labels, preserving order.
func (u *Universe) Labels(ids []ItemID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = u.labels[id]
	}
	return out
}

// Items returns every frequent item in canonical order.
func (u *Universe) Items() []ItemStat {
	out := make([]ItemStat, len(u.labels))
	for i := range u.labels {
		out[i] = ItemStat{ID: ItemID(i), Label: u.labels[i], Support: u.supports[i]}
	}
	return out
}

// Encode converts a transaction to its frequent item ids in canonical order.
// Unknown labels and duplicates are removed.
func (u *Universe) Encode(tx Transaction) []ItemID {
	ids := make([]ItemID, 0, len(tx))
	for _, label := range tx {
		if id, ok := u.index[label]; ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
