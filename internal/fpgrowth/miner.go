package fpgrowth

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Miner enumerates frequent itemsets of an FP-tree.
type Miner struct {
	// MinSupport is the absolute support threshold, at least 1.
	MinSupport int
	// MaxItems caps the itemset size; -1 means unbounded.
	MaxItems int
	// Workers > 1 mines top-level branches concurrently.
	Workers int
}

// Mine returns every itemset of tree with support >= MinSupport, sorted by
// size and then by ids. The result does not depend on Workers.
func (m *Miner) Mine(ctx context.Context, tree *Tree) ([]Itemset, error) {
	if tree.Empty() {
		return nil, nil
	}

	var out []Itemset
	switch {
	case tree.IsSinglePath():
		m.mineSinglePath(tree, nil, func(s Itemset) { out = append(out, s) })
	case m.Workers > 1:
		var err error
		if out, err = m.mineParallel(ctx, tree); err != nil {
			return nil, err
		}
	default:
		emit := func(s Itemset) { out = append(out, s) }
		for id := len(tree.header) - 1; id >= 0; id-- {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m.mineBranch(tree, ItemID(id), nil, emit)
		}
	}

	SortItemsets(out)
	return out, nil
}

// mineParallel runs one goroutine per top-level header item, bounded by
// Workers. Each branch only reads the shared tree and builds its own
// conditional trees.
func (m *Miner) mineParallel(ctx context.Context, tree *Tree) ([]Itemset, error) {
	results := make([][]Itemset, len(tree.header))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.Workers)
	for id := len(tree.header) - 1; id >= 0; id-- {
		if len(tree.header[id]) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var branch []Itemset
			m.mineBranch(tree, ItemID(id), nil, func(s Itemset) { branch = append(branch, s) })
			results[id] = branch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Itemset
	for id := len(results) - 1; id >= 0; id-- {
		out = append(out, results[id]...)
	}
	return out, nil
}

// mineTree mines a conditional tree under prefix.
func (m *Miner) mineTree(tree *Tree, prefix []ItemID, emit func(Itemset)) {
	if tree.Empty() {
		return
	}
	if tree.IsSinglePath() {
		m.mineSinglePath(tree, prefix, emit)
		return
	}
	for id := len(tree.header) - 1; id >= 0; id-- {
		m.mineBranch(tree, ItemID(id), prefix, emit)
	}
}

// mineBranch emits prefix+{id} and recurses into the conditional tree of id.
func (m *Miner) mineBranch(tree *Tree, id ItemID, prefix []ItemID, emit func(Itemset)) {
	occurrences := tree.header[id]
	if len(occurrences) == 0 {
		return
	}

	support := 0
	for _, idx := range occurrences {
		support += tree.nodes[idx].count
	}
	if support < m.MinSupport {
		return
	}

	next := make([]ItemID, len(prefix)+1)
	copy(next, prefix)
	next[len(prefix)] = id
	emit(newItemset(next, support))

	if m.full(len(next)) {
		return
	}

	base := make([]weightedPath, 0, len(occurrences))
	for _, idx := range occurrences {
		if path := tree.prefixPath(idx); len(path) > 0 {
			base = append(base, weightedPath{items: path, count: tree.nodes[idx].count})
		}
	}
	if len(base) == 0 {
		return
	}

	m.mineTree(buildConditional(base, int(id), m.MinSupport), next, emit)
}

// mineSinglePath emits every non-empty combination of the path's nodes
// joined with prefix. The support of a combination is its smallest count.
func (m *Miner) mineSinglePath(tree *Tree, prefix []ItemID, emit func(Itemset)) {
	path := tree.singlePath()

	chosen := make([]ItemID, 0, len(path))
	var walk func(start, minCount int)
	walk = func(start, minCount int) {
		for i := start; i < len(path); i++ {
			n := tree.nodes[path[i]]
			if n.count < m.MinSupport {
				// counts only shrink further down the path
				return
			}
			support := min(minCount, n.count)

			chosen = append(chosen, n.item)
			items := make([]ItemID, 0, len(prefix)+len(chosen))
			items = append(items, prefix...)
			items = append(items, chosen...)
			emit(newItemset(items, support))

			if !m.full(len(items)) {
				walk(i+1, support)
			}
			chosen = chosen[:len(chosen)-1]
		}
	}
	walk(0, int(^uint(0)>>1))
}

func (m *Miner) full(size int) bool {
	return m.MaxItems > 0 && size >= m.MaxItems
}

// newItemset sorts items into canonical order.
func newItemset(items []ItemID, support int) Itemset {
	slices.Sort(items)
	return Itemset{Items: items, Support: support}
}
