package fpgrowth

import (
	"slices"
)

const rootIndex = 0

// node is one arena slot. The root has item -1 and parent -1.
type node struct {
	item     ItemID
	count    int
	parent   int
	children map[ItemID]int
}

// Tree is an FP-tree. Nodes live in an arena and refer to each other by
// index; header[id] lists the indices of every node carrying item id, in
// creation order. The header table is only read during mining.
type Tree struct {
	nodes  []node
	header [][]int
}

// PathCount is a root-to-node item sequence together with the number of
// transactions that end exactly at that node.
type PathCount struct {
	Items []ItemID
	Count int
}

// weightedPath is one entry of a conditional pattern base.
type weightedPath struct {
	items []ItemID
	count int
}

func newTree(numItems int) *Tree {
	return &Tree{
		nodes:  []node{{item: -1, parent: -1}},
		header: make([][]int, numItems),
	}
}

// BuildTree encodes every transaction against u and inserts it. Transactions
// with no frequent item are skipped.
func BuildTree(u *Universe, transactions []Transaction) *Tree {
	t := newTree(u.Len())
	for _, tx := range transactions {
		path := u.Encode(tx)
		if len(path) == 0 {
			continue
		}
		t.insert(path, 1)
	}
	return t
}

// insert adds path, which must be in canonical order, with weight count.
func (t *Tree) insert(path []ItemID, count int) {
	cur := rootIndex
	for _, item := range path {
		child, ok := t.nodes[cur].children[item]
		if !ok {
			child = len(t.nodes)
			t.nodes = append(t.nodes, node{item: item, parent: cur})
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = make(map[ItemID]int)
			}
			t.nodes[cur].children[item] = child
			t.header[item] = append(t.header[item], child)
		}
		t.nodes[child].count += count
		cur = child
	}
}

// buildConditional builds the conditional tree of a pattern base. Only items
// below numItems can occur in base. Items whose weighted count stays below
// minSupport are removed from every path before insertion.
func buildConditional(base []weightedPath, numItems, minSupport int) *Tree {
	counts := make([]int, numItems)
	for _, p := range base {
		for _, item := range p.items {
			counts[item] += p.count
		}
	}

	t := newTree(numItems)
	filtered := make([]ItemID, 0, numItems)
	for _, p := range base {
		filtered = filtered[:0]
		for _, item := range p.items {
			if counts[item] >= minSupport {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) > 0 {
			t.insert(filtered, p.count)
		}
	}
	return t
}

// Empty reports whether the tree holds only its root.
func (t *Tree) Empty() bool { return len(t.nodes) == 1 }

// NodeCount returns the number of nodes, root excluded.
func (t *Tree) NodeCount() int { return len(t.nodes) - 1 }

// ItemCount returns the summed count of every node carrying id.
func (t *Tree) ItemCount(id ItemID) int {
	if int(id) < 0 || int(id) >= len(t.header) {
		return 0
	}
	total := 0
	for _, idx := range t.header[id] {
		total += t.nodes[idx].count
	}
	return total
}

// IsSinglePath reports whether every node has at most one child.
func (t *Tree) IsSinglePath() bool {
	for i := range t.nodes {
		if len(t.nodes[i].children) > 1 {
			return false
		}
	}
	return true
}

// singlePath returns the node indices of a single-path tree from the top down.
func (t *Tree) singlePath() []int {
	path := make([]int, 0, len(t.nodes)-1)
	cur := rootIndex
	for len(t.nodes[cur].children) == 1 {
		for _, child := range t.nodes[cur].children {
			cur = child
		}
		path = append(path, cur)
	}
	return path
}

// prefixPath returns the items strictly between the root and idx, top down.
func (t *Tree) prefixPath(idx int) []ItemID {
	var items []ItemID
	for p := t.nodes[idx].parent; p > rootIndex; p = t.nodes[p].parent {
		items = append(items, t.nodes[p].item)
	}
	slices.Reverse(items)
	return items
}

// Paths reconstructs the weighted transactions stored in the tree. Paths are
// sorted by their item sequence.
func (t *Tree) Paths() []PathCount {
	var out []PathCount
	for idx := 1; idx < len(t.nodes); idx++ {
		n := t.nodes[idx]
		ending := n.count
		for _, child := range n.children {
			ending -= t.nodes[child].count
		}
		if ending <= 0 {
			continue
		}
		items := append(t.prefixPath(idx), n.item)
		out = append(out, PathCount{Items: items, Count: ending})
	}
	slices.SortFunc(out, func(a, b PathCount) int {
		return slices.Compare(a.Items, b.Items)
	})
	return out
}
