package fpgrowth

import (
	"context"
	"math/rand"
	"strconv"
)

var bgCtx = context.Background()

// groceries is the four-basket example used across the tests.
func groceries() []Transaction {
	return []Transaction{
		{"bread", "milk"},
		{"bread", "milk", "eggs"},
		{"bread"},
		{"milk", "eggs"},
	}
}

// randomTransactions builds a skewed synthetic dataset: low-numbered items
// are far more common than high-numbered ones.
func randomTransactions(seed int64, n, numItems, maxLen int) []Transaction {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Transaction, n)
	for i := range out {
		size := rng.Intn(maxLen + 1)
		tx := make(Transaction, 0, size)
		for j := 0; j < size; j++ {
			item := int(float64(numItems) * rng.Float64() * rng.Float64())
			tx = append(tx, "i"+strconv.Itoa(item))
		}
		out[i] = tx
	}
	return out
}

// bruteSupport counts transactions containing every label.
func bruteSupport(transactions []Transaction, labels []string) int {
	count := 0
	for _, tx := range transactions {
		set := make(map[string]bool, len(tx))
		for _, l := range tx {
			set[l] = true
		}
		all := true
		for _, l := range labels {
			if !set[l] {
				all = false
				break
			}
		}
		if all {
			count++
		}
	}
	return count
}

func mineAll(u *Universe, transactions []Transaction, minSupport int) []Itemset {
	m := &Miner{MinSupport: minSupport, MaxItems: -1}
	sets, err := m.Mine(bgCtx, BuildTree(u, transactions))
	if err != nil {
		panic(err)
	}
	return sets
}

func floatPtr(v float64) *float64 { return &v }
