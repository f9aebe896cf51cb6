package fpgrowth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniverse_Ordering(t *testing.T) {
	u := NewUniverse(groceries(), 1)

	require.Equal(t, 3, u.Len())
	// bread and milk tie at 3; bread was seen first
	assert.Equal(t, "bread", u.Label(0))
	assert.Equal(t, "milk", u.Label(1))
	assert.Equal(t, "eggs", u.Label(2))
	assert.Equal(t, 3, u.Support(0))
	assert.Equal(t, 3, u.Support(1))
	assert.Equal(t, 2, u.Support(2))
	assert.Equal(t, 4, u.Total())
}

func TestNewUniverse_TieBreakFirstSeen(t *testing.T) {
	u := NewUniverse([]Transaction{
		{"z", "a"},
		{"a", "z"},
		{"m"},
		{"m"},
	}, 1)

	labels := u.Labels([]ItemID{0, 1, 2})
	assert.Equal(t, []string{"z", "a", "m"}, labels)
}

func TestNewUniverse_DuplicatesCountOnce(t *testing.T) {
	u := NewUniverse([]Transaction{
		{"a", "a", "a"},
		{"a", "b"},
	}, 1)

	id, ok := u.ID("a")
	require.True(t, ok)
	assert.Equal(t, 2, u.Support(id))
}

func TestNewUniverse_DropsInfrequent(t *testing.T) {
	u := NewUniverse(groceries(), 3)

	assert.Equal(t, 2, u.Len())
	assert.Equal(t, 3, u.Distinct())
	assert.Equal(t, 1, u.Dropped())
	_, ok := u.ID("eggs")
	assert.False(t, ok)
}

func TestNewUniverse_Empty(t *testing.T) {
	u := NewUniverse(nil, 1)
	assert.Equal(t, 0, u.Len())
	assert.Equal(t, 0, u.Total())
	assert.Empty(t, u.Items())

	// empty transactions still count toward the total
	u = NewUniverse([]Transaction{{}, {}}, 1)
	assert.Equal(t, 0, u.Len())
	assert.Equal(t, 2, u.Total())
}

func TestUniverse_Encode(t *testing.T) {
	u := NewUniverse(groceries(), 2)

	tests := []struct {
		name string
		tx   Transaction
		want []ItemID
	}{
		{"canonical order", Transaction{"eggs", "bread", "milk"}, []ItemID{0, 1, 2}},
		{"duplicates removed", Transaction{"milk", "milk"}, []ItemID{1}},
		{"unknown dropped", Transaction{"caviar", "eggs"}, []ItemID{2}},
		{"empty", Transaction{}, []ItemID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.Encode(tt.tx))
		})
	}
}

func TestUniverse_Items(t *testing.T) {
	u := NewUniverse(groceries(), 1)
	items := u.Items()

	require.Len(t, items, 3)
	assert.Equal(t, ItemStat{ID: 2, Label: "eggs", Support: 2}, items[2])
}
