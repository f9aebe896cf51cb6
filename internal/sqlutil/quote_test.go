package sqlutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "baskets", "`baskets`"},
		{"underscore", "order_items", "`order_items`"},
		{"empty", "", "``"},
		{"single backtick", "my`table", "`my``table`"},
		{"only backticks", "``", "``````"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteIdentifier(tt.input))
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"order_id", true},
		{"SKU2", true},
		{"", false},
		{"order-id", false},
		{"sku; DROP TABLE x", false},
		{"shop.items", false},
		{"naïve", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteIdentifierSafe(t *testing.T) {
	q, err := QuoteIdentifierSafe("item_id")
	require.NoError(t, err)
	assert.Equal(t, "`item_id`", q)

	_, err = QuoteIdentifierSafe("item`id")
	require.Error(t, err)
	var idErr *InvalidIdentifierError
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, "item`id", idErr.Name)
	assert.Contains(t, err.Error(), "invalid identifier")
}

func TestQuoteQualifiedSafe(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"order_items", "`order_items`", false},
		{"shop.order_items", "`shop`.`order_items`", false},
		{"a.b.c", "", true},
		{"shop.", "", true},
		{".items", "", true},
		{"shop.items`", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := QuoteQualifiedSafe(tt.input)
			if tt.wantErr {
				var idErr *InvalidIdentifierError
				require.ErrorAs(t, err, &idErr)
				assert.Equal(t, tt.input, idErr.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
