package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msku-service/internal/resolve/model"
)

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "acb", 1},
		{"kitten", "sitting", 3},
		{"синий", "сниий", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, damerauLevenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}

func TestForms(t *testing.T) {
	c, s := forms("Widget_Blue-XL")
	assert.Equal(t, "widgetbluexl", c)
	assert.Equal(t, "bluewidgetxl", s)

	c, s = forms(" -- ")
	assert.Empty(t, c)
	assert.Empty(t, s)
}

func TestSuggest(t *testing.T) {
	idx := New([]model.Mapping{
		{SKU: "WIDGET-BLUE", MSKU: "WIDGET-001", Marketplace: "Amazon"},
		{SKU: "BLUE-W", MSKU: "WIDGET-001", Marketplace: "Shopify"},
		{SKU: "GADGET-SMALL", MSKU: "GADGET-001", Marketplace: "Amazon"},
		{SKU: "---", MSKU: "NOISE", Marketplace: "Amazon"},
	})
	require.Equal(t, 3, idx.Len())

	t.Run("word order does not matter", func(t *testing.T) {
		got := idx.Suggest("blue widget", 0.6, 1)
		require.Len(t, got, 1)
		assert.Equal(t, model.Suggestion{SKU: "WIDGET-BLUE", Marketplace: "Amazon", MSKU: "WIDGET-001", Score: 1}, got[0])
	})

	t.Run("typo", func(t *testing.T) {
		got := idx.Suggest("WIDGET-BLU", 0.8, 5)
		require.Len(t, got, 1)
		assert.Equal(t, "WIDGET-BLUE", got[0].SKU)
		assert.InDelta(t, 0.9, got[0].Score, 1e-9)
	})

	t.Run("nothing close", func(t *testing.T) {
		assert.Empty(t, idx.Suggest("QQQQ", 0.6, 5))
		assert.Nil(t, idx.Suggest("", 0.6, 5))
		assert.Nil(t, idx.Suggest("WIDGET-BLUE", 0.6, 0))
	})
}

func TestSuggestTieOrder(t *testing.T) {
	idx := New([]model.Mapping{
		{SKU: "ABC-1", MSKU: "A-1", Marketplace: "Shopify"},
		{SKU: "ABC-1", MSKU: "A-1", Marketplace: "Amazon"},
	})

	got := idx.Suggest("abc1", 0.5, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "Amazon", got[0].Marketplace)
	assert.Equal(t, "Shopify", got[1].Marketplace)
}
