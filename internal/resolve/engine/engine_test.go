package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msku-service/internal/resolve/model"
)

func newEngine(t *testing.T, mappings ...model.Mapping) *Engine {
	t.Helper()
	e, err := New(zerolog.Nop(), mappings)
	require.NoError(t, err)
	return e
}

func appleMappings() []model.Mapping {
	return []model.Mapping{
		{SKU: "GOLDEN-APPLE", MSKU: "APPLE-001", Marketplace: "Amazon"},
		{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"},
	}
}

func demoMappings() []model.Mapping {
	return []model.Mapping{
		{SKU: "GOLDEN-APPLE", MSKU: "APPLE-001", Marketplace: "Amazon"},
		{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"},
		{SKU: "REDAPPLE", MSKU: "APPLE-002", Marketplace: "Amazon"},
		{SKU: "RED-A", MSKU: "APPLE-002", Marketplace: "Shopify"},
		{SKU: "WIDGET-BLUE", MSKU: "WIDGET-001", Marketplace: "Amazon"},
		{SKU: "BLUE-W", MSKU: "WIDGET-001", Marketplace: "Shopify"},
		{SKU: "WIDGET-RED", MSKU: "WIDGET-002", Marketplace: "Amazon"},
		{SKU: "RED-W", MSKU: "WIDGET-002", Marketplace: "Shopify"},
	}
}

func TestGetMskuExact(t *testing.T) {
	e := newEngine(t, model.Mapping{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"})

	m, err := e.GetMsku("GLD", "Shopify")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-001", m.MSKU)
	assert.Equal(t, model.MatchExact, m.MatchType)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Empty(t, m.Pattern)
}

func TestGetMskuCaseInsensitive(t *testing.T) {
	e := newEngine(t, model.Mapping{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"})

	m, err := e.GetMsku("gld", "shopify")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-001", m.MSKU)
	assert.Equal(t, model.MatchExact, m.MatchType)
}

func TestGetMskuArguments(t *testing.T) {
	e := newEngine(t, appleMappings()...)

	t.Run("missing marketplace", func(t *testing.T) {
		_, err := e.GetMsku("GLD", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		assert.Equal(t, "Marketplace is required", Message(err))
	})

	t.Run("sku is checked first", func(t *testing.T) {
		_, err := e.GetMsku("", "")
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, "SKU is required", Message(err))
	})
}

func TestGetMskuNotFound(t *testing.T) {
	e := newEngine(t)

	_, err := e.GetMsku("XYZ", "Amazon")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "No mapping found for SKU XYZ in Amazon", Message(err))
}

func TestGetMskuProductNamePattern(t *testing.T) {
	e := newEngine(t, appleMappings()...)

	m, err := e.GetMsku("REDAPPLE", "Amazon")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-001", m.MSKU)
	assert.Equal(t, model.MatchPattern, m.MatchType)
	assert.Equal(t, 0.7, m.Confidence)
	assert.Equal(t, model.KindProductName, m.Pattern)
}

func TestGetMskuExactBeatsPattern(t *testing.T) {
	e := newEngine(t, demoMappings()...)

	// REDAPPLE matches the APPLE-001 product-name rule too
	m, err := e.GetMsku("redapple", "AMAZON")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-002", m.MSKU)
	assert.Equal(t, model.MatchExact, m.MatchType)
}

func TestGetMskuHighestConfidenceWins(t *testing.T) {
	e := newEngine(t,
		model.Mapping{SKU: "GOLDEN-APPLE", MSKU: "APPLE-001", Marketplace: "Amazon"},
		model.Mapping{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"},
		model.Mapping{SKU: "KIT-100", MSKU: "BUNDLE", Marketplace: "Amazon"},
		model.Mapping{SKU: "kit-200", MSKU: "BUNDLE", Marketplace: "eBay"},
	)

	// product-name APPLE (0.7) vs prefix "kit-" (0.8)
	m, err := e.GetMsku("KIT-APPLE", "Walmart")
	require.NoError(t, err)
	assert.Equal(t, "BUNDLE", m.MSKU)
	assert.Equal(t, 0.8, m.Confidence)
	assert.Equal(t, model.KindPrefix, m.Pattern)
}

func TestGetMskuTieGoesToFirstGroup(t *testing.T) {
	e := newEngine(t, demoMappings()...)

	// WIDGET-001 and WIDGET-002 both emit a 0.7 product-name rule for WIDGET
	m, err := e.GetMsku("WIDGET-GREEN", "eBay")
	require.NoError(t, err)
	assert.Equal(t, "WIDGET-001", m.MSKU)
	assert.Equal(t, model.KindProductName, m.Pattern)
}

func TestGetMskuVariantOvergeneration(t *testing.T) {
	e := newEngine(t,
		model.Mapping{SKU: "TEE-BLUE-01", MSKU: "shirt", Marketplace: "Amazon"},
		model.Mapping{SKU: "BL-TEE", MSKU: "shirt", Marketplace: "Shopify"},
	)

	// "orange" never appears in the data but still resolves
	m, err := e.GetMsku("HAT-ORANGE", "Etsy")
	require.NoError(t, err)
	assert.Equal(t, "shirt", m.MSKU)
	assert.Equal(t, model.KindColorVariant, m.Pattern)
	assert.Equal(t, 0.6, m.Confidence)
}

func TestAddMapping(t *testing.T) {
	t.Run("should reject a duplicate key", func(t *testing.T) {
		e := newEngine(t)

		m, err := e.AddMapping("GLD", "APPLE-001", "Shopify")
		require.NoError(t, err)
		assert.Equal(t, model.Mapping{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"}, m)

		_, err = e.AddMapping("GLD", "APPLE-001", "Shopify")
		require.ErrorIs(t, err, ErrDuplicateMapping)
		assert.Equal(t, "Mapping already exists for SKU GLD in Shopify", Message(err))
		assert.Equal(t, 1, e.Len())
	})

	t.Run("should compare keys case-insensitively", func(t *testing.T) {
		e := newEngine(t, model.Mapping{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"})

		_, err := e.AddMapping("gld", "APPLE-999", "SHOPIFY")
		require.ErrorIs(t, err, ErrDuplicateMapping)

		m, err := e.GetMsku("GLD", "Shopify")
		require.NoError(t, err)
		assert.Equal(t, "APPLE-001", m.MSKU)
	})

	t.Run("should rebuild patterns", func(t *testing.T) {
		e := newEngine(t, model.Mapping{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"})
		assert.Empty(t, e.Patterns())

		_, err := e.AddMapping("GOLDEN-APPLE", "APPLE-001", "Amazon")
		require.NoError(t, err)
		require.Len(t, e.Patterns(), 1)
		assert.Equal(t, model.KindProductName, e.Patterns()[0].Kind)
	})
}

func TestRemoveMapping(t *testing.T) {
	t.Run("should drop the exact entry and stale patterns", func(t *testing.T) {
		e := newEngine(t, appleMappings()...)
		require.NotEmpty(t, e.Patterns())

		msg, err := e.RemoveMapping("gld", "SHOPIFY")
		require.NoError(t, err)
		assert.Equal(t, "Mapping removed for SKU gld in SHOPIFY", msg)
		assert.Equal(t, 1, e.Len())
		assert.Empty(t, e.Patterns())

		_, err = e.GetMsku("GLD", "Shopify")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("lookup may still fall back to a pattern", func(t *testing.T) {
		e := newEngine(t, append(appleMappings(),
			model.Mapping{SKU: "APPLE-GOLD", MSKU: "APPLE-001", Marketplace: "eBay"})...)

		_, err := e.RemoveMapping("GLD", "Shopify")
		require.NoError(t, err)

		m, err := e.GetMsku("GLD", "Shopify")
		if err == nil {
			assert.NotEqual(t, model.MatchExact, m.MatchType)
		}
		m, err = e.GetMsku("GREEN-APPLE", "Shopify")
		require.NoError(t, err)
		assert.Equal(t, model.MatchPattern, m.MatchType)
	})

	t.Run("should fail on a missing key", func(t *testing.T) {
		e := newEngine(t, appleMappings()...)

		_, err := e.RemoveMapping("NOPE", "Shopify")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "No mapping exists for SKU NOPE in Shopify", Message(err))
		assert.Equal(t, 2, e.Len())
	})
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(zerolog.Nop(), []model.Mapping{
		{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"},
		{SKU: "gld", MSKU: "APPLE-002", Marketplace: "shopify"},
	})
	assert.ErrorIs(t, err, ErrDuplicateMapping)
}

func TestBulkProcess(t *testing.T) {
	e := newEngine(t, demoMappings()...)

	items := []model.BulkItem{
		{SKU: "GLD", Marketplace: "Shopify"},
		{SKU: "PINK-APPLE", Marketplace: "Amazon"},
		{SKU: "ZZZ", Marketplace: "Amazon"},
		{SKU: "GLD", Marketplace: ""},
		{SKU: "", Marketplace: "Amazon"},
	}
	res := e.BulkProcess(items)

	assert.Equal(t, len(items), res.Processed)
	assert.Equal(t, res.Processed, res.Matched+res.NotMatched)
	require.Len(t, res.Details, len(items))
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 3, res.NotMatched)

	assert.Equal(t, model.BulkDetail{SKU: "GLD", Marketplace: "Shopify", MSKU: "APPLE-001", MatchType: model.MatchExact, Confidence: 1.0}, res.Details[0])
	assert.Equal(t, model.MatchPattern, res.Details[1].MatchType)
	assert.Equal(t, 0.7, res.Details[1].Confidence)
	assert.Equal(t, "No mapping found for SKU ZZZ in Amazon", res.Details[2].Error)
	assert.Equal(t, "Marketplace is required", res.Details[3].Error)
	assert.Equal(t, "SKU is required", res.Details[4].Error)
}

func TestBulkProcessEmpty(t *testing.T) {
	res := newEngine(t).BulkProcess(nil)
	assert.Equal(t, 0, res.Processed)
	assert.NotNil(t, res.Details)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	e := newEngine(t, demoMappings()...)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			sku := fmt.Sprintf("WIDGET-X%d", i)
			_, _ = e.AddMapping(sku, "WIDGET-001", "eBay")
			_, _ = e.RemoveMapping(sku, "eBay")
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m, err := e.GetMsku("GLD", "Shopify")
				assert.NoError(t, err)
				assert.Equal(t, "APPLE-001", m.MSKU)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, len(demoMappings()), e.Len())
}

func TestHas(t *testing.T) {
	e := newEngine(t, appleMappings()...)

	assert.True(t, e.Has("gld", "SHOPIFY"))
	assert.False(t, e.Has("GLD", "Amazon"))

	_, err := e.AddMapping("GLD", "APPLE-001", "Shopify")
	assert.Equal(t, DuplicateError("GLD", "Shopify"), err)
	assert.ErrorIs(t, DuplicateError("X", "Y"), ErrDuplicateMapping)
}
