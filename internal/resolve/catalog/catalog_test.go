package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msku-service/internal/resolve/engine"
	"msku-service/internal/resolve/model"
	"msku-service/internal/resolve/store"
)

var opts = Options{SuggestThreshold: 0.6, SuggestLimit: 3}

// flakyStore fails writes on demand.
type flakyStore struct {
	*store.Memory
	failWrites bool
	onWrite    func() // runs before every write
}

var errDisk = errors.New("disk full")

func (f *flakyStore) Create(ctx context.Context, rec model.Record) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	if f.failWrites {
		return errDisk
	}
	return f.Memory.Create(ctx, rec)
}

func (f *flakyStore) Update(ctx context.Context, rec model.Record) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	if f.failWrites {
		return errDisk
	}
	return f.Memory.Update(ctx, rec)
}

func open(t *testing.T, st store.Store) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), st, zerolog.Nop(), opts)
	require.NoError(t, err)
	return c
}

func TestCatalogCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	c := open(t, store.NewMemory())

	rec, err := c.Create(ctx, "GLD", "APPLE-001", "Shopify")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = c.Create(ctx, "GOLDEN-APPLE", "APPLE-001", "Amazon")
	require.NoError(t, err)

	m, err := c.GetMsku("gld", "shopify")
	require.NoError(t, err)
	assert.Equal(t, model.MatchExact, m.MatchType)

	m, err = c.GetMsku("REDAPPLE", "Amazon")
	require.NoError(t, err)
	assert.Equal(t, model.MatchPattern, m.MatchType)
	assert.Len(t, c.Patterns(), 1)

	_, err = c.Create(ctx, "gld", "APPLE-002", "SHOPIFY")
	require.ErrorIs(t, err, engine.ErrDuplicateMapping)

	recs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestCatalogLoadsExistingRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	first := open(t, st)
	_, err := first.Create(ctx, "GLD", "APPLE-001", "Shopify")
	require.NoError(t, err)

	second := open(t, st)
	m, err := second.GetMsku("GLD", "Shopify")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-001", m.MSKU)
}

func TestCatalogUpdate(t *testing.T) {
	ctx := context.Background()
	c := open(t, store.NewMemory())
	a, err := c.Create(ctx, "GLD", "APPLE-001", "Shopify")
	require.NoError(t, err)
	b, err := c.Create(ctx, "RED-A", "APPLE-002", "Shopify")
	require.NoError(t, err)

	t.Run("should move the key", func(t *testing.T) {
		upd, err := c.Update(ctx, a.ID, "GOLD-1", "APPLE-001", "Shopify")
		require.NoError(t, err)
		assert.Equal(t, a.ID, upd.ID)
		assert.Equal(t, a.CreatedAt, upd.CreatedAt)

		_, err = c.GetMsku("GLD", "Shopify")
		assert.ErrorIs(t, err, engine.ErrNotFound)
		m, err := c.GetMsku("GOLD-1", "Shopify")
		require.NoError(t, err)
		assert.Equal(t, "APPLE-001", m.MSKU)
	})

	t.Run("should allow changing only the msku", func(t *testing.T) {
		_, err := c.Update(ctx, b.ID, "red-a", "APPLE-003", "shopify")
		require.NoError(t, err)
		m, err := c.GetMsku("RED-A", "Shopify")
		require.NoError(t, err)
		assert.Equal(t, "APPLE-003", m.MSKU)
	})

	t.Run("should reject a key held by another record", func(t *testing.T) {
		_, err := c.Update(ctx, b.ID, "GOLD-1", "APPLE-003", "Shopify")
		require.ErrorIs(t, err, engine.ErrDuplicateMapping)
		assert.Equal(t, "Update would create duplicate mapping", engine.Message(err))
	})

	t.Run("should report a missing record", func(t *testing.T) {
		_, err := c.Update(ctx, "nope", "X", "Y", "Z")
		require.ErrorIs(t, err, engine.ErrNotFound)
		assert.Equal(t, "Mapping not found", engine.Message(err))
	})
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	c := open(t, store.NewMemory())
	rec, err := c.Create(ctx, "GLD", "APPLE-001", "Shopify")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, rec.ID))
	_, err = c.GetMsku("GLD", "Shopify")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	err = c.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = c.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestCatalogRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{Memory: store.NewMemory()}
	c := open(t, st)
	rec, err := c.Create(ctx, "GLD", "APPLE-001", "Shopify")
	require.NoError(t, err)

	st.failWrites = true

	_, err = c.Create(ctx, "RED-A", "APPLE-002", "Shopify")
	require.ErrorIs(t, err, errDisk)
	_, err = c.GetMsku("RED-A", "Shopify")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = c.Update(ctx, rec.ID, "GOLD-1", "APPLE-001", "Shopify")
	require.ErrorIs(t, err, errDisk)
	m, err := c.GetMsku("GLD", "Shopify")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-001", m.MSKU)
}

func TestCatalogWritesStoreBeforeEngine(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{Memory: store.NewMemory()}
	c := open(t, st)

	var duringWrite error
	st.onWrite = func() { _, duringWrite = c.GetMsku("RED-A", "Shopify") }
	st.failWrites = true

	_, err := c.Create(ctx, "RED-A", "APPLE-002", "Shopify")
	require.ErrorIs(t, err, errDisk)
	assert.ErrorIs(t, duringWrite, engine.ErrNotFound, "mapping must not resolve while the store write is pending")

	st.failWrites = false
	rec, err := c.Create(ctx, "RED-A", "APPLE-002", "Shopify")
	require.NoError(t, err)
	assert.ErrorIs(t, duringWrite, engine.ErrNotFound)
	m, err := c.GetMsku("RED-A", "Shopify")
	require.NoError(t, err)
	assert.Equal(t, "APPLE-002", m.MSKU)

	st.onWrite = func() { _, duringWrite = c.GetMsku("RED-B", "Shopify") }
	st.failWrites = true
	_, err = c.Update(ctx, rec.ID, "RED-B", "APPLE-002", "Shopify")
	require.ErrorIs(t, err, errDisk)
	assert.ErrorIs(t, duringWrite, engine.ErrNotFound)
	_, err = c.GetMsku("RED-B", "Shopify")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	recs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestCatalogSeed(t *testing.T) {
	ctx := context.Background()
	c := open(t, store.NewMemory())

	n, err := c.Seed(ctx, []model.Mapping{
		{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"},
		{SKU: "gld", MSKU: "APPLE-001", Marketplace: "shopify"},
		{SKU: "RED-A", MSKU: "APPLE-002", Marketplace: "Shopify"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Seed(ctx, []model.Mapping{{SKU: "X", MSKU: "Y", Marketplace: "Z"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCatalogSuggest(t *testing.T) {
	ctx := context.Background()
	c := open(t, store.NewMemory())
	assert.Empty(t, c.Suggest("WIDGET-BLU"))

	_, err := c.Create(ctx, "WIDGET-BLUE", "WIDGET-001", "Amazon")
	require.NoError(t, err)

	got := c.Suggest("WIDGET-BLU")
	require.Len(t, got, 1)
	assert.Equal(t, "WIDGET-001", got[0].MSKU)
}
