package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-process KeyValueStore for repository tests
type memoryStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	failGet error
	failSet error
	writes  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryStore) SetMany(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.writes++
	for k, v := range entries {
		m.values[k] = v
	}
	return nil
}

func (m *memoryStore) Close() error { return nil }

func sampleSnapshot() domain.Snapshot {
	photo := "data:image/png;base64,AAAA"
	return domain.Snapshot{
		Products: []domain.Product{{
			ID:           "p1",
			Name:         "Coca-Cola 350ml",
			Photo:        &photo,
			CostPrice:    decimal.RequireFromString("4.50"),
			SellingPrice: decimal.RequireFromString("9.90"),
			Stock:        7,
		}},
		Sales: []domain.Sale{{
			ID:             "s1",
			ProductID:      "p1",
			ProductName:    "Coca-Cola 350ml",
			Quantity:       3,
			TotalPrice:     decimal.RequireFromString("29.70"),
			TotalCost:      decimal.RequireFromString("13.50"),
			TotalBasePrice: decimal.RequireFromString("29.70"),
			Date:           time.Date(2025, time.March, 9, 15, 4, 5, 0, time.UTC),
			CustomerName:   "Maria",
			PaymentMethod:  domain.PaymentCard,
		}},
		Logs: []domain.ActivityLog{{
			ID:        "l1",
			Timestamp: time.Date(2025, time.March, 9, 15, 4, 5, 0, time.UTC),
			Action:    `Venda de 3x "Coca-Cola 350ml" realizada (R$ 29.70)`,
			Type:      domain.LogTypeSale,
		}},
	}
}

// assertSnapshotEqual compares snapshots by value, decimals by amount
func assertSnapshotEqual(t *testing.T, want, got domain.Snapshot) {
	t.Helper()

	require.Len(t, got.Products, len(want.Products))
	for i := range want.Products {
		w, g := want.Products[i], got.Products[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Name, g.Name)
		assert.Equal(t, w.Photo, g.Photo)
		assert.True(t, w.CostPrice.Equal(g.CostPrice), "cost price %s != %s", w.CostPrice, g.CostPrice)
		assert.True(t, w.SellingPrice.Equal(g.SellingPrice), "selling price %s != %s", w.SellingPrice, g.SellingPrice)
		assert.Equal(t, w.Stock, g.Stock)
	}

	require.Len(t, got.Sales, len(want.Sales))
	for i := range want.Sales {
		w, g := want.Sales[i], got.Sales[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.ProductID, g.ProductID)
		assert.Equal(t, w.ProductName, g.ProductName)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.True(t, w.TotalPrice.Equal(g.TotalPrice))
		assert.True(t, w.TotalCost.Equal(g.TotalCost))
		assert.True(t, w.TotalBasePrice.Equal(g.TotalBasePrice))
		assert.True(t, w.Date.Equal(g.Date))
		assert.Equal(t, w.CustomerName, g.CustomerName)
		assert.Equal(t, w.PaymentMethod, g.PaymentMethod)
	}

	require.Len(t, got.Logs, len(want.Logs))
	for i := range want.Logs {
		w, g := want.Logs[i], got.Logs[i]
		assert.Equal(t, w.ID, g.ID)
		assert.True(t, w.Timestamp.Equal(g.Timestamp))
		assert.Equal(t, w.Action, g.Action)
		assert.Equal(t, w.Type, g.Type)
	}
}

func TestLoadEmptyStoreReportsNotFound(t *testing.T) {
	repo := NewSnapshotRepository(newMemoryStore())

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSaveThenLoad(t *testing.T) {
	kv := newMemoryStore()
	repo := NewSnapshotRepository(kv)
	ctx := context.Background()

	want := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, want))
	assert.Equal(t, 1, kv.writes, "the three collections are written together")

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, *got)
}

func TestLoadWithMissingCollectionLoadsItEmpty(t *testing.T) {
	kv := newMemoryStore()
	kv.values[KeyProducts] = []byte(`[{"id":"p1","name":"Água","photo":null,"costPrice":1,"sellingPrice":2.5,"stock":3}]`)
	repo := NewSnapshotRepository(kv)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Products, 1)
	assert.Equal(t, "Água", got.Products[0].Name)
	assert.Nil(t, got.Products[0].Photo)
	assert.True(t, got.Products[0].SellingPrice.Equal(decimal.RequireFromString("2.5")))
	assert.NotNil(t, got.Sales)
	assert.Empty(t, got.Sales)
	assert.NotNil(t, got.Logs)
}

func TestSaveWritesEmptyArraysForNilCollections(t *testing.T) {
	kv := newMemoryStore()
	repo := NewSnapshotRepository(kv)

	require.NoError(t, repo.Save(context.Background(), domain.Snapshot{}))

	assert.Equal(t, "[]", string(kv.values[KeyProducts]))
	assert.Equal(t, "[]", string(kv.values[KeySales]))
	assert.Equal(t, "[]", string(kv.values[KeyLogs]))
}

func TestLoadCorruptCollection(t *testing.T) {
	kv := newMemoryStore()
	kv.values[KeySales] = []byte(`{not json`)
	repo := NewSnapshotRepository(kv)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
	assert.Contains(t, err.Error(), KeySales)
}

func TestBackendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	kv := newMemoryStore()
	kv.failGet = boom
	kv.failSet = boom
	repo := NewSnapshotRepository(kv)
	ctx := context.Background()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, repo.Save(ctx, sampleSnapshot()), boom)

	_, err = repo.IsConfigured(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, repo.MarkConfigured(ctx), boom)
}

func TestConfiguredFlag(t *testing.T) {
	kv := newMemoryStore()
	repo := NewSnapshotRepository(kv)
	ctx := context.Background()

	configured, err := repo.IsConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)

	require.NoError(t, repo.MarkConfigured(ctx))

	configured, err = repo.IsConfigured(ctx)
	require.NoError(t, err)
	assert.True(t, configured)

	// the flag does not count as a snapshot
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	repo := NewSnapshotRepository(newMemoryStore())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot()))

	next := sampleSnapshot()
	next.Sales = nil
	for i := 0; i < 3; i++ {
		next.Logs = append(next.Logs, domain.ActivityLog{ID: fmt.Sprintf("n%d", i), Type: domain.LogTypeSystem})
	}
	require.NoError(t, repo.Save(ctx, next))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Sales)
	assert.Len(t, got.Logs, 4)
}
