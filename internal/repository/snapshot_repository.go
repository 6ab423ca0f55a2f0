package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
)

// Storage keys shared by every backend
const (
	KeyProducts   = "gestao_pro_products"
	KeySales      = "gestao_pro_sales"
	KeyLogs       = "gestao_pro_logs"
	KeyConfigured = "gestao_pro_configured"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotRepository persists the whole application state and the onboarding flag
type SnapshotRepository interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
	IsConfigured(ctx context.Context) (bool, error)
	MarkConfigured(ctx context.Context) error
	Close() error
}

type snapshotRepository struct {
	kv KeyValueStore
}

// NewSnapshotRepository creates a new instance of SnapshotRepository on top of kv
func NewSnapshotRepository(kv KeyValueStore) SnapshotRepository {
	return &snapshotRepository{kv: kv}
}

// Load reads the three collections. A missing collection loads empty; when
// none of them exists ErrSnapshotNotFound is returned.
func (r *snapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot

	targets := []struct {
		key  string
		dest any
	}{
		{KeyProducts, &snapshot.Products},
		{KeySales, &snapshot.Sales},
		{KeyLogs, &snapshot.Logs},
	}

	missing := 0
	for _, target := range targets {
		data, err := r.kv.Get(ctx, target.key)
		if errors.Is(err, ErrKeyNotFound) {
			missing++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", target.key, err)
		}
		if err := json.Unmarshal(data, target.dest); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", target.key, err)
		}
	}

	if missing == len(targets) {
		return nil, ErrSnapshotNotFound
	}

	normalized := snapshot.Normalized()
	return &normalized, nil
}

// Save writes the three collections together
func (r *snapshotRepository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	snapshot = snapshot.Normalized()

	products, err := json.Marshal(snapshot.Products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	sales, err := json.Marshal(snapshot.Sales)
	if err != nil {
		return fmt.Errorf("failed to encode sales: %w", err)
	}
	logs, err := json.Marshal(snapshot.Logs)
	if err != nil {
		return fmt.Errorf("failed to encode logs: %w", err)
	}

	err = r.kv.SetMany(ctx, map[string][]byte{
		KeyProducts: products,
		KeySales:    sales,
		KeyLogs:     logs,
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// IsConfigured reports whether onboarding has been completed
func (r *snapshotRepository) IsConfigured(ctx context.Context) (bool, error) {
	data, err := r.kv.Get(ctx, KeyConfigured)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read configured flag: %w", err)
	}

	var configured bool
	if err := json.Unmarshal(data, &configured); err != nil {
		return false, fmt.Errorf("failed to decode configured flag: %w", err)
	}
	return configured, nil
}

// MarkConfigured records that onboarding has been completed
func (r *snapshotRepository) MarkConfigured(ctx context.Context) error {
	if err := r.kv.SetMany(ctx, map[string][]byte{KeyConfigured: []byte("true")}); err != nil {
		return fmt.Errorf("failed to mark configured: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Close() error {
	return r.kv.Close()
}
