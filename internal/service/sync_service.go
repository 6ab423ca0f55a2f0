package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/config"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/metrics"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/repository"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"go.uber.org/zap"
)

// SyncStatus is what the persistence indicator shows
type SyncStatus string

const (
	StatusSaving SyncStatus = "saving"
	StatusSynced SyncStatus = "synced"
	StatusError  SyncStatus = "error"
)

// SyncState is the persistence indicator plus the outcome of the last save
type SyncState struct {
	Status      SyncStatus `json:"status"`
	LastSavedAt *time.Time `json:"lastSavedAt,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

// SyncService writes every store change through the snapshot repository.
// It is the store's notifier, so saves run in mutation order.
type SyncService struct {
	repo    repository.SnapshotRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
	delay   time.Duration
	timeout time.Duration
	clock   func() time.Time

	mu          sync.Mutex
	status      SyncStatus
	lastSavedAt *time.Time
	lastError   string
	generation  uint64
	timer       *time.Timer
}

// NewSyncService creates a new SyncService
func NewSyncService(repo repository.SnapshotRepository, m *metrics.Metrics, cfg config.SyncConfig, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.SaveTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SyncService{
		repo:    repo,
		metrics: m,
		logger:  logger,
		delay:   cfg.IndicatorDelay,
		timeout: timeout,
		clock:   time.Now,
		status:  StatusSynced,
	}
}

// Restore hydrates st from the repository. An empty repository leaves the
// store empty.
func (s *SyncService) Restore(ctx context.Context, st *store.Store) error {
	snapshot, err := s.repo.Load(ctx)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		s.logger.Info("No saved state found, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	st.Hydrate(*snapshot)
	s.metrics.SetInventory(*snapshot)

	s.logger.Info("State restored",
		zap.Int("products", len(snapshot.Products)),
		zap.Int("sales", len(snapshot.Sales)),
		zap.Int("logs", len(snapshot.Logs)),
	)
	return nil
}

// Notify saves the snapshot carried by change. Failures are logged and
// reported through State, they never reach the store.
func (s *SyncService) Notify(change store.Change) {
	gen := s.begin()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.repo.Save(ctx, change.Snapshot)
	s.metrics.ObserveSnapshotSave(err)
	s.metrics.SetInventory(change.Snapshot)

	if err != nil {
		s.logger.Error("Failed to save snapshot",
			zap.String("operation", string(change.Operation)),
			zap.Error(err),
		)
	}

	s.finish(gen, err)
}

func (s *SyncService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.status = StatusSaving
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.generation
}

func (s *SyncService) finish(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusError
		s.lastError = err.Error()
		return
	}

	now := s.clock()
	s.lastSavedAt = &now
	s.lastError = ""

	if s.delay <= 0 {
		s.status = StatusSynced
		return
	}

	// the indicator stays on saving for a short while after the write
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation == gen {
			s.status = StatusSynced
		}
	})
}

// State returns the current indicator
func (s *SyncService) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SyncState{Status: s.status, LastError: s.lastError}
	if s.lastSavedAt != nil {
		saved := *s.lastSavedAt
		state.LastSavedAt = &saved
	}
	return state
}

// Setup reports whether this is the first open of the app and records that
// onboarding happened
func (s *SyncService) Setup(ctx context.Context) (bool, error) {
	configured, err := s.repo.IsConfigured(ctx)
	if err != nil {
		return false, err
	}
	if configured {
		return false, nil
	}

	if err := s.repo.MarkConfigured(ctx); err != nil {
		return false, err
	}
	s.logger.Info("First open, onboarding recorded")
	return true, nil
}

// Stop cancels a pending indicator update
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
