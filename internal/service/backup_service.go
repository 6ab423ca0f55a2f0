package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/metrics"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"go.uber.org/zap"
)

// BackupService exports and restores the whole application state
type BackupService interface {
	// Export returns the backup document and its file name
	Export() ([]byte, string, error)
	// Import replaces the state with a backup document. Invalid documents
	// fail with domain.ErrInvalidBackup and change nothing.
	Import(data []byte) error
	// ExportToFile writes the backup into dir and returns its path
	ExportToFile(dir string) (string, error)
}

type backupService struct {
	store   *store.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	clock   func() time.Time
}

// NewBackupService creates a new instance of BackupService
func NewBackupService(s *store.Store, m *metrics.Metrics, logger *zap.Logger) BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &backupService{store: s, metrics: m, logger: logger, clock: time.Now}
}

func (s *backupService) Export() ([]byte, string, error) {
	now := s.clock()
	backup := domain.NewBackup(s.store.Snapshot(), now)

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode backup: %w", err)
	}

	return data, domain.BackupFileName(now.UTC()), nil
}

func (s *backupService) Import(data []byte) error {
	imported, err := domain.ParseBackup(data)
	if err != nil {
		s.metrics.ObserveStoreOperation(string(store.OpImportSnapshot), err)
		return err
	}

	logs := imported.Logs
	if logs == nil {
		// a backup without logs restores an empty feed
		logs = []domain.ActivityLog{}
	}

	s.store.ImportSnapshot(imported.Products, imported.Sales, logs)
	s.metrics.ObserveStoreOperation(string(store.OpImportSnapshot), nil)

	s.logger.Info("Backup imported",
		zap.Int("products", len(imported.Products)),
		zap.Int("sales", len(imported.Sales)),
		zap.Int("logs", len(logs)),
	)
	return nil
}

func (s *backupService) ExportToFile(dir string) (string, error) {
	data, name, err := s.Export()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to replace backup: %w", err)
	}

	return path, nil
}
