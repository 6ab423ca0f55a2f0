package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/config"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupService() service.BackupService {
	st := store.New()
	st.AddProduct(domain.Product{ID: "p1", Name: "Água", Stock: 3})
	return service.NewBackupService(st, nil, nil)
}

func TestRunBackupWritesFile(t *testing.T) {
	dir := t.TempDir()
	s := NewScheduler(config.BackupConfig{Dir: dir, Schedule: "0 3 * * *"}, newBackupService(), time.UTC, nil)

	path, err := s.RunBackup()
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	imported, err := domain.ParseBackup(data)
	require.NoError(t, err)
	assert.Len(t, imported.Products, 1)
}

func TestDisabledScheduler(t *testing.T) {
	s := NewScheduler(config.BackupConfig{Schedule: "0 3 * * *"}, newBackupService(), nil, nil)

	assert.False(t, s.Enabled())
	require.NoError(t, s.Start())
	s.Stop()

	_, err := s.RunBackup()
	assert.Error(t, err)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(config.BackupConfig{Dir: t.TempDir(), Schedule: "every day"}, newBackupService(), time.UTC, nil)

	assert.Error(t, s.Start())
}

func TestScheduledBackupRuns(t *testing.T) {
	dir := t.TempDir()
	s := NewScheduler(config.BackupConfig{Dir: dir, Schedule: "@every 1s"}, newBackupService(), time.UTC, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 1 && filepath.Ext(entries[0].Name()) == ".json"
	}, 5*time.Second, 100*time.Millisecond)
}
