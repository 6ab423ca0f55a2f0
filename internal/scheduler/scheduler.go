package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/config"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"
)

// Scheduler writes backup files on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	backup service.BackupService
	cfg    config.BackupConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance. loc is the zone the
// schedule is read in, nil means local time.
func NewScheduler(cfg config.BackupConfig, backup service.BackupService, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		backup: backup,
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether a backup directory is configured
func (s *Scheduler) Enabled() bool {
	return s.cfg.Dir != ""
}

// Start registers the backup job and starts the scheduler. It does nothing
// when backups are disabled.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		s.logger.Info("Automatic backups disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule backup %q: %w", s.cfg.Schedule, err)
	}

	s.logger.Info("Starting backup scheduler",
		zap.String("schedule", s.cfg.Schedule),
		zap.String("dir", s.cfg.Dir),
	)
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Backup scheduler stopped")
}

// RunBackup writes one backup file now and returns its path
func (s *Scheduler) RunBackup() (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("backup directory not configured")
	}
	return s.backup.ExportToFile(s.cfg.Dir)
}

func (s *Scheduler) runScheduled() {
	path, err := s.RunBackup()
	if err != nil {
		s.logger.Error("Failed to write scheduled backup", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled backup written", zap.String("path", path))
}
