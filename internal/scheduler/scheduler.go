// Package scheduler runs the optional nightly location re-sync so the
// remote index converges with the canonical dataset without manual sync
// runs. Disabled by default.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/config"
)

// Scheduler wraps a single cron entry around the sync routine.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.SyncConfig
	logger    *logrus.Logger
	run       func() error
	isRunning bool
}

// New builds a scheduler around run, typically a closure performing a full
// index sync.
func New(cfg config.SyncConfig, logger *logrus.Logger, run func() error) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:   cron.New(),
		cfg:    cfg,
		logger: logger,
		run:    run,
	}
}

// Start registers the daily job when enabled. A disabled scheduler is a
// no-op.
func (s *Scheduler) Start() error {
	if !s.cfg.DailyEnabled {
		s.logger.Info("scheduler: daily sync disabled in configuration")
		return nil
	}

	spec := parseDailyTime(s.cfg.DailyTime)
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("scheduler: starting daily location sync")
		if err := s.run(); err != nil {
			s.logger.WithError(err).Error("scheduler: daily location sync failed")
			return
		}
		s.logger.Info("scheduler: daily location sync completed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("at", s.cfg.DailyTime).Info("scheduler: started")
	return nil
}

// Stop halts the cron loop.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.logger.Info("scheduler: stopped")
	}
}

// parseDailyTime converts "HH:MM" into a cron spec, defaulting to 03:00 on
// malformed input.
func parseDailyTime(t string) string {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) == 2 {
		var hour, minute int
		if _, err := fmt.Sscanf(t, "%d:%d", &hour, &minute); err == nil &&
			hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
			return fmt.Sprintf("%d %d * * *", minute, hour)
		}
	}
	return "0 3 * * *"
}
