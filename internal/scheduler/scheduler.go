// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background jobs of the admin: refreshing the
// approval badge counts and pruning the local activity log.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/partsadmin/internal/approval"
	"github.com/olegiv/partsadmin/internal/catalog"
	"github.com/olegiv/partsadmin/internal/store"
)

// Job names.
const (
	JobCounts      = "approval-counts"
	JobActivityGC  = "activity-cleanup"
	JobGeoIPReload = "geoip-reload"
	defaultCleanup = "0 3 * * *"
	geoIPSchedule  = "30 4 * * *"
	jobTimeout     = 30 * time.Second
)

// ErrNoServiceToken is returned when the count refresh runs without a token.
var ErrNoServiceToken = errors.New("scheduler: no service token configured")

// CountRefresher reloads the approval badge counts.
type CountRefresher interface {
	RefreshCounts(ctx context.Context) (approval.Counts, error)
}

// Reloader picks up a replaced database file.
type Reloader interface {
	Reload() error
	Enabled() bool
}

// Config selects which jobs run and when.
type Config struct {
	CountSchedule   string // empty disables the count refresh
	ServiceToken    string
	CleanupSchedule string        // defaults to daily at 03:00
	Retention       time.Duration // 0 disables activity cleanup
	GeoIP           Reloader      // reloaded daily when enabled
}

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	db       *sql.DB
	counts   CountRefresher
	cfg      Config
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a scheduler. db and counts may be nil; the jobs that need
// them are then not registered.
func New(db *sql.DB, counts CountRefresher, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CleanupSchedule == "" {
		cfg.CleanupSchedule = defaultCleanup
	}
	s := &Scheduler{
		db:     db,
		counts: counts,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger,
		now:    time.Now,
	}
	s.registry = NewRegistry(s.cron, logger)
	return s
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start registers the configured jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.counts != nil && s.cfg.CountSchedule != "" && s.cfg.ServiceToken != "" {
		if err := s.add(JobCounts, "Refresh pending approval counts", s.cfg.CountSchedule, s.refreshCounts); err != nil {
			return err
		}
	}
	if s.db != nil && s.cfg.Retention > 0 {
		if err := s.add(JobActivityGC, "Delete old activity log entries", s.cfg.CleanupSchedule, s.cleanupActivity); err != nil {
			return err
		}
	}

	if s.cfg.GeoIP != nil && s.cfg.GeoIP.Enabled() {
		if err := s.add(JobGeoIPReload, "Reload the GeoIP database if updated", geoIPSchedule, s.cfg.GeoIP.Reload); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) add(name, description, schedule string, run func() error) error {
	return s.registry.Add(name, description, schedule, run)
}

// refreshCounts reloads the badge counts with the service token.
func (s *Scheduler) refreshCounts() error {
	if s.cfg.ServiceToken == "" {
		return ErrNoServiceToken
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	counts, err := s.counts.RefreshCounts(catalog.WithToken(ctx, s.cfg.ServiceToken))
	if err != nil {
		return err
	}
	s.logger.Debug("approval counts refreshed", "total", counts.Total)
	return nil
}

// cleanupActivity deletes activity entries older than the retention period.
func (s *Scheduler) cleanupActivity() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := store.New(s.db).DeleteActivitiesBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("activity log pruned", "deleted", n, "before", cutoff.Format(time.RFC3339))
	}
	return nil
}
