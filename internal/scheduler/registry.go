// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// ErrUnknownJob is returned by Run for a name that was never added.
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobRunning is returned when a job is asked to start while it runs.
	ErrJobRunning = errors.New("job is already running")
)

// Outcome describes the most recent run of a job.
type Outcome struct {
	Started time.Time
	Took    time.Duration
	Manual  bool
	Err     string
}

// Failed reports whether the run returned an error.
func (o Outcome) Failed() bool { return o.Err != "" }

// JobInfo is the jobs page view of one job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	NextRun     time.Time
	Running     bool
	Last        *Outcome // nil until the first run
}

type job struct {
	description string
	schedule    string
	entryID     cron.EntryID
	run         func() error
	running     bool
	last        *Outcome
}

// Registry owns the cron entries of the console and remembers how each
// job last went. A job never overlaps with itself.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*job
}

// NewRegistry creates a registry adding entries to c. A nil c keeps jobs
// manual only.
func NewRegistry(c *cron.Cron, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{cron: c, logger: logger, now: time.Now, jobs: make(map[string]*job)}
}

// Add schedules run under name. Scheduled runs that find the job still
// busy are skipped.
func (r *Registry) Add(name, description, schedule string, run func() error) error {
	j := &job{description: description, schedule: schedule, run: run}
	if r.cron != nil {
		id, err := r.cron.AddFunc(schedule, func() {
			if err := r.execute(name, false); errors.Is(err, ErrJobRunning) {
				r.logger.Warn("skipping overlapping job run", "job", name)
			}
		})
		if err != nil {
			return fmt.Errorf("job %s: %w", name, err)
		}
		j.entryID = id
	}

	r.mu.Lock()
	r.jobs[name] = j
	r.mu.Unlock()
	r.logger.Debug("job scheduled", "job", name, "schedule", schedule)
	return nil
}

// Run starts name now and waits for it.
func (r *Registry) Run(name string) error {
	return r.execute(name, true)
}

func (r *Registry) execute(name string, manual bool) error {
	r.mu.Lock()
	j, ok := r.jobs[name]
	switch {
	case !ok:
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	case j.running:
		r.mu.Unlock()
		return ErrJobRunning
	}
	j.running = true
	r.mu.Unlock()

	started := r.now()
	err := j.run()
	took := r.now().Sub(started)

	out := &Outcome{Started: started, Took: took, Manual: manual}
	if err != nil {
		out.Err = err.Error()
		r.logger.Error("job failed", "job", name, "manual", manual, "error", err)
	} else {
		r.logger.Info("job finished", "job", name, "manual", manual, "took", took.Round(time.Millisecond))
	}

	r.mu.Lock()
	j.running = false
	j.last = out
	r.mu.Unlock()
	return err
}

// Remove drops name and its cron entry.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[name]
	if !ok {
		return
	}
	if r.cron != nil {
		r.cron.Remove(j.entryID)
	}
	delete(r.jobs, name)
}

// List returns the jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]JobInfo, 0, len(r.jobs))
	for name, j := range r.jobs {
		info := JobInfo{Name: name, Description: j.description, Schedule: j.schedule, Running: j.running}
		if j.last != nil {
			last := *j.last
			info.Last = &last
		}
		if r.cron != nil {
			info.NextRun = r.cron.Entry(j.entryID).Next
		}
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}
