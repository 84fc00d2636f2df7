// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/partsadmin/internal/logging"
	"github.com/olegiv/partsadmin/internal/render"
	"github.com/olegiv/partsadmin/internal/scheduler"
	"github.com/olegiv/partsadmin/internal/store"
)

const redirectAdminJobs = redirectAdmin + RouteJobs

// JobsHandler shows the background jobs and runs them on demand.
type JobsHandler struct {
	Deps
	registry *scheduler.Registry
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(d Deps, registry *scheduler.Registry) *JobsHandler {
	return &JobsHandler{Deps: d, registry: registry}
}

const jobTimeLayout = "2006-01-02 15:04:05"

// JobView is a job prepared for the template.
type JobView struct {
	Name        string
	Description string
	Schedule    string
	NextRun     string
	Running     bool
	LastRun     string
	LastTook    string
	LastError   string
	LastManual  bool
}

func newJobView(job scheduler.JobInfo) JobView {
	v := JobView{
		Name:        job.Name,
		Description: job.Description,
		Schedule:    job.Schedule,
		NextRun:     "-",
		LastRun:     "never",
		Running:     job.Running,
	}
	if !job.NextRun.IsZero() {
		v.NextRun = job.NextRun.Format(jobTimeLayout)
	}
	if last := job.Last; last != nil {
		v.LastRun = last.Started.Format(jobTimeLayout)
		v.LastTook = last.Took.Round(time.Millisecond).String()
		v.LastError = last.Err
		v.LastManual = last.Manual
	}
	return v
}

// List handles GET /admin/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.registry.List()
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	h.render(w, r, "admin/jobs", render.TemplateData{Title: "Background jobs", Nav: navJobs, Data: views})
}

// Run handles POST /admin/jobs/{name}/run.
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.registry.Run(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		flashError(w, r, h.Renderer, redirectAdminJobs, "Unknown job "+name)
		return
	case errors.Is(err, scheduler.ErrJobRunning):
		flashError(w, r, h.Renderer, redirectAdminJobs, "Job "+name+" is already running")
		return
	case err != nil:
		h.logger().Warn("manual job run failed", "job", name, "error", err)
		flashError(w, r, h.Renderer, redirectAdminJobs, "Job failed: "+err.Error())
		return
	}
	h.record(r, logging.Entry{Category: store.CategorySystem, Message: "Ran job", Details: map[string]string{"job": name}})
	flashSuccess(w, r, h.Renderer, redirectAdminJobs, "Job "+name+" finished")
}
