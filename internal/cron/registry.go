package cron

import (
	"context"
	"fmt"
)

const (
	JobBatchExpiry         = "batch-expiry"
	JobNotificationCleanup = "notification-cleanup"
	JobAnalyticsSnapshot   = "analytics-snapshot"
)

// Job is one unit of scheduled maintenance. Run must be safe to repeat: a
// cycle that dies halfway is simply run again on the next tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in run order, unique by name.
type Registry struct {
	order []Job
	named map[string]Job
}

func NewRegistry(jobs ...Job) (*Registry, error) {
	r := &Registry{named: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		if err := r.Register(job); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends job; nil jobs are ignored so optional jobs can be passed
// through unconditionally.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	if _, dup := r.named[job.Name()]; dup {
		return fmt.Errorf("job %q registered twice", job.Name())
	}
	r.named[job.Name()] = job
	r.order = append(r.order, job)
	return nil
}

// Jobs returns a copy of every job in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.order...)
}

// Select returns the named jobs in the order given, or every job when no
// names are passed.
func (r *Registry) Select(names ...string) ([]Job, error) {
	if len(names) == 0 {
		return r.Jobs(), nil
	}
	selected := make([]Job, 0, len(names))
	for _, name := range names {
		job, ok := r.named[name]
		if !ok {
			return nil, fmt.Errorf("unknown job %q", name)
		}
		selected = append(selected, job)
	}
	return selected, nil
}
