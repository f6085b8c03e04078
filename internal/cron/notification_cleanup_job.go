package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shelflife/shelflife-backend/pkg/logger"
)

const (
	defaultNotificationRetention = 30 * 24 * time.Hour
	defaultPurgeChunk            = 500
)

type notificationPurger interface {
	PurgeRead(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationPurger
	// Retention is how long read notifications are kept.
	Retention time.Duration
	// ChunkSize caps the rows removed per statement.
	ChunkSize int
}

func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.Repository == nil:
		return nil, errors.New("notifications repository required")
	}
	job := &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: params.Retention,
		chunk:     params.ChunkSize,
		now:       time.Now,
	}
	if job.retention <= 0 {
		job.retention = defaultNotificationRetention
	}
	if job.chunk <= 0 {
		job.chunk = defaultPurgeChunk
	}
	return job, nil
}

// notificationCleanupJob purges read notifications in chunks until a chunk
// comes back short, so no single statement holds locks for long.
type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationPurger
	retention time.Duration
	chunk     int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return JobNotificationCleanup }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var total int64
	chunks := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := j.repo.PurgeRead(ctx, cutoff, j.chunk)
		if err != nil {
			return fmt.Errorf("purge read notifications after %d rows: %w", total, err)
		}
		total += n
		chunks++
		if n < int64(j.chunk) {
			break
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": total,
		"chunks":       chunks,
	}), "notification cleanup complete")
	return nil
}
