package cron

import (
	"context"
	"fmt"

	"github.com/shelflife/shelflife-backend/pkg/logger"
)

type batchExpirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// NewBatchExpiryJob marks active batches past their expiry date as expired.
func NewBatchExpiryJob(logg *logger.Logger, inventory batchExpirer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &batchExpiryJob{logg: logg, inventory: inventory}, nil
}

type batchExpiryJob struct {
	logg      *logger.Logger
	inventory batchExpirer
}

func (j *batchExpiryJob) Name() string { return JobBatchExpiry }

func (j *batchExpiryJob) Run(ctx context.Context) error {
	n, err := j.inventory.ExpireDue(ctx)
	if err != nil {
		return fmt.Errorf("expire batches: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "batches_expired", n), "batch expiry complete")
	return nil
}
