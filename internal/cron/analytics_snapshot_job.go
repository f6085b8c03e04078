package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

type summaryBuilder interface {
	Build(ctx context.Context, asOf time.Time) (*analytics.Summary, error)
}

type snapshotSink interface {
	Write(ctx context.Context, summary *analytics.Summary) error
}

type AnalyticsSnapshotJobParams struct {
	Logger  *logger.Logger
	Builder summaryBuilder
	Sink    snapshotSink
}

// NewAnalyticsSnapshotJob builds the dashboard summary and ships it to the warehouse.
func NewAnalyticsSnapshotJob(params AnalyticsSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Builder == nil {
		return nil, fmt.Errorf("summary builder required")
	}
	if params.Sink == nil {
		return nil, fmt.Errorf("snapshot sink required")
	}
	return &analyticsSnapshotJob{
		logg:    params.Logger,
		builder: params.Builder,
		sink:    params.Sink,
		now:     time.Now,
	}, nil
}

type analyticsSnapshotJob struct {
	logg    *logger.Logger
	builder summaryBuilder
	sink    snapshotSink
	now     func() time.Time
}

func (j *analyticsSnapshotJob) Name() string { return JobAnalyticsSnapshot }

func (j *analyticsSnapshotJob) Run(ctx context.Context) error {
	asOf := j.now().UTC().Truncate(time.Second)
	summary, err := j.builder.Build(ctx, asOf)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	if err := j.sink.Write(ctx, summary); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":        asOf,
		"transactions": summary.TotalTransactions,
	})
	j.logg.Info(logCtx, "analytics snapshot written")
	return nil
}
