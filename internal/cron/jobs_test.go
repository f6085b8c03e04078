package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

type fakeExpirer struct {
	n   int64
	err error
}

func (f fakeExpirer) ExpireDue(context.Context) (int64, error) { return f.n, f.err }

func TestBatchExpiryJob(t *testing.T) {
	job, err := NewBatchExpiryJob(logger.Nop(), fakeExpirer{n: 3})
	require.NoError(t, err)
	assert.Equal(t, "batch-expiry", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	job, err = NewBatchExpiryJob(logger.Nop(), fakeExpirer{err: errors.New("db down")})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))

	_, err = NewBatchExpiryJob(logger.Nop(), nil)
	assert.Error(t, err)
}

type fakeBuilder struct {
	asOf time.Time
	err  error
}

func (f *fakeBuilder) Build(_ context.Context, asOf time.Time) (*analytics.Summary, error) {
	f.asOf = asOf
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.Summary{AsOf: asOf, TotalTransactions: 4}, nil
}

type fakeSink struct {
	written []*analytics.Summary
	err     error
}

func (f *fakeSink) Write(_ context.Context, s *analytics.Summary) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, s)
	return nil
}

func TestAnalyticsSnapshotJob(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 500, time.UTC)
	builder := &fakeBuilder{}
	sink := &fakeSink{}
	jobIface, err := NewAnalyticsSnapshotJob(AnalyticsSnapshotJobParams{Logger: logger.Nop(), Builder: builder, Sink: sink})
	require.NoError(t, err)
	job := jobIface.(*analyticsSnapshotJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Truncate(time.Second), builder.asOf)
	require.Len(t, sink.written, 1)
	assert.EqualValues(t, 4, sink.written[0].TotalTransactions)

	sink.err = errors.New("bq down")
	assert.Error(t, job.Run(context.Background()))

	builder.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}
