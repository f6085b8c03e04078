package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/pkg/auth"
)

// Service serves the admin dashboard.
type Service interface {
	// Dashboard builds the summary as of asOf; a zero asOf means now.
	Dashboard(ctx context.Context, actor auth.Actor, asOf time.Time) (*Summary, error)
}

type service struct {
	aggregator *Aggregator
	authz      authz.Authorizer
	now        func() time.Time
}

func NewService(aggregator *Aggregator, authorizer authz.Authorizer, now func() time.Time) (Service, error) {
	if aggregator == nil {
		return nil, fmt.Errorf("aggregator required")
	}
	if authorizer == nil {
		return nil, fmt.Errorf("authorizer required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{aggregator: aggregator, authz: authorizer, now: now}, nil
}

func (s *service) Dashboard(ctx context.Context, actor auth.Actor, asOf time.Time) (*Summary, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionViewAnalytics, authz.Resource{}); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	return s.aggregator.Build(ctx, asOf)
}
