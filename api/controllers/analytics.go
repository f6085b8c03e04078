package controllers

import (
	"net/http"
	"time"

	"github.com/shelflife/shelflife-backend/api/responses"
	"github.com/shelflife/shelflife-backend/api/validators"
	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

// AdminAnalytics returns the marketplace summary as of ?as_of= (default now).
func AdminAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "analytics")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		asOf, err := validators.ParseQueryTime(r, "as_of", time.Time{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Dashboard(r.Context(), actor, asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
