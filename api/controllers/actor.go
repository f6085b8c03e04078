package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/api/middleware"
	"github.com/shelflife/shelflife-backend/api/responses"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

// requireActor writes 401 and returns false when Auth did not seed a caller.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (auth.Actor, bool) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.UserID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return auth.Actor{}, false
	}
	return actor, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
