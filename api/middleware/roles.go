package middleware

import (
	"net/http"
	"slices"

	"github.com/shelflife/shelflife-backend/api/responses"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

// RequireRole lets a request through only when the token role is one of
// roles. Services still authorize the individual action.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, ActorFromContext(r.Context()).Role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "requires role %s", joinRoles(roles)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func joinRoles(roles []enums.UserRole) string {
	out := ""
	for i, role := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(role)
	}
	return out
}
