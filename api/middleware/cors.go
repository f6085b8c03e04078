package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/shelflife/shelflife-backend/pkg/config"
)

var devOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// CORS applies the configured origin allow-list. Only the dev environment
// falls back to the local frontend origins when none are configured;
// elsewhere an empty list blocks every cross-origin caller. Credentials
// travel in the Authorization header, so cookies are not allowed.
func CORS(app config.AppConfig) func(http.Handler) http.Handler {
	origins := app.AllowedOrigins()
	if len(origins) == 0 && app.IsDev() {
		origins = devOrigins
	}
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         int(app.CORSMaxAge.Seconds()),
	}
	if len(origins) == 0 {
		// go-chi/cors reads an empty list as "*".
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
