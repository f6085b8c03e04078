package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shelflife/shelflife-backend/api/responses"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

const (
	idempotencyHeader   = "Idempotency-Key"
	replayedHeader      = "Idempotent-Replayed"
	defaultReplayWindow = 24 * time.Hour
	inFlightWindow      = 2 * time.Minute
)

// IdempotencyStore keeps replay records. Get reports whether key exists.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}

// replayRoute describes a write that honors Idempotency-Key. Routes with
// required set reject requests without one and use the checkout window.
type replayRoute struct {
	method   string
	prefix   string
	suffix   string
	required bool
}

func (rt replayRoute) matches(method, path string) bool {
	if rt.method != method {
		return false
	}
	if rt.suffix == "" {
		return path == rt.prefix
	}
	return strings.HasPrefix(path, rt.prefix) && strings.HasSuffix(path, rt.suffix)
}

var replayRoutes = []replayRoute{
	{method: http.MethodPost, prefix: "/api/v1/checkout", required: true},
	{method: http.MethodPost, prefix: "/api/v1/shopkeeper/batches"},
	{method: http.MethodPost, prefix: "/api/v1/shopkeeper/shop"},
	{method: http.MethodPost, prefix: "/api/v1/complaints"},
	{method: http.MethodPost, prefix: "/api/v1/notifications/", suffix: "/read"},
	{method: http.MethodPost, prefix: "/api/admin/v1/shops/", suffix: "/verification"},
}

func lookupRoute(method, path string) (replayRoute, bool) {
	for _, rt := range replayRoutes {
		if rt.matches(method, path) {
			return rt, true
		}
	}
	return replayRoute{}, false
}

// storedResponse is either a finished response or, with Pending set, the
// reservation held while the first request is still running.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency replays the first response recorded for (caller, method, path,
// key). The key is reserved before the handler runs, so a concurrent retry
// gets 409 instead of executing twice. A retry with a different body is
// refused with 409. Responses with a 5xx status release the key, so those
// requests can be retried.
func Idempotency(store IdempotencyStore, checkoutTTL time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if checkoutTTL <= 0 {
		checkoutTTL = defaultReplayWindow
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rt, ok := lookupRoute(r.Method, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				if rt.required {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := fingerprintOf(body)
			key := replayKey(r, clientKey)

			marker, err := json.Marshal(storedResponse{Pending: true, Fingerprint: fingerprint})
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency reservation"))
				return
			}
			reserved, err := store.SetNX(ctx, key, string(marker), inFlightWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				raw, found, err := store.Get(ctx, key)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
					return
				}
				if !found {
					inFlight(ctx, logg, w)
					return
				}
				replay(ctx, logg, w, raw, fingerprint)
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			storeCtx := context.WithoutCancel(ctx)
			if capture.status >= http.StatusInternalServerError {
				if _, err := store.CompareAndDelete(storeCtx, key, string(marker)); err != nil && logg != nil {
					logg.Error(logg.WithField(ctx, "idempotency_key", clientKey), "failed to release idempotency key", err)
				}
				return
			}

			ttl := defaultReplayWindow
			if rt.required {
				ttl = checkoutTTL
			}
			record, err := json.Marshal(storedResponse{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			})
			if err == nil {
				err = store.Set(storeCtx, key, string(record), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(logg.WithField(ctx, "idempotency_key", clientKey), "failed to record idempotent response", err)
			}
		})
	}
}

func inFlight(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress"))
}

func replay(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, raw, fingerprint string) {
	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode idempotency record"))
		return
	}
	if stored.Fingerprint != fingerprint {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if stored.Pending {
		inFlight(ctx, logg, w)
		return
	}
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func replayKey(r *http.Request, clientKey string) string {
	caller := UserIDFromContext(r.Context())
	if caller == "" {
		caller = "anonymous"
	}
	return strings.Join([]string{"idempotency", caller, r.Method, r.URL.Path, clientKey}, ":")
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
