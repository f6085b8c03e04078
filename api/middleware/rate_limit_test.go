package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimitPerUser(t *testing.T) {
	store := &fakeRateStore{counts: map[string]int64{}}
	handler := RateLimit(NewRateLimitPolicy("scan", time.Minute, 2), store, nil)(okHandler())

	user := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleShopkeeper}
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shopkeeper/scan", nil)
		req = req.WithContext(WithActor(req.Context(), user))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Contains(t, store.counts, "rl:scan:user:"+user.UserID.String())

	other := httptest.NewRequest(http.MethodPost, "/api/v1/shopkeeper/scan", nil)
	other = other.WithContext(WithActor(other.Context(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleShopkeeper}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, other)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	store := &fakeRateStore{counts: map[string]int64{}}
	handler := RateLimit(NewRateLimitPolicy("scan", time.Minute, 1), store, nil)(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, store.counts, "rl:scan:ip:9.9.9.9")
}

func TestRateLimitStoreFailure(t *testing.T) {
	store := &fakeRateStore{counts: map[string]int64{}, err: errors.New("redis down")}
	handler := RateLimit(NewRateLimitPolicy("scan", time.Minute, 1), store, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("scan", 0, 0), nil, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}
