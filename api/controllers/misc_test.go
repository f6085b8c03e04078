package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/internal/complaints"
	"github.com/shelflife/shelflife-backend/internal/notifications"
	"github.com/shelflife/shelflife-backend/internal/wishlist"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/config"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("refused") })

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": up, "bigquery": nil})(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-ShelfLife-Env"))

	resp = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": up, "redis": down})(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

type stubNotifications struct {
	params   notifications.ListParams
	readUser uuid.UUID
	readID   uuid.UUID
}

func (s *stubNotifications) List(_ context.Context, params notifications.ListParams) (*notifications.Inbox, error) {
	s.params = params
	return &notifications.Inbox{}, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	s.readUser, s.readID = userID, id
	return nil
}

func (s *stubNotifications) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 4, nil
}

func TestNotificationsScopedToCaller(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	svc := &stubNotifications{}

	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, newRequest(http.MethodGet, "/?unreadOnly=true&limit=10&type=wishlist_discount", "", &actor, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, actor.UserID, svc.params.UserID)
	assert.True(t, svc.params.UnreadOnly)
	assert.Equal(t, 10, svc.params.Limit)
	assert.Equal(t, enums.NotificationTypeWishlistDiscount, svc.params.Type)

	id := uuid.New()
	resp = httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, newRequest(http.MethodPost, "/", "", &actor, map[string]string{"notificationId": id.String()}))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, actor.UserID, svc.readUser)
	assert.Equal(t, id, svc.readID)

	resp = httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, newRequest(http.MethodPost, "/", "", &actor, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(4), decode[map[string]int64](t, resp).Data["updated"])
}

type stubWishlist struct {
	added   uuid.UUID
	removed uuid.UUID
}

func (s *stubWishlist) GetWishlist(context.Context, auth.Actor, string, int) (wishlist.WishlistPageDTO, error) {
	return wishlist.WishlistPageDTO{}, nil
}

func (s *stubWishlist) AddItem(_ context.Context, _ auth.Actor, productID uuid.UUID) error {
	s.added = productID
	return nil
}

func (s *stubWishlist) RemoveItem(_ context.Context, _ auth.Actor, productID uuid.UUID) error {
	s.removed = productID
	return nil
}

func TestWishlistAddAndRemove(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	svc := &stubWishlist{}
	productID := uuid.New()

	resp := httptest.NewRecorder()
	WishlistAdd(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{"product_id":"`+productID.String()+`"}`, &actor, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, productID, svc.added)

	resp = httptest.NewRecorder()
	WishlistRemove(svc, testLogger())(resp, newRequest(http.MethodDelete, "/", "", &actor, map[string]string{"productId": productID.String()}))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, productID, svc.removed)
}

type stubComplaints struct {
	filed  complaints.FileInput
	note   string
	status *enums.ComplaintStatus
	step   string
}

func (s *stubComplaints) File(_ context.Context, _ auth.Actor, input complaints.FileInput) (*complaints.ComplaintDTO, error) {
	s.filed = input
	return &complaints.ComplaintDTO{}, nil
}

func (s *stubComplaints) StartReview(context.Context, auth.Actor, uuid.UUID) (*complaints.ComplaintDTO, error) {
	s.step = "review"
	return &complaints.ComplaintDTO{}, nil
}

func (s *stubComplaints) Resolve(_ context.Context, _ auth.Actor, _ uuid.UUID, note string) (*complaints.ComplaintDTO, error) {
	s.step, s.note = "resolve", note
	return &complaints.ComplaintDTO{}, nil
}

func (s *stubComplaints) Reject(_ context.Context, _ auth.Actor, _ uuid.UUID, note string) (*complaints.ComplaintDTO, error) {
	s.step, s.note = "reject", note
	return &complaints.ComplaintDTO{}, nil
}

func (s *stubComplaints) List(_ context.Context, _ auth.Actor, status *enums.ComplaintStatus) ([]complaints.ComplaintDTO, error) {
	s.status = status
	return nil, nil
}

func (s *stubComplaints) ListMine(context.Context, auth.Actor) ([]complaints.ComplaintDTO, error) {
	return nil, nil
}

func TestComplaintFileParsesOptionalIDs(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	svc := &stubComplaints{}
	shopID := uuid.New()

	body := `{"category":"expired_product","title":"Sour milk","description":"Expired on sale","shop_id":"` + shopID.String() + `"}`
	resp := httptest.NewRecorder()
	ComplaintFile(svc, testLogger())(resp, newRequest(http.MethodPost, "/", body, &actor, nil))

	require.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, svc.filed.ShopID)
	assert.Equal(t, shopID, *svc.filed.ShopID)
	assert.Nil(t, svc.filed.ProductID)
}

func TestAdminComplaintTransitions(t *testing.T) {
	admin := newActor(enums.UserRoleAdmin)
	svc := &stubComplaints{}
	params := map[string]string{"complaintId": uuid.NewString()}

	resp := httptest.NewRecorder()
	AdminComplaintReview(svc, testLogger())(resp, newRequest(http.MethodPost, "/", "", &admin, params))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "review", svc.step)

	resp = httptest.NewRecorder()
	AdminComplaintResolve(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{"note":"refunded"}`, &admin, params))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "resolve", svc.step)
	assert.Equal(t, "refunded", svc.note)

	resp = httptest.NewRecorder()
	AdminComplaintReject(svc, testLogger())(resp, newRequest(http.MethodPost, "/", "", &admin, params))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "reject", svc.step)
	assert.Empty(t, svc.note)

	resp = httptest.NewRecorder()
	AdminComplaintList(svc, testLogger())(resp, newRequest(http.MethodGet, "/?status=under_review", "", &admin, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.status)
}

type stubAnalytics struct {
	asOf time.Time
}

func (s *stubAnalytics) Dashboard(_ context.Context, _ auth.Actor, asOf time.Time) (*analytics.Summary, error) {
	s.asOf = asOf
	return &analytics.Summary{}, nil
}

func TestAdminAnalyticsAsOf(t *testing.T) {
	admin := newActor(enums.UserRoleAdmin)
	svc := &stubAnalytics{}

	resp := httptest.NewRecorder()
	AdminAnalytics(svc, testLogger())(resp, newRequest(http.MethodGet, "/?as_of=2024-03-10T12:00:00Z", "", &admin, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), svc.asOf)

	resp = httptest.NewRecorder()
	AdminAnalytics(svc, testLogger())(resp, newRequest(http.MethodGet, "/?as_of=yesterday", "", &admin, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
