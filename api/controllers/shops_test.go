package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/shops"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

type stubShopService struct {
	shop      *shops.ShopDTO
	err       error
	created   shops.CreateShopInput
	verified  shops.VerifyInput
	listed    *enums.ShopStatus
	suspended string
}

func (s *stubShopService) Create(_ context.Context, _ auth.Actor, input shops.CreateShopInput) (*shops.ShopDTO, error) {
	s.created = input
	return s.shop, s.err
}

func (s *stubShopService) GetMine(context.Context, auth.Actor) (*shops.ShopDTO, error) {
	return s.shop, s.err
}

func (s *stubShopService) SetOpen(context.Context, auth.Actor, bool) (*shops.ShopDTO, error) {
	return s.shop, s.err
}

func (s *stubShopService) Verify(_ context.Context, _ auth.Actor, _ uuid.UUID, input shops.VerifyInput) (*shops.ShopDTO, error) {
	s.verified = input
	return s.shop, s.err
}

func (s *stubShopService) Suspend(_ context.Context, _ auth.Actor, _ uuid.UUID, reason string) (*shops.ShopDTO, error) {
	s.suspended = reason
	return s.shop, s.err
}

func (s *stubShopService) Unsuspend(context.Context, auth.Actor, uuid.UUID) (*shops.ShopDTO, error) {
	return s.shop, s.err
}

func (s *stubShopService) List(_ context.Context, _ auth.Actor, status *enums.ShopStatus) ([]shops.ShopDTO, error) {
	s.listed = status
	if s.shop == nil {
		return nil, s.err
	}
	return []shops.ShopDTO{*s.shop}, s.err
}

func TestShopCreateReturnsCreated(t *testing.T) {
	actor := newActor(enums.UserRoleShopkeeper)
	svc := &stubShopService{shop: &shops.ShopDTO{ID: uuid.New(), Name: "Corner Mart"}}

	resp := httptest.NewRecorder()
	body := `{"name":"Corner Mart","address":"1 Main St","latitude":12.9,"longitude":77.6}`
	ShopCreate(svc, testLogger())(resp, newRequest(http.MethodPost, "/api/v1/shopkeeper/shop", body, &actor, nil))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "Corner Mart", svc.created.Name)
	assert.InDelta(t, 77.6, svc.created.Longitude, 0.0001)
	assert.Equal(t, "Corner Mart", decode[shops.ShopDTO](t, resp).Data.Name)
}

func TestShopCreateRequiresCoordinates(t *testing.T) {
	actor := newActor(enums.UserRoleShopkeeper)
	resp := httptest.NewRecorder()
	ShopCreate(&stubShopService{}, testLogger())(resp, newRequest(http.MethodPost, "/", `{"name":"x","address":"y"}`, &actor, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestShopMineWithoutActor(t *testing.T) {
	resp := httptest.NewRecorder()
	ShopMine(&stubShopService{}, testLogger())(resp, newRequest(http.MethodGet, "/", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestShopMineMapsNotFound(t *testing.T) {
	actor := newActor(enums.UserRoleShopkeeper)
	svc := &stubShopService{err: pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")}
	resp := httptest.NewRecorder()
	ShopMine(svc, testLogger())(resp, newRequest(http.MethodGet, "/", "", &actor, nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminShopVerify(t *testing.T) {
	admin := newActor(enums.UserRoleAdmin)
	shopID := uuid.New()
	svc := &stubShopService{shop: &shops.ShopDTO{ID: shopID}}

	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/", `{"decision":"reject","reason":"blurry licence"}`, &admin, map[string]string{"shopId": shopID.String()})
	AdminShopVerify(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.VerificationReject, svc.verified.Decision)
	assert.Equal(t, "blurry licence", svc.verified.Reason)
}

func TestAdminShopVerifyRejectsUnknownDecision(t *testing.T) {
	admin := newActor(enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/", `{"decision":"maybe"}`, &admin, map[string]string{"shopId": uuid.NewString()})
	AdminShopVerify(&stubShopService{}, testLogger())(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminShopListFilters(t *testing.T) {
	admin := newActor(enums.UserRoleAdmin)
	svc := &stubShopService{}

	resp := httptest.NewRecorder()
	AdminShopList(svc, testLogger())(resp, newRequest(http.MethodGet, "/?status=pending", "", &admin, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.listed)
	assert.Equal(t, enums.ShopStatusPending, *svc.listed)

	resp = httptest.NewRecorder()
	AdminShopList(svc, testLogger())(resp, newRequest(http.MethodGet, "/?status=bogus", "", &admin, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminShopSuspendRequiresReason(t *testing.T) {
	admin := newActor(enums.UserRoleAdmin)
	params := map[string]string{"shopId": uuid.NewString()}
	svc := &stubShopService{shop: &shops.ShopDTO{}}

	resp := httptest.NewRecorder()
	AdminShopSuspend(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{}`, &admin, params))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	AdminShopSuspend(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{"reason":"expired stock"}`, &admin, params))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "expired stock", svc.suspended)
}
