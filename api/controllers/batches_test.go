package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/inventory"
	"github.com/shelflife/shelflife-backend/internal/shops"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

type stubInventoryService struct {
	createdShop  uuid.UUID
	createdInput inventory.CreateBatchInput
	listedShop   uuid.UUID
	filter       inventory.FeedFilter
	purchased    uuid.UUID
	purchasedQty int
	err          error
}

func (s *stubInventoryService) CreateBatch(_ context.Context, _ auth.Actor, shopID uuid.UUID, input inventory.CreateBatchInput) (*inventory.BatchDTO, error) {
	s.createdShop = shopID
	s.createdInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &inventory.BatchDTO{ID: uuid.New(), ShopID: shopID}, nil
}

func (s *stubInventoryService) Purchase(_ context.Context, _ auth.Actor, batchID uuid.UUID, quantity int) (*inventory.Receipt, error) {
	s.purchased = batchID
	s.purchasedQty = quantity
	if s.err != nil {
		return nil, s.err
	}
	return &inventory.Receipt{Transaction: inventory.TransactionDTO{BatchID: batchID, Quantity: quantity}}, nil
}

func (s *stubInventoryService) ListShopBatches(_ context.Context, _ auth.Actor, shopID uuid.UUID) ([]inventory.BatchDTO, error) {
	s.listedShop = shopID
	return []inventory.BatchDTO{}, s.err
}

func (s *stubInventoryService) ListAvailable(_ context.Context, filter inventory.FeedFilter) (*inventory.FeedPage, error) {
	s.filter = filter
	return &inventory.FeedPage{Items: []inventory.ListingDTO{}}, s.err
}

func (s *stubInventoryService) ExpireDue(context.Context) (int64, error) {
	return 0, nil
}

func TestShopkeeperBatchCreateUsesOwnedShop(t *testing.T) {
	actor := newActor(enums.UserRoleShopkeeper)
	shopID := uuid.New()
	shopSvc := &stubShopService{shop: &shops.ShopDTO{ID: shopID}}
	svc := &stubInventoryService{}

	body := `{"product_name":"Milk 1L","category":"dairy","mrp":"60.00","batch_code":"B1","quantity":12,"expiry_date":"2024-03-15"}`
	resp := httptest.NewRecorder()
	ShopkeeperBatchCreate(shopSvc, svc, testLogger())(resp, newRequest(http.MethodPost, "/", body, &actor, nil))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, shopID, svc.createdShop)
	assert.Equal(t, "Milk 1L", svc.createdInput.Product.Name)
	assert.True(t, decimal.RequireFromString("60").Equal(svc.createdInput.Product.MRP))
	assert.Equal(t, 12, svc.createdInput.Quantity)
}

func TestShopkeeperBatchCreateWithoutShop(t *testing.T) {
	actor := newActor(enums.UserRoleShopkeeper)
	shopSvc := &stubShopService{err: pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")}
	svc := &stubInventoryService{}

	body := `{"product_name":"Milk","category":"dairy","mrp":60,"batch_code":"B1","quantity":1,"expiry_date":"2024-03-15"}`
	resp := httptest.NewRecorder()
	ShopkeeperBatchCreate(shopSvc, svc, testLogger())(resp, newRequest(http.MethodPost, "/", body, &actor, nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, uuid.Nil, svc.createdShop)
}

func TestShopkeeperBatchList(t *testing.T) {
	actor := newActor(enums.UserRoleShopkeeper)
	shopID := uuid.New()
	svc := &stubInventoryService{}
	resp := httptest.NewRecorder()
	ShopkeeperBatchList(&stubShopService{shop: &shops.ShopDTO{ID: shopID}}, svc, testLogger())(resp, newRequest(http.MethodGet, "/", "", &actor, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, shopID, svc.listedShop)
}

func TestBatchFeedParsesFilters(t *testing.T) {
	shopID := uuid.New()
	svc := &stubInventoryService{}
	resp := httptest.NewRecorder()
	BatchFeed(svc, testLogger())(resp, newRequest(http.MethodGet, "/?category=dairy&limit=5&cursor=abc&shop_id="+shopID.String(), "", nil, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dairy", svc.filter.Category)
	assert.Equal(t, 5, svc.filter.Limit)
	assert.Equal(t, "abc", svc.filter.Cursor)
	require.NotNil(t, svc.filter.ShopID)
	assert.Equal(t, shopID, *svc.filter.ShopID)
}

func TestBatchFeedRejectsBadLimit(t *testing.T) {
	resp := httptest.NewRecorder()
	BatchFeed(&stubInventoryService{}, testLogger())(resp, newRequest(http.MethodGet, "/?limit=1000", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckout(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	batchID := uuid.New()
	svc := &stubInventoryService{}

	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{"batch_id":"`+batchID.String()+`","quantity":3}`, &actor, nil))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, batchID, svc.purchased)
	assert.Equal(t, 3, svc.purchasedQty)
}

func TestCheckoutOutOfStock(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient quantity")}

	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{"batch_id":"`+uuid.NewString()+`","quantity":3}`, &actor, nil))

	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeOutOfStock), decode[any](t, resp).Error.Code)
}

func TestCheckoutValidatesBody(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	Checkout(&stubInventoryService{}, testLogger())(resp, newRequest(http.MethodPost, "/", `{"batch_id":"nope","quantity":0}`, &actor, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckoutRejectsMalformedBatchID(t *testing.T) {
	actor := newActor(enums.UserRoleCustomer)
	svc := &stubInventoryService{}
	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, newRequest(http.MethodPost, "/", `{"batch_id":"not-a-uuid","quantity":1}`, &actor, nil))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decode[any](t, resp).Error.Code)
	assert.Equal(t, uuid.Nil, svc.purchased)
}
