package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/shelflife/shelflife-backend/api/responses"
	"github.com/shelflife/shelflife-backend/api/validators"
	"github.com/shelflife/shelflife-backend/internal/inventory"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/internal/shops"
	"github.com/shelflife/shelflife-backend/pkg/logger"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
)

type createBatchRequest struct {
	ProductName  string          `json:"product_name" validate:"required,notblank"`
	Brand        *string         `json:"brand,omitempty"`
	Category     string          `json:"category" validate:"required"`
	GTIN         *string         `json:"gtin,omitempty"`
	MRP          decimal.Decimal `json:"mrp"`
	BatchCode    string          `json:"batch_code" validate:"required,notblank"`
	Quantity     int             `json:"quantity" validate:"gt=0"`
	ExpiryDate   string          `json:"expiry_date" validate:"required"`
	ReceivedDate *string         `json:"received_date,omitempty"`
}

type checkoutRequest struct {
	BatchID  string `json:"batch_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// ShopkeeperBatchCreate lists a new batch on the caller's shop.
func ShopkeeperBatchCreate(shopSvc shops.Service, svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if shopSvc == nil || svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload createBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := shopSvc.GetMine(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.CreateBatch(r.Context(), actor, shop.ID, inventory.CreateBatchInput{
			Product: product.Identity{
				Name:     payload.ProductName,
				Brand:    payload.Brand,
				Category: payload.Category,
				GTIN:     payload.GTIN,
				MRP:      payload.MRP,
			},
			BatchCode:    payload.BatchCode,
			Quantity:     payload.Quantity,
			ExpiryDate:   payload.ExpiryDate,
			ReceivedDate: payload.ReceivedDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

// ShopkeeperBatchList returns every batch of the caller's shop.
func ShopkeeperBatchList(shopSvc shops.Service, svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if shopSvc == nil || svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		shop, err := shopSvc.GetMine(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batches, err := svc.ListShopBatches(r.Context(), actor, shop.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batches)
	}
}

// BatchFeed returns purchasable listings for customers.
func BatchFeed(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := validators.ParseQueryUUID(r, "shop_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := inventory.FeedFilter{ShopID: shopID, Limit: limit}
		if category := validators.ParseQueryString(r, "category"); category != nil {
			filter.Category = *category
		}
		if cursor := validators.ParseQueryString(r, "cursor"); cursor != nil {
			filter.Cursor = *cursor
		}

		page, err := svc.ListAvailable(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Checkout buys quantity units of one batch for the caller.
func Checkout(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "inventory")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batchID, err := validators.ParseBodyUUID("batch_id", payload.BatchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Purchase(r.Context(), actor, batchID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
