package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shelflife/shelflife-backend/internal/discount"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// CreateBatchInput is what a shopkeeper submits when stocking a batch,
// either typed by hand or confirmed from a scan.
type CreateBatchInput struct {
	Product      product.Identity
	BatchCode    string
	Quantity     int
	ExpiryDate   string
	ReceivedDate *string
}

// BatchDTO is the batch payload.
type BatchDTO struct {
	ID              uuid.UUID           `json:"id"`
	ShopID          uuid.UUID           `json:"shop_id"`
	ProductID       uuid.UUID           `json:"product_id"`
	Product         *product.ProductDTO `json:"product,omitempty"`
	BatchCode       string              `json:"batch_code"`
	Quantity        int                 `json:"quantity"`
	ReceivedDate    string              `json:"received_date"`
	ExpiryDate      string              `json:"expiry_date"`
	MRP             decimal.Decimal     `json:"mrp"`
	DiscountPercent int                 `json:"discount_percent"`
	UnitPrice       decimal.Decimal     `json:"unit_price"`
	Status          enums.BatchStatus   `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
}

func NewBatchDTO(b *models.InventoryBatch) *BatchDTO {
	if b == nil {
		return nil
	}
	return &BatchDTO{
		ID:              b.ID,
		ShopID:          b.ShopID,
		ProductID:       b.ProductID,
		Product:         product.NewProductDTO(b.Product),
		BatchCode:       b.BatchCode,
		Quantity:        b.Quantity,
		ReceivedDate:    b.ReceivedDate.UTC().Format(discount.DateLayout),
		ExpiryDate:      b.ExpiryDate.UTC().Format(discount.DateLayout),
		MRP:             b.MRP,
		DiscountPercent: b.DiscountPercent,
		UnitPrice:       b.UnitPrice(),
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
	}
}

// ListingDTO is a batch as shown in the customer feed.
type ListingDTO struct {
	BatchDTO
	ShopName      string  `json:"shop_name"`
	ShopAddress   string  `json:"shop_address"`
	ShopLatitude  float64 `json:"shop_latitude"`
	ShopLongitude float64 `json:"shop_longitude"`
	DaysToExpiry  int     `json:"days_to_expiry"`
}

// FeedFilter narrows the customer feed.
type FeedFilter struct {
	Category string
	ShopID   *uuid.UUID
	Cursor   string
	Limit    int
}

// FeedPage is one page of listings, newest first.
type FeedPage struct {
	Items      []ListingDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// TransactionDTO is the purchase record returned to the buyer.
type TransactionDTO struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	ShopID     uuid.UUID       `json:"shop_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	BatchID    uuid.UUID       `json:"batch_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
	Timestamp  time.Time       `json:"timestamp"`
}

func NewTransactionDTO(t *models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:         t.ID,
		CustomerID: t.CustomerID,
		ShopID:     t.ShopID,
		ProductID:  t.ProductID,
		BatchID:    t.BatchID,
		Quantity:   t.Quantity,
		UnitPrice:  t.Price,
		Total:      t.Total(),
		Timestamp:  t.Timestamp,
	}
}

// Receipt is the result of a successful purchase.
type Receipt struct {
	Transaction TransactionDTO `json:"transaction"`
	Batch       BatchDTO       `json:"batch"`
}
