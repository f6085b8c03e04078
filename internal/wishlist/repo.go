package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, customerID, productID uuid.UUID) error {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	item := &models.WishlistItem{CustomerID: customerID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

// RemoveItem deletes the customer-product entry if it exists.
func (r *Repository) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListItems returns a page of a customer's wishlist, newest first.
func (r *Repository) ListItems(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) (WishlistPageDTO, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID)

	var records []models.WishlistItem
	err := pagination.Keyset(query, "", cursor).
		Limit(pagination.Fetch(limit)).
		Find(&records).Error
	if err != nil {
		return WishlistPageDTO{}, err
	}

	var page WishlistPageDTO
	records, page.NextCursor = pagination.Split(records, limit, func(w models.WishlistItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: w.CreatedAt, ID: w.ID}
	})
	page.Items = make([]WishlistItemDTO, 0, len(records))
	for i := range records {
		page.Items = append(page.Items, WishlistItemDTO{
			ID:        records[i].ID,
			Product:   product.NewProductDTO(records[i].Product),
			CreatedAt: records[i].CreatedAt,
		})
	}
	return page, nil
}

// CustomersForProduct lists every customer who wishlisted productID.
func (r *Repository) CustomersForProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Pluck("customer_id", &ids).Error
	return ids, err
}
