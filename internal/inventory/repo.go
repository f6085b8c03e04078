package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
)

// listedShops matches shops customers may buy from.
const listedShops = "SELECT id FROM shops WHERE verification_status = ? AND is_open = ? AND suspended_at IS NULL"

// Repository persists batches and the transactions recorded against them.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, batch *models.InventoryBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// FindByID loads a batch with its product and shop.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryBatch, error) {
	var batch models.InventoryBatch
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Shop").
		First(&batch, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// Decrement takes qty units from an active, unexpired batch of a listed
// shop in a single statement, flipping the batch to sold_out when it
// reaches zero. It reports false when any precondition failed and nothing
// changed.
func (r *Repository) Decrement(ctx context.Context, id uuid.UUID, qty int, today time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryBatch{}).
		Where("id = ? AND status = ? AND quantity >= ?", id, enums.BatchStatusActive, qty).
		Where("expiry_date >= ?", today).
		Where("shop_id IN ("+listedShops+")", enums.ShopStatusVerified, true).
		Updates(map[string]any{
			"quantity": gorm.Expr("quantity - ?", qty),
			"status":   gorm.Expr("CASE WHEN quantity - ? = 0 THEN ? ELSE status END", qty, enums.BatchStatusSoldOut),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListByShop returns every batch of a shop, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.InventoryBatch, error) {
	var rows []models.InventoryBatch
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("shop_id = ?", shopID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// ListAvailable returns purchasable batches of listed shops that have not
// passed their expiry date as of today.
func (r *Repository) ListAvailable(ctx context.Context, today time.Time, filter FeedFilter, cursor *pagination.Cursor) ([]models.InventoryBatch, error) {
	q := r.db.WithContext(ctx).
		Model(&models.InventoryBatch{}).
		Preload("Product").
		Preload("Shop").
		Joins("JOIN products ON products.id = inventory_batches.product_id").
		Where("inventory_batches.status = ? AND inventory_batches.quantity > 0", enums.BatchStatusActive).
		Where("inventory_batches.expiry_date >= ?", today).
		Where("inventory_batches.shop_id IN ("+listedShops+")", enums.ShopStatusVerified, true)

	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("LOWER(products.category) = ?", strings.ToLower(category))
	}
	if filter.ShopID != nil {
		q = q.Where("inventory_batches.shop_id = ?", *filter.ShopID)
	}

	var rows []models.InventoryBatch
	err := pagination.Keyset(q, "inventory_batches", cursor).
		Limit(pagination.Fetch(filter.Limit)).
		Find(&rows).Error
	return rows, err
}

// ExpireDue marks active batches whose expiry date is before today as
// expired and returns how many changed.
func (r *Repository) ExpireDue(ctx context.Context, today time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryBatch{}).
		Where("status = ? AND expiry_date < ?", enums.BatchStatusActive, today).
		Update("status", enums.BatchStatusExpired)
	return res.RowsAffected, res.Error
}
