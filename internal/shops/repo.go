package shops

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

const ownerUniqueConstraint = "shops_owner_id_key"

// Repository persists shops.
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

// Create inserts a shop. A second shop for the same owner yields CONFLICT.
func (r *Repository) Create(ctx context.Context, shop *models.Shop) error {
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		if db.IsUniqueViolation(err, ownerUniqueConstraint) {
			return pkgerrors.New(pkgerrors.CodeConflict, "owner already has a shop")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &shop, nil
}

func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "owner_id = ?", ownerID).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &shop, nil
}

// OwnerOf resolves the owner of a shop for authorization.
func (r *Repository) OwnerOf(ctx context.Context, shopID uuid.UUID) (uuid.UUID, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Select("id", "owner_id").First(&shop, "id = ?", shopID).Error
	if err != nil {
		return uuid.Nil, lookupErr(err)
	}
	return shop.OwnerID, nil
}

// Decide moves a pending shop to status. It returns false when the shop is
// missing or no longer pending.
func (r *Repository) Decide(ctx context.Context, id uuid.UUID, status enums.ShopStatus, adminID uuid.UUID, reason *string, at time.Time) (bool, error) {
	updates := map[string]any{
		"verification_status": status,
		"updated_at":          at,
	}
	if status == enums.ShopStatusVerified {
		updates["verified_at"] = at
		updates["verified_by"] = adminID
		updates["rejection_reason"] = nil
	} else {
		updates["rejection_reason"] = reason
	}
	res := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ? AND verification_status = ?", id, enums.ShopStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update shop verification")
	}
	return res.RowsAffected == 1, nil
}

// Suspend marks an unsuspended shop as suspended. It returns false when the
// shop is missing or already suspended.
func (r *Repository) Suspend(ctx context.Context, id, adminID uuid.UUID, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ? AND suspended_at IS NULL", id).
		Updates(map[string]any{
			"suspended_at":      at,
			"suspended_by":      adminID,
			"suspension_reason": reason,
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "suspend shop")
	}
	return res.RowsAffected == 1, nil
}

// Unsuspend clears a suspension. It returns false when the shop is missing
// or not suspended.
func (r *Repository) Unsuspend(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ? AND suspended_at IS NOT NULL", id).
		Updates(map[string]any{
			"suspended_at":      nil,
			"suspended_by":      nil,
			"suspension_reason": nil,
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "unsuspend shop")
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) SetOpen(ctx context.Context, id uuid.UUID, open bool, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_open": open, "updated_at": at}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
	}
	return nil
}

// List returns shops newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status *enums.ShopStatus) ([]models.Shop, error) {
	q := r.db.WithContext(ctx).Model(&models.Shop{})
	if status != nil {
		q = q.Where("verification_status = ?", *status)
	}
	var rows []models.Shop
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return rows, nil
}

func lookupErr(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
}
