package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
)

// Repository persists catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByNaturalKey loads the product matching the normalized (name, brand).
func (r *Repository) FindByNaturalKey(ctx context.Context, key string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "natural_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertByNaturalKey returns the existing product for (name, brand) or
// inserts one. Concurrent callers converge on a single row through the
// unique natural_key index.
func (r *Repository) UpsertByNaturalKey(ctx context.Context, identity Identity) (*models.Product, bool, error) {
	key := models.ProductNaturalKey(identity.Name, identity.Brand)

	existing, err := r.FindByNaturalKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	product := &models.Product{
		Name:       identity.Name,
		Brand:      identity.Brand,
		Category:   identity.Category,
		DefaultMRP: identity.MRP,
		GTIN:       identity.GTIN,
		NaturalKey: key,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "natural_key"}}, DoNothing: true}).
		Create(product)
	if res.Error != nil && !db.IsUniqueViolation(res.Error, "") {
		return nil, false, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return product, true, nil
	}

	winner, err := r.FindByNaturalKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return winner, false, nil
}
