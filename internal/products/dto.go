package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
)

// Identity is the catalog data supplied when stocking a batch. Name and
// brand form the natural key; the rest only seeds a new product.
type Identity struct {
	Name     string
	Brand    *string
	Category string
	GTIN     *string
	MRP      decimal.Decimal
}

// ProductDTO is the public product payload.
type ProductDTO struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Brand      *string         `json:"brand,omitempty"`
	Category   string          `json:"category"`
	DefaultMRP decimal.Decimal `json:"default_mrp"`
	GTIN       *string         `json:"gtin,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		Category:   p.Category,
		DefaultMRP: p.DefaultMRP,
		GTIN:       p.GTIN,
		CreatedAt:  p.CreatedAt,
	}
}
