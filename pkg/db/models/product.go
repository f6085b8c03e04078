package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the shared catalog entry that batches point at. Products are
// deduplicated by (name, brand) through NaturalKey.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Brand      *string         `gorm:"column:brand"`
	Category   string          `gorm:"column:category;not null;index:products_category_idx"`
	DefaultMRP decimal.Decimal `gorm:"column:default_mrp;type:numeric(12,2);not null"`
	GTIN       *string         `gorm:"column:gtin"`
	NaturalKey string          `gorm:"column:natural_key;not null;uniqueIndex:products_natural_key"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.NaturalKey == "" {
		p.NaturalKey = ProductNaturalKey(p.Name, p.Brand)
	}
	return nil
}

// ProductNaturalKey normalizes name and brand into the dedupe key. Case and
// surrounding whitespace are ignored; a missing brand equals an empty one.
func ProductNaturalKey(name string, brand *string) string {
	b := ""
	if brand != nil {
		b = *brand
	}
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(b))
}
