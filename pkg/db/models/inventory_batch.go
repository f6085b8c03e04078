package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// InventoryBatch is a discrete lot of one product held by one shop with a
// single expiry date. DiscountPercent is fixed at creation.
type InventoryBatch struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ShopID          uuid.UUID         `gorm:"column:shop_id;type:uuid;not null;index:inventory_batches_shop_id_idx"`
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index:inventory_batches_product_id_idx"`
	BatchCode       string            `gorm:"column:batch_code;not null"`
	Quantity        int               `gorm:"column:quantity;not null;check:quantity >= 0"`
	ReceivedDate    time.Time         `gorm:"column:received_date;type:date;not null"`
	ExpiryDate      time.Time         `gorm:"column:expiry_date;type:date;not null;index:inventory_batches_status_expiry_idx,priority:2"`
	MRP             decimal.Decimal   `gorm:"column:mrp;type:numeric(12,2);not null"`
	DiscountPercent int               `gorm:"column:discount_percent;not null;default:0"`
	Status          enums.BatchStatus `gorm:"column:status;type:batch_status;not null;default:'active';index:inventory_batches_status_expiry_idx,priority:1"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
	Shop    *Shop    `gorm:"foreignKey:ShopID"`
}

func (b *InventoryBatch) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// UnitPrice is the discounted selling price, rounded to paise.
func (b InventoryBatch) UnitPrice() decimal.Decimal {
	factor := decimal.NewFromInt(int64(100 - b.DiscountPercent)).Div(decimal.NewFromInt(100))
	return b.MRP.Mul(factor).Round(2)
}
