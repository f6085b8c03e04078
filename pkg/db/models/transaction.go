package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is the insert-only record of a completed purchase. Price is
// the unit price paid.
type Transaction struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index:transactions_customer_id_idx"`
	ShopID     uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index:transactions_shop_id_idx"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	BatchID    uuid.UUID       `gorm:"column:batch_id;type:uuid;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Timestamp  time.Time       `gorm:"column:timestamp;not null;index:transactions_timestamp_idx"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Total is price times quantity.
func (t Transaction) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
