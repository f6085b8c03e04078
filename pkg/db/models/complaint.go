package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

type Complaint struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index:complaints_customer_id_idx"`
	ShopID          *uuid.UUID              `gorm:"column:shop_id;type:uuid"`
	ProductID       *uuid.UUID              `gorm:"column:product_id;type:uuid"`
	Category        enums.ComplaintCategory `gorm:"column:category;type:complaint_category;not null"`
	Title           string                  `gorm:"column:title;not null"`
	Description     string                  `gorm:"column:description;not null"`
	Status          enums.ComplaintStatus   `gorm:"column:status;type:complaint_status;not null;default:'pending';index:complaints_status_idx"`
	ResolutionNote  *string                 `gorm:"column:resolution_note"`
	AssignedAdminID *uuid.UUID              `gorm:"column:assigned_admin_id;type:uuid"`
	ResolvedAt      *time.Time              `gorm:"column:resolved_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Complaint) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
