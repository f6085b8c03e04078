package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:notifications_user_created_idx,priority:1"`
	Type             enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title            string                 `gorm:"column:title;not null"`
	Message          string                 `gorm:"column:message;not null"`
	Read             bool                   `gorm:"column:read;not null;default:false"`
	ReadAt           *time.Time             `gorm:"column:read_at"`
	RelatedProductID *uuid.UUID             `gorm:"column:related_product_id;type:uuid"`
	RelatedBatchID   *uuid.UUID             `gorm:"column:related_batch_id;type:uuid"`
	CreatedAt        time.Time              `gorm:"column:created_at;index:notifications_user_created_idx,priority:2"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}
