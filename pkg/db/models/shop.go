package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// Shop is a shopkeeper's storefront, visible to customers once verified.
type Shop struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID            uuid.UUID        `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:shops_owner_id_key"`
	Name               string           `gorm:"column:name;not null"`
	Address            string           `gorm:"column:address;not null"`
	Latitude           float64          `gorm:"column:latitude;not null"`
	Longitude          float64          `gorm:"column:longitude;not null"`
	GSTNumber          *string          `gorm:"column:gst_number"`
	VerificationStatus enums.ShopStatus `gorm:"column:verification_status;type:shop_status;not null;default:'pending';index:shops_verification_status_idx"`
	IsOpen             bool             `gorm:"column:is_open;not null;default:true"`
	RejectionReason    *string          `gorm:"column:rejection_reason"`
	VerifiedAt         *time.Time       `gorm:"column:verified_at"`
	VerifiedBy         *uuid.UUID       `gorm:"column:verified_by;type:uuid"`
	SuspendedAt        *time.Time       `gorm:"column:suspended_at"`
	SuspendedBy        *uuid.UUID       `gorm:"column:suspended_by;type:uuid"`
	SuspensionReason   *string          `gorm:"column:suspension_reason"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shop) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Listed reports whether customers can currently buy from the shop.
func (s Shop) Listed() bool {
	return s.VerificationStatus == enums.ShopStatusVerified && s.IsOpen && s.SuspendedAt == nil
}
