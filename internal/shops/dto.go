package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// ShopDTO is the shop payload shared by shopkeeper and admin views.
type ShopDTO struct {
	ID                 uuid.UUID        `json:"id"`
	OwnerID            uuid.UUID        `json:"owner_id"`
	Name               string           `json:"name"`
	Address            string           `json:"address"`
	Latitude           float64          `json:"latitude"`
	Longitude          float64          `json:"longitude"`
	GSTNumber          *string          `json:"gst_number,omitempty"`
	VerificationStatus enums.ShopStatus `json:"verification_status"`
	IsOpen             bool             `json:"is_open"`
	RejectionReason    *string          `json:"rejection_reason,omitempty"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`
	Suspended          bool             `json:"suspended"`
	SuspensionReason   *string          `json:"suspension_reason,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func FromModel(s *models.Shop) *ShopDTO {
	if s == nil {
		return nil
	}
	return &ShopDTO{
		ID:                 s.ID,
		OwnerID:            s.OwnerID,
		Name:               s.Name,
		Address:            s.Address,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		GSTNumber:          s.GSTNumber,
		VerificationStatus: s.VerificationStatus,
		IsOpen:             s.IsOpen,
		RejectionReason:    s.RejectionReason,
		VerifiedAt:         s.VerifiedAt,
		Suspended:          s.SuspendedAt != nil,
		SuspensionReason:   s.SuspensionReason,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// CreateShopInput is what a shopkeeper submits to register a shop.
type CreateShopInput struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	GSTNumber *string
}

// VerifyInput is an admin's verification decision.
type VerifyInput struct {
	Decision enums.VerificationDecision
	Reason   string
}
