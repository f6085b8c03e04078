package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// Profile mirrors an identity-provider user inside the marketplace.
type Profile struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Email     *string             `gorm:"column:email"`
	Phone     *string             `gorm:"column:phone"`
	Role      enums.UserRole      `gorm:"column:role;type:user_role;not null;default:'customer'"`
	Status    enums.ProfileStatus `gorm:"column:status;type:profile_status;not null;default:'active'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
