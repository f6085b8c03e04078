package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// AdminActivityLog is the audit trail of moderation actions.
type AdminActivityLog struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	AdminID    uuid.UUID            `gorm:"column:admin_id;type:uuid;not null;index:admin_activity_logs_admin_id_idx"`
	ActionType enums.ActivityAction `gorm:"column:action_type;not null"`
	TargetType enums.ActivityTarget `gorm:"column:target_type;not null"`
	TargetID   uuid.UUID            `gorm:"column:target_id;type:uuid;not null;index:admin_activity_logs_target_idx"`
	Details    datatypes.JSON       `gorm:"column:details;type:jsonb"`
	IPAddress  *string              `gorm:"column:ip_address"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (a *AdminActivityLog) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
