// Package auditlog records admin moderation actions.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// Entry describes one admin action.
type Entry struct {
	AdminID    uuid.UUID
	Action     enums.ActivityAction
	TargetType enums.ActivityTarget
	TargetID   uuid.UUID
	Details    map[string]any
	IPAddress  string
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Record inserts the entry. Callers run it in the same transaction as the
// action it describes.
func (r *Repository) Record(ctx context.Context, entry Entry) error {
	row, err := entry.model()
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// ListForTarget returns the trail for one entity, newest first.
func (r *Repository) ListForTarget(ctx context.Context, target enums.ActivityTarget, targetID uuid.UUID) ([]models.AdminActivityLog, error) {
	var rows []models.AdminActivityLog
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", target, targetID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (e Entry) model() (*models.AdminActivityLog, error) {
	if e.AdminID == uuid.Nil {
		return nil, fmt.Errorf("admin id required")
	}
	if e.TargetID == uuid.Nil {
		return nil, fmt.Errorf("target id required")
	}
	row := &models.AdminActivityLog{
		AdminID:    e.AdminID,
		ActionType: e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
	}
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("encode details: %w", err)
		}
		row.Details = datatypes.JSON(raw)
	}
	if e.IPAddress != "" {
		ip := e.IPAddress
		row.IPAddress = &ip
	}
	return row, nil
}

type ipKey struct{}

// WithIP stores the caller's address for entries recorded downstream.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// IPFromContext returns the address stored by WithIP.
func IPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}
