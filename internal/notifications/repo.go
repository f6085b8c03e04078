package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
)

// Repository persists inbox rows. Every read and write is scoped to one
// user except PurgeRead, which the retention job runs across all users.
type Repository interface {
	Create(ctx context.Context, rows ...*models.Notification) error
	Page(ctx context.Context, q inboxQuery) ([]models.Notification, string, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	PurgeRead(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type inboxQuery struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
	Type       enums.NotificationType
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) inbox(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
}

func (r *gormRepository) Create(ctx context.Context, rows ...*models.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *gormRepository) Page(ctx context.Context, q inboxQuery) ([]models.Notification, string, error) {
	tx := r.inbox(ctx, q.UserID)
	if q.UnreadOnly {
		tx = tx.Where("read = ?", false)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}

	var rows []models.Notification
	if err := pagination.Keyset(tx, "", q.Cursor).Limit(pagination.Fetch(q.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Split(rows, q.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})
	return page, next, nil
}

func (r *gormRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.inbox(ctx, userID).Where("read = ?", false).Count(&n).Error
	return n, err
}

// MarkRead reports whether the notification exists for userID. Marking an
// already read notification is a no-op that keeps the first read_at.
func (r *gormRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error) {
	var row models.Notification
	err := r.inbox(ctx, userID).Where("id = ?", id).Select("id", "read").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if row.Read {
		return true, nil
	}
	err = r.inbox(ctx, userID).
		Where("id = ? AND read = ?", id, false).
		UpdateColumns(map[string]any{"read": true, "read_at": at}).Error
	return err == nil, err
}

func (r *gormRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.inbox(ctx, userID).
		Where("read = ?", false).
		UpdateColumns(map[string]any{"read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

// PurgeRead deletes up to limit read notifications created before cutoff,
// oldest first.
func (r *gormRepository) PurgeRead(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	victims := r.db.Model(&models.Notification{}).
		Select("id").
		Where("read = ? AND created_at < ?", true, cutoff).
		Order("created_at").
		Limit(limit)
	res := r.db.WithContext(ctx).Where("id IN (?)", victims).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
