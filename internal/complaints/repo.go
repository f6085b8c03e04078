package complaints

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

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

func (r *Repository) Create(ctx context.Context, c *models.Complaint) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create complaint")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var c models.Complaint
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load complaint")
	}
	return &c, nil
}

// Transition applies updates and moves the complaint to next, but only while
// its current status is one of from. It reports whether a row changed.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from []enums.ComplaintStatus, next enums.ComplaintStatus, updates map[string]any, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	values := map[string]any{"status": next, "updated_at": at}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update complaint")
	}
	return res.RowsAffected == 1, nil
}

// List returns complaints newest first, filtered by status and/or customer.
func (r *Repository) List(ctx context.Context, status *enums.ComplaintStatus, customerID *uuid.UUID) ([]models.Complaint, error) {
	q := r.db.WithContext(ctx).Model(&models.Complaint{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	var rows []models.Complaint
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	return rows, nil
}

// exists reports whether a row of model with the given id is present.
func (r *Repository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup reference")
	}
	return n > 0, nil
}
