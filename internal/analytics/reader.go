package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// TransactionRow is the slice of a transaction the aggregator needs.
type TransactionRow struct {
	ShopID    uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Timestamp time.Time
}

// Reader is the read-only data access the aggregator runs on.
type Reader interface {
	ShopCountsByStatus(ctx context.Context) (map[enums.ShopStatus]int64, error)
	ProfileCountsByRole(ctx context.Context) (map[enums.UserRole]int64, error)
	ComplaintCountsByStatus(ctx context.Context) (map[enums.ComplaintStatus]int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountActiveBatchesExpiringBy(ctx context.Context, until time.Time) (int64, error)
	// Transactions returns every transaction ordered by (timestamp, id).
	Transactions(ctx context.Context) ([]TransactionRow, error)
	ShopCreatedTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)
	ProfileCreatedTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)
	ShopNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// GormReader implements Reader over the primary database.
type GormReader struct {
	db *gorm.DB
}

func NewGormReader(db *gorm.DB) *GormReader {
	return &GormReader{db: db}
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (r *GormReader) countBy(ctx context.Context, model any, column string) ([]groupCount, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(model).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func (r *GormReader) ShopCountsByStatus(ctx context.Context) (map[enums.ShopStatus]int64, error) {
	rows, err := r.countBy(ctx, &models.Shop{}, "verification_status")
	if err != nil {
		return nil, err
	}
	out := make(map[enums.ShopStatus]int64, len(rows))
	for _, row := range rows {
		out[enums.ShopStatus(row.GroupKey)] = row.Total
	}
	return out, nil
}

func (r *GormReader) ProfileCountsByRole(ctx context.Context) (map[enums.UserRole]int64, error) {
	rows, err := r.countBy(ctx, &models.Profile{}, "role")
	if err != nil {
		return nil, err
	}
	out := make(map[enums.UserRole]int64, len(rows))
	for _, row := range rows {
		out[enums.UserRole(row.GroupKey)] = row.Total
	}
	return out, nil
}

func (r *GormReader) ComplaintCountsByStatus(ctx context.Context) (map[enums.ComplaintStatus]int64, error) {
	rows, err := r.countBy(ctx, &models.Complaint{}, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[enums.ComplaintStatus]int64, len(rows))
	for _, row := range rows {
		out[enums.ComplaintStatus(row.GroupKey)] = row.Total
	}
	return out, nil
}

func (r *GormReader) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func (r *GormReader) CountActiveBatchesExpiringBy(ctx context.Context, until time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.InventoryBatch{}).
		Where("status = ? AND expiry_date <= ?", enums.BatchStatusActive, until).
		Count(&n).Error
	return n, err
}

func (r *GormReader) Transactions(ctx context.Context) ([]TransactionRow, error) {
	var rows []TransactionRow
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("shop_id", "quantity", "price", "timestamp").
		Order("timestamp ASC, id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormReader) createdTimes(ctx context.Context, model any, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	err := r.db.WithContext(ctx).Model(model).
		Where("created_at >= ? AND created_at < ?", from, to).
		Pluck("created_at", &out).Error
	return out, err
}

func (r *GormReader) ShopCreatedTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return r.createdTimes(ctx, &models.Shop{}, from, to)
}

func (r *GormReader) ProfileCreatedTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return r.createdTimes(ctx, &models.Profile{}, from, to)
}

func (r *GormReader) ShopNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&shops).Error; err != nil {
		return nil, err
	}
	for _, s := range shops {
		out[s.ID] = s.Name
	}
	return out, nil
}
