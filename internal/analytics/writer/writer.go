package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"

	"github.com/shelflife/shelflife-backend/internal/analytics"
	pkgbigquery "github.com/shelflife/shelflife-backend/pkg/bigquery"
)

// Config controls the snapshot writer behavior.
type Config struct {
	SnapshotTable string
	RetryPolicy   RetryPolicy
}

type warehouse interface {
	EnsureTable(ctx context.Context, table string, schema cbigquery.Schema, partitionField string) (bool, error)
	InsertRows(ctx context.Context, table string, rows []any) error
}

// SnapshotRow mirrors the analytics_snapshots BigQuery schema.
type SnapshotRow struct {
	SnapshotID            string             `bigquery:"snapshot_id"`
	AsOf                  time.Time          `bigquery:"as_of"`
	TotalShops            int64              `bigquery:"total_shops"`
	PendingShops          int64              `bigquery:"pending_shops"`
	VerifiedShops         int64              `bigquery:"verified_shops"`
	RejectedShops         int64              `bigquery:"rejected_shops"`
	TotalUsers            int64              `bigquery:"total_users"`
	TotalProducts         int64              `bigquery:"total_products"`
	ExpiringProductsCount int64              `bigquery:"expiring_products_count"`
	TotalTransactions     int64              `bigquery:"total_transactions"`
	RevenueThisMonth      *big.Rat           `bigquery:"revenue_this_month"`
	FoodSavedKg           float64            `bigquery:"food_saved_kg"`
	PendingComplaints     int64              `bigquery:"pending_complaints"`
	ResolvedComplaints    int64              `bigquery:"resolved_complaints"`
	DailyStats            cbigquery.NullJSON `bigquery:"daily_stats"`
	TopShops              cbigquery.NullJSON `bigquery:"top_shops"`
}

// SnapshotWriter streams analytics summaries into BigQuery with retries.
type SnapshotWriter struct {
	client warehouse
	table  string
	retry  RetryPolicy
}

// New creates a SnapshotWriter backed by a shared client.
func New(client *pkgbigquery.Client, cfg Config) (*SnapshotWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table := strings.TrimSpace(cfg.SnapshotTable)
	if table == "" {
		return nil, errors.New("snapshot table is required")
	}

	return &SnapshotWriter{client: client, table: table, retry: cfg.RetryPolicy.withDefaults()}, nil
}

// Prepare creates the snapshot table, day-partitioned on as_of, when the
// dataset does not have it yet.
func (w *SnapshotWriter) Prepare(ctx context.Context) (bool, error) {
	schema, err := cbigquery.InferSchema(SnapshotRow{})
	if err != nil {
		return false, fmt.Errorf("infer snapshot schema: %w", err)
	}
	return w.client.EnsureTable(ctx, w.table, schema, "as_of")
}

// Write inserts one snapshot row. The insert id is derived from asOf so a
// retried run does not duplicate the row.
func (w *SnapshotWriter) Write(ctx context.Context, summary *analytics.Summary) error {
	row, err := NewSnapshotRow(summary)
	if err != nil {
		return err
	}
	rows := []any{&cbigquery.StructSaver{Struct: row, InsertID: row.SnapshotID}}
	err = w.retry.do(ctx, func(ctx context.Context) error {
		return w.client.InsertRows(ctx, w.table, rows)
	})
	if err != nil {
		return fmt.Errorf("insert %s row: %w", w.table, err)
	}
	return nil
}

// NewSnapshotRow flattens a summary into the warehouse schema.
func NewSnapshotRow(s *analytics.Summary) (*SnapshotRow, error) {
	if s == nil {
		return nil, errors.New("summary required")
	}
	daily, err := jsonColumn(s.DailyStats)
	if err != nil {
		return nil, err
	}
	top, err := jsonColumn(s.TopShops)
	if err != nil {
		return nil, err
	}
	return &SnapshotRow{
		SnapshotID:            s.AsOf.UTC().Format(time.RFC3339),
		AsOf:                  s.AsOf.UTC(),
		TotalShops:            s.TotalShops,
		PendingShops:          s.PendingShops,
		VerifiedShops:         s.VerifiedShops,
		RejectedShops:         s.RejectedShops,
		TotalUsers:            s.TotalUsers,
		TotalProducts:         s.TotalProducts,
		ExpiringProductsCount: s.ExpiringProductsCount,
		TotalTransactions:     s.TotalTransactions,
		RevenueThisMonth:      s.RevenueThisMonth.Rat(),
		FoodSavedKg:           s.FoodSavedKg,
		PendingComplaints:     s.PendingComplaints,
		ResolvedComplaints:    s.ResolvedComplaints,
		DailyStats:            daily,
		TopShops:              top,
	}, nil
}

// jsonColumn renders v for a BigQuery JSON column; nil becomes NULL.
func jsonColumn(v any) (cbigquery.NullJSON, error) {
	if v == nil {
		return cbigquery.NullJSON{}, nil
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return cbigquery.NullJSON{}, fmt.Errorf("marshal json column: %w", err)
		}
	}
	if len(raw) == 0 {
		return cbigquery.NullJSON{}, nil
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(raw)}, nil
}
