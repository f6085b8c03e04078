package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// Aggregator reduces raw rows into a Summary. It holds no state between
// calls, so Build can be re-run freely.
type Aggregator struct {
	reader Reader
}

func NewAggregator(reader Reader) (*Aggregator, error) {
	if reader == nil {
		return nil, fmt.Errorf("analytics reader required")
	}
	return &Aggregator{reader: reader}, nil
}

// Build computes the summary as observed at asOf. Day and month boundaries
// are taken in UTC.
func (a *Aggregator) Build(ctx context.Context, asOf time.Time) (*Summary, error) {
	if asOf.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "as_of is required")
	}
	asOf = asOf.UTC()
	out := &Summary{AsOf: asOf}

	shops, err := a.reader.ShopCountsByStatus(ctx)
	if err != nil {
		return nil, readErr(err, "shop counts")
	}
	out.PendingShops = shops[enums.ShopStatusPending]
	out.VerifiedShops = shops[enums.ShopStatusVerified]
	out.RejectedShops = shops[enums.ShopStatusRejected]
	out.TotalShops = sum(shops)

	roles, err := a.reader.ProfileCountsByRole(ctx)
	if err != nil {
		return nil, readErr(err, "user counts")
	}
	out.Customers = roles[enums.UserRoleCustomer]
	out.Shopkeepers = roles[enums.UserRoleShopkeeper]
	out.Admins = roles[enums.UserRoleAdmin]
	out.TotalUsers = sum(roles)

	if out.TotalProducts, err = a.reader.CountProducts(ctx); err != nil {
		return nil, readErr(err, "product count")
	}
	if out.ExpiringProductsCount, err = a.reader.CountActiveBatchesExpiringBy(ctx, asOf.Add(ExpiringHorizon)); err != nil {
		return nil, readErr(err, "expiring batches")
	}

	complaints, err := a.reader.ComplaintCountsByStatus(ctx)
	if err != nil {
		return nil, readErr(err, "complaint counts")
	}
	out.PendingComplaints = complaints[enums.ComplaintStatusPending]
	out.ResolvedComplaints = complaints[enums.ComplaintStatusResolved]

	txns, err := a.reader.Transactions(ctx)
	if err != nil {
		return nil, readErr(err, "transactions")
	}
	out.TotalTransactions = int64(len(txns))
	out.FoodSavedKg = float64(len(txns)) * KgPerTransaction
	out.RevenueThisMonth = revenueSince(txns, monthStart(asOf))

	if out.DailyStats, err = a.dailyStats(ctx, asOf); err != nil {
		return nil, err
	}
	if out.TopShops, err = a.topShops(ctx, txns); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Aggregator) dailyStats(ctx context.Context, asOf time.Time) ([]DailyStat, error) {
	last := dayStart(asOf)
	first := last.AddDate(0, 0, -(DailyWindow - 1))
	end := last.AddDate(0, 0, 1)

	shops, err := a.reader.ShopCreatedTimes(ctx, first, end)
	if err != nil {
		return nil, readErr(err, "shop creation times")
	}
	users, err := a.reader.ProfileCreatedTimes(ctx, first, end)
	if err != nil {
		return nil, readErr(err, "profile creation times")
	}

	stats := make([]DailyStat, DailyWindow)
	index := make(map[string]int, DailyWindow)
	for i := range stats {
		date := first.AddDate(0, 0, i).Format(dateLayout)
		stats[i].Date = date
		index[date] = i
	}
	for _, t := range shops {
		if i, ok := index[t.UTC().Format(dateLayout)]; ok {
			stats[i].ShopsCreated++
		}
	}
	for _, t := range users {
		if i, ok := index[t.UTC().Format(dateLayout)]; ok {
			stats[i].UsersCreated++
		}
	}
	return stats, nil
}

// topShops ranks shops by revenue. Ties keep the order in which each shop
// first appears in txns.
func (a *Aggregator) topShops(ctx context.Context, txns []TransactionRow) ([]TopShop, error) {
	ranking := RankShops(txns, TopShopsLimit)
	ids := make([]uuid.UUID, len(ranking))
	for i, shop := range ranking {
		ids[i] = shop.ShopID
	}
	names, err := a.reader.ShopNames(ctx, ids)
	if err != nil {
		return nil, readErr(err, "shop names")
	}
	for i := range ranking {
		ranking[i].Name = names[ranking[i].ShopID]
	}
	return ranking, nil
}

// RankShops groups transactions by shop, sums revenue and units, and returns
// the first limit shops by revenue descending using a stable sort.
func RankShops(txns []TransactionRow, limit int) []TopShop {
	var order []uuid.UUID
	totals := make(map[uuid.UUID]*TopShop)
	for _, t := range txns {
		entry, ok := totals[t.ShopID]
		if !ok {
			entry = &TopShop{ShopID: t.ShopID, Revenue: decimal.Zero}
			totals[t.ShopID] = entry
			order = append(order, t.ShopID)
		}
		entry.Revenue = entry.Revenue.Add(t.Price.Mul(decimal.NewFromInt(int64(t.Quantity))))
		entry.UnitsSold += int64(t.Quantity)
	}

	ranked := make([]TopShop, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *totals[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func revenueSince(txns []TransactionRow, from time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if !t.Timestamp.Before(from) {
			total = total.Add(t.Price.Mul(decimal.NewFromInt(int64(t.Quantity))))
		}
	}
	return total
}

func sum[K comparable](counts map[K]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func readErr(err error, what string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+what)
}
