package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

type fakeReader struct {
	shops        map[enums.ShopStatus]int64
	roles        map[enums.UserRole]int64
	complaints   map[enums.ComplaintStatus]int64
	products     int64
	expiring     int64
	expiringBy   time.Time
	txns         []TransactionRow
	shopTimes    []time.Time
	profileTimes []time.Time
	names        map[uuid.UUID]string
	windowFrom   time.Time
	windowTo     time.Time
	txnErr       error
}

func (f *fakeReader) ShopCountsByStatus(context.Context) (map[enums.ShopStatus]int64, error) {
	return f.shops, nil
}

func (f *fakeReader) ProfileCountsByRole(context.Context) (map[enums.UserRole]int64, error) {
	return f.roles, nil
}

func (f *fakeReader) ComplaintCountsByStatus(context.Context) (map[enums.ComplaintStatus]int64, error) {
	return f.complaints, nil
}

func (f *fakeReader) CountProducts(context.Context) (int64, error) { return f.products, nil }

func (f *fakeReader) CountActiveBatchesExpiringBy(_ context.Context, until time.Time) (int64, error) {
	f.expiringBy = until
	return f.expiring, nil
}

func (f *fakeReader) Transactions(context.Context) ([]TransactionRow, error) {
	return f.txns, f.txnErr
}

func (f *fakeReader) ShopCreatedTimes(_ context.Context, from, to time.Time) ([]time.Time, error) {
	f.windowFrom, f.windowTo = from, to
	return f.shopTimes, nil
}

func (f *fakeReader) ProfileCreatedTimes(context.Context, time.Time, time.Time) ([]time.Time, error) {
	return f.profileTimes, nil
}

func (f *fakeReader) ShopNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		out[id] = f.names[id]
	}
	return out, nil
}

type adminOnly struct{}

func (adminOnly) Authorize(_ context.Context, actor auth.Actor, action authz.Action, _ authz.Resource) error {
	if action == authz.ActionViewAnalytics && actor.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "forbidden")
	}
	return nil
}

var asOf = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func tx(shop uuid.UUID, qty int, price string, at time.Time) TransactionRow {
	return TransactionRow{ShopID: shop, Quantity: qty, Price: decimal.RequireFromString(price), Timestamp: at}
}

func newReader() (*fakeReader, uuid.UUID, uuid.UUID) {
	shopA, shopB := uuid.New(), uuid.New()
	return &fakeReader{
		shops:      map[enums.ShopStatus]int64{enums.ShopStatusPending: 2, enums.ShopStatusVerified: 3, enums.ShopStatusRejected: 1},
		roles:      map[enums.UserRole]int64{enums.UserRoleCustomer: 10, enums.UserRoleShopkeeper: 4, enums.UserRoleAdmin: 1},
		complaints: map[enums.ComplaintStatus]int64{enums.ComplaintStatusPending: 2, enums.ComplaintStatusResolved: 5, enums.ComplaintStatusRejected: 1},
		products:   7,
		expiring:   4,
		txns: []TransactionRow{
			tx(shopB, 1, "150", time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)),
			tx(shopA, 2, "100", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)),
			tx(shopB, 1, "0.50", time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)),
		},
		shopTimes: []time.Time{
			time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 10, 23, 59, 0, 0, time.UTC),
		},
		profileTimes: []time.Time{time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)},
		names:        map[uuid.UUID]string{shopA: "Alpha", shopB: "Beta"},
	}, shopA, shopB
}

func TestBuildSummary(t *testing.T) {
	reader, shopA, shopB := newReader()
	agg, err := NewAggregator(reader)
	require.NoError(t, err)

	s, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)

	assert.EqualValues(t, 6, s.TotalShops)
	assert.EqualValues(t, 2, s.PendingShops)
	assert.EqualValues(t, 3, s.VerifiedShops)
	assert.EqualValues(t, 1, s.RejectedShops)
	assert.EqualValues(t, 15, s.TotalUsers)
	assert.EqualValues(t, 4, s.Shopkeepers)
	assert.EqualValues(t, 7, s.TotalProducts)
	assert.EqualValues(t, 4, s.ExpiringProductsCount)
	assert.Equal(t, asOf.Add(ExpiringHorizon), reader.expiringBy)
	assert.EqualValues(t, 3, s.TotalTransactions)
	assert.InDelta(t, 1.5, s.FoodSavedKg, 1e-9)
	assert.True(t, decimal.RequireFromString("200.50").Equal(s.RevenueThisMonth), s.RevenueThisMonth.String())
	assert.EqualValues(t, 2, s.PendingComplaints)
	assert.EqualValues(t, 5, s.ResolvedComplaints)

	require.Len(t, s.TopShops, 2)
	assert.Equal(t, shopA, s.TopShops[0].ShopID)
	assert.Equal(t, "Alpha", s.TopShops[0].Name)
	assert.True(t, decimal.NewFromInt(200).Equal(s.TopShops[0].Revenue))
	assert.EqualValues(t, 2, s.TopShops[0].UnitsSold)
	assert.Equal(t, shopB, s.TopShops[1].ShopID)
	assert.True(t, decimal.RequireFromString("150.50").Equal(s.TopShops[1].Revenue))
}

func TestBuildDailyStatsWindow(t *testing.T) {
	reader, _, _ := newReader()
	agg, err := NewAggregator(reader)
	require.NoError(t, err)

	s, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)

	require.Len(t, s.DailyStats, DailyWindow)
	assert.Equal(t, "2024-02-10", s.DailyStats[0].Date)
	assert.Equal(t, "2024-03-10", s.DailyStats[DailyWindow-1].Date)
	assert.Equal(t, 1, s.DailyStats[0].ShopsCreated)
	assert.Equal(t, 1, s.DailyStats[DailyWindow-1].ShopsCreated)
	assert.Equal(t, 1, s.DailyStats[DailyWindow-2].UsersCreated)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), reader.windowFrom)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), reader.windowTo)
}

func TestBuildIsRepeatable(t *testing.T) {
	reader, _, _ := newReader()
	agg, err := NewAggregator(reader)
	require.NoError(t, err)

	first, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	second, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildEmpty(t *testing.T) {
	agg, err := NewAggregator(&fakeReader{})
	require.NoError(t, err)

	s, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	assert.Zero(t, s.TotalShops)
	assert.True(t, s.RevenueThisMonth.IsZero())
	assert.Empty(t, s.TopShops)
	assert.Len(t, s.DailyStats, DailyWindow)
}

func TestBuildWrapsReaderErrors(t *testing.T) {
	reader, _, _ := newReader()
	reader.txnErr = errors.New("connection reset")
	agg, err := NewAggregator(reader)
	require.NoError(t, err)

	_, err = agg.Build(context.Background(), asOf)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))

	_, err = agg.Build(context.Background(), time.Time{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRankShopsStableAndLimited(t *testing.T) {
	ids := make([]uuid.UUID, 7)
	var txns []TransactionRow
	for i := range ids {
		ids[i] = uuid.New()
		txns = append(txns, tx(ids[i], 1, "10", asOf))
	}
	ranked := RankShops(txns, TopShopsLimit)
	require.Len(t, ranked, TopShopsLimit)
	for i := range ranked {
		assert.Equal(t, ids[i], ranked[i].ShopID)
	}
}

func TestDashboardRequiresAdmin(t *testing.T) {
	reader, _, _ := newReader()
	agg, err := NewAggregator(reader)
	require.NoError(t, err)
	svc, err := NewService(agg, adminOnly{}, func() time.Time { return asOf })
	require.NoError(t, err)

	_, err = svc.Dashboard(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleShopkeeper}, time.Time{})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	s, err := svc.Dashboard(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, asOf, s.AsOf)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil, adminOnly{}, nil)
	assert.Error(t, err)
	_, err = NewAggregator(nil)
	assert.Error(t, err)
}
