package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/discount"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/vision"
)

type fakeVision struct {
	out   *vision.Extraction
	err   error
	calls int
}

func (f *fakeVision) Extract(context.Context, string) (*vision.Extraction, error) {
	f.calls++
	return f.out, f.err
}

type noShops struct{}

func (noShops) OwnerOf(context.Context, uuid.UUID) (uuid.UUID, error) { return uuid.Nil, nil }

func str(s string) *string { return &s }

func num(s string) *vision.Number {
	n := vision.Number(s)
	return &n
}

var now = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, v *fakeVision) Service {
	t.Helper()
	policy, err := authz.NewPolicy(noShops{})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Vision: v,
		Authz:  policy,
		Engine: discount.NewEngine(func() time.Time { return now }),
	})
	require.NoError(t, err)
	return svc
}

var shopkeeper = auth.Actor{UserID: uuid.New(), Role: enums.UserRoleShopkeeper}

func TestScanBuildsDraftAndSuggestsDiscount(t *testing.T) {
	v := &fakeVision{out: &vision.Extraction{
		ProductName: str("  Greek Yogurt "),
		Brand:       str("Epigamia"),
		BatchCode:   str("GY-1"),
		MRP:         num("60.499"),
		Quantity:    num("12"),
		ExpiryDate:  str("2024-01-06"),
	}}
	res, err := newService(t, v).Scan(context.Background(), shopkeeper, "aW1n")
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, "Greek Yogurt", *res.Draft.Name)
	assert.Equal(t, "60.5", res.Draft.MRP.String())
	assert.Equal(t, 12, *res.Draft.Quantity)
	require.NotNil(t, res.SuggestedDiscount)
	assert.Equal(t, 5, *res.DaysToExpiry)
	assert.Equal(t, 30, *res.SuggestedDiscount)
}

func TestScanDropsInvalidFields(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	v := &fakeVision{out: &vision.Extraction{
		ProductName:       str(string(long)),
		MRP:               num("-5"),
		Quantity:          num("2.5"),
		ExpiryDate:        str("06/01/2024"),
		ManufacturingDate: str("2023-12-01"),
	}}
	res, err := newService(t, v).Scan(context.Background(), shopkeeper, "aW1n")
	require.NoError(t, err)

	assert.Nil(t, res.Draft.Name)
	assert.Nil(t, res.Draft.MRP)
	assert.Nil(t, res.Draft.Quantity)
	assert.Nil(t, res.Draft.ExpiryDate)
	assert.Equal(t, "2023-12-01", *res.Draft.ManufacturingDate)
	assert.Nil(t, res.SuggestedDiscount)

	fields := map[string]bool{}
	for _, w := range res.Warnings {
		fields[w.Field] = true
	}
	assert.Equal(t, map[string]bool{"name": true, "mrp": true, "quantity": true, "expiry_date": true}, fields)
}

func TestScanRejectsManufacturingAfterExpiry(t *testing.T) {
	v := &fakeVision{out: &vision.Extraction{
		ExpiryDate:        str("2024-02-01"),
		ManufacturingDate: str("2024-03-01"),
	}}
	res, err := newService(t, v).Scan(context.Background(), shopkeeper, "aW1n")
	require.NoError(t, err)
	assert.Nil(t, res.Draft.ManufacturingDate)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "manufacturing_date", res.Warnings[0].Field)
}

func TestScanRequiresShopkeeperAndImage(t *testing.T) {
	v := &fakeVision{out: &vision.Extraction{}}
	svc := newService(t, v)

	_, err := svc.Scan(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}, "aW1n")
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = svc.Scan(context.Background(), shopkeeper, "   ")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Zero(t, v.calls)
}

func TestScanPropagatesVisionErrors(t *testing.T) {
	v := &fakeVision{err: pkgerrors.Wrap(pkgerrors.CodeRateLimit, errors.New("429"), "slow down")}
	_, err := newService(t, v).Scan(context.Background(), shopkeeper, "aW1n")
	assert.Equal(t, pkgerrors.CodeRateLimit, pkgerrors.CodeOf(err))
}
