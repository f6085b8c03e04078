package shops

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/auditlog"
	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/notifications/notificationstest"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/db/dbtest"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc      Service
	audit    *auditlog.Repository
	notifier *notificationstest.Recorder
	admin    auth.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	policy, err := authz.NewPolicy(repo)
	require.NoError(t, err)
	audit := auditlog.NewRepository(client.DB())
	rec := &notificationstest.Recorder{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Audit:    audit,
		Tx:       client,
		Authz:    policy,
		Notifier: rec,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return &harness{
		svc:      svc,
		audit:    audit,
		notifier: rec,
		admin:    auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin},
	}
}

func shopkeeper() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: enums.UserRoleShopkeeper}
}

func validInput() CreateShopInput {
	return CreateShopInput{Name: " Corner Mart ", Address: "12 MG Road", Latitude: 12.97, Longitude: 77.59}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateShop(t *testing.T) {
	h := newHarness(t)
	owner := shopkeeper()

	shop, err := h.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)
	assert.Equal(t, "Corner Mart", shop.Name)
	assert.Equal(t, enums.ShopStatusPending, shop.VerificationStatus)
	assert.True(t, shop.IsOpen)

	_, err = h.svc.Create(context.Background(), owner, validInput())
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateShopValidation(t *testing.T) {
	h := newHarness(t)
	cases := map[string]func(*CreateShopInput){
		"blank name":   func(in *CreateShopInput) { in.Name = "  " },
		"long name":    func(in *CreateShopInput) { in.Name = strings.Repeat("n", 101) },
		"long address": func(in *CreateShopInput) { in.Address = strings.Repeat("a", 501) },
		"latitude":     func(in *CreateShopInput) { in.Latitude = -90.5 },
		"longitude":    func(in *CreateShopInput) { in.Longitude = 181 },
		"gst":          func(in *CreateShopInput) { gst := strings.Repeat("g", 21); in.GSTNumber = &gst },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := h.svc.Create(context.Background(), shopkeeper(), in)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		})
	}
}

func TestCreateShopRequiresShopkeeper(t *testing.T) {
	h := newHarness(t)
	customer := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	_, err := h.svc.Create(context.Background(), customer, validInput())
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestVerifyApprove(t *testing.T) {
	h := newHarness(t)
	ctx := auditlog.WithIP(context.Background(), "10.0.0.1")
	shop, err := h.svc.Create(ctx, shopkeeper(), validInput())
	require.NoError(t, err)

	out, err := h.svc.Verify(ctx, h.admin, shop.ID, VerifyInput{Decision: enums.VerificationApprove})
	require.NoError(t, err)
	assert.Equal(t, enums.ShopStatusVerified, out.VerificationStatus)
	require.NotNil(t, out.VerifiedAt)
	assert.True(t, out.VerifiedAt.Equal(fixedNow))
	assert.Nil(t, out.RejectionReason)

	logs, err := h.audit.ListForTarget(ctx, enums.ActivityTargetShop, shop.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, enums.ActivityShopApproved, logs[0].ActionType)

	notices := h.notifier.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, shop.OwnerID, notices[0].UserID)
	assert.Equal(t, enums.NotificationTypeShopVerified, notices[0].Type)
}

func TestVerifyRejectStoresReasonVerbatim(t *testing.T) {
	h := newHarness(t)
	shop, err := h.svc.Create(context.Background(), shopkeeper(), validInput())
	require.NoError(t, err)

	reason := "  GST number does not match records.  "
	out, err := h.svc.Verify(context.Background(), h.admin, shop.ID, VerifyInput{Decision: enums.VerificationReject, Reason: reason})
	require.NoError(t, err)
	assert.Equal(t, enums.ShopStatusRejected, out.VerificationStatus)
	require.NotNil(t, out.RejectionReason)
	assert.Equal(t, reason, *out.RejectionReason)
	assert.Equal(t, enums.NotificationTypeShopRejected, h.notifier.Notices()[0].Type)
}

func TestVerifyRejectRequiresReason(t *testing.T) {
	h := newHarness(t)
	shop, err := h.svc.Create(context.Background(), shopkeeper(), validInput())
	require.NoError(t, err)

	_, err = h.svc.Verify(context.Background(), h.admin, shop.ID, VerifyInput{Decision: enums.VerificationReject, Reason: " \t"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	mine, err := h.svc.GetMine(context.Background(), auth.Actor{UserID: shop.OwnerID, Role: enums.UserRoleShopkeeper})
	require.NoError(t, err)
	assert.Equal(t, enums.ShopStatusPending, mine.VerificationStatus)
}

func TestVerifyOnlyFromPending(t *testing.T) {
	h := newHarness(t)
	shop, err := h.svc.Create(context.Background(), shopkeeper(), validInput())
	require.NoError(t, err)
	_, err = h.svc.Verify(context.Background(), h.admin, shop.ID, VerifyInput{Decision: enums.VerificationApprove})
	require.NoError(t, err)

	_, err = h.svc.Verify(context.Background(), h.admin, shop.ID, VerifyInput{Decision: enums.VerificationReject, Reason: "late"})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	_, err = h.svc.Verify(context.Background(), h.admin, uuid.New(), VerifyInput{Decision: enums.VerificationApprove})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	logs, err := h.audit.ListForTarget(context.Background(), enums.ActivityTargetShop, shop.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestVerifyRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	owner := shopkeeper()
	shop, err := h.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = h.svc.Verify(context.Background(), owner, shop.ID, VerifyInput{Decision: enums.VerificationApprove})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestSuspendAndUnsuspend(t *testing.T) {
	h := newHarness(t)
	shop, err := h.svc.Create(context.Background(), shopkeeper(), validInput())
	require.NoError(t, err)

	out, err := h.svc.Suspend(context.Background(), h.admin, shop.ID, "expired goods complaints")
	require.NoError(t, err)
	assert.True(t, out.Suspended)

	_, err = h.svc.Suspend(context.Background(), h.admin, shop.ID, "again")
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	out, err = h.svc.Unsuspend(context.Background(), h.admin, shop.ID)
	require.NoError(t, err)
	assert.False(t, out.Suspended)
	assert.Nil(t, out.SuspensionReason)

	_, err = h.svc.Unsuspend(context.Background(), h.admin, shop.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	logs, err := h.audit.ListForTarget(context.Background(), enums.ActivityTargetShop, shop.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestSetOpenAndList(t *testing.T) {
	h := newHarness(t)
	owner := shopkeeper()
	_, err := h.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)
	_, err = h.svc.Create(context.Background(), shopkeeper(), validInput())
	require.NoError(t, err)

	out, err := h.svc.SetOpen(context.Background(), owner, false)
	require.NoError(t, err)
	assert.False(t, out.IsOpen)

	pending := enums.ShopStatusPending
	list, err := h.svc.List(context.Background(), h.admin, &pending)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	verified := enums.ShopStatusVerified
	list, err = h.svc.List(context.Background(), h.admin, &verified)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetMineWithoutShop(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.GetMine(context.Background(), shopkeeper())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
