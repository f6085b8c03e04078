// Package shops owns shop registration and the admin verification lifecycle.
package shops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/internal/auditlog"
	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/notifications"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/validate"
)

const (
	MaxNameLength    = 100
	MaxAddressLength = 500
	MaxGSTLength     = 20
	MaxReasonLength  = 1000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes shop operations.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateShopInput) (*ShopDTO, error)
	GetMine(ctx context.Context, actor auth.Actor) (*ShopDTO, error)
	SetOpen(ctx context.Context, actor auth.Actor, open bool) (*ShopDTO, error)
	Verify(ctx context.Context, actor auth.Actor, shopID uuid.UUID, input VerifyInput) (*ShopDTO, error)
	Suspend(ctx context.Context, actor auth.Actor, shopID uuid.UUID, reason string) (*ShopDTO, error)
	Unsuspend(ctx context.Context, actor auth.Actor, shopID uuid.UUID) (*ShopDTO, error)
	List(ctx context.Context, actor auth.Actor, status *enums.ShopStatus) ([]ShopDTO, error)
}

type ServiceParams struct {
	Repo     *Repository
	Audit    *auditlog.Repository
	Tx       txRunner
	Authz    authz.Authorizer
	Notifier notifications.Notifier
	Now      func() time.Time
}

type service struct {
	repo     *Repository
	audit    *auditlog.Repository
	tx       txRunner
	authz    authz.Authorizer
	notifier notifications.Notifier
	now      func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if p.Audit == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Authz == nil {
		return nil, fmt.Errorf("authorizer required")
	}
	if p.Notifier == nil {
		p.Notifier = notifications.NopNotifier{}
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:     p.Repo,
		audit:    p.Audit,
		tx:       p.Tx,
		authz:    p.Authz,
		notifier: p.Notifier,
		now:      p.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateShopInput) (*ShopDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionCreateShop, authz.Resource{}); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.GSTNumber = validate.TrimOptional(input.GSTNumber)

	var errs validate.Errors
	errs.Length("name", input.Name, 1, MaxNameLength)
	errs.Length("address", input.Address, 1, MaxAddressLength)
	errs.FloatRange("latitude", input.Latitude, -90, 90)
	errs.FloatRange("longitude", input.Longitude, -180, 180)
	if input.GSTNumber != nil {
		errs.Length("gst_number", *input.GSTNumber, 1, MaxGSTLength)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	shop := &models.Shop{
		OwnerID:            actor.UserID,
		Name:               input.Name,
		Address:            input.Address,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		GSTNumber:          input.GSTNumber,
		VerificationStatus: enums.ShopStatusPending,
		IsOpen:             true,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, err
	}
	return FromModel(shop), nil
}

func (s *service) GetMine(ctx context.Context, actor auth.Actor) (*ShopDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionCreateShop, authz.Resource{}); err != nil {
		return nil, err
	}
	shop, err := s.repo.FindByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return FromModel(shop), nil
}

func (s *service) SetOpen(ctx context.Context, actor auth.Actor, open bool) (*ShopDTO, error) {
	shop, err := s.GetMine(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, authz.ActionManageShop, authz.Resource{ShopID: shop.ID}); err != nil {
		return nil, err
	}
	if err := s.repo.SetOpen(ctx, shop.ID, open, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.load(ctx, shop.ID)
}

// Verify approves or rejects a pending shop. The decision and its audit
// entry commit together; the owner is notified afterwards.
func (s *service) Verify(ctx context.Context, actor auth.Actor, shopID uuid.UUID, input VerifyInput) (*ShopDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionVerifyShop, authz.Resource{}); err != nil {
		return nil, err
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	status := enums.ShopStatusVerified
	action := enums.ActivityShopApproved
	var reason *string
	if input.Decision == enums.VerificationReject {
		var errs validate.Errors
		errs.Required("reason", input.Reason)
		errs.Length("reason", input.Reason, 0, MaxReasonLength)
		if err := errs.Err(); err != nil {
			return nil, err
		}
		status = enums.ShopStatusRejected
		action = enums.ActivityShopRejected
		reason = &input.Reason
	}

	now := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).Decide(ctx, shopID, status, actor.UserID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return s.transitionErr(ctx, tx, shopID, "shop is not pending verification")
		}
		details := map[string]any{"decision": string(input.Decision)}
		if reason != nil {
			details["reason"] = *reason
		}
		return s.audit.WithTx(tx).Record(ctx, auditlog.Entry{
			AdminID:    actor.UserID,
			Action:     action,
			TargetType: enums.ActivityTargetShop,
			TargetID:   shopID,
			Details:    details,
			IPAddress:  auditlog.IPFromContext(ctx),
		})
	})
	if err != nil {
		return nil, err
	}

	shop, err := s.load(ctx, shopID)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, verificationNotice(shop))
	return shop, nil
}

func (s *service) Suspend(ctx context.Context, actor auth.Actor, shopID uuid.UUID, reason string) (*ShopDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionSuspendShop, authz.Resource{}); err != nil {
		return nil, err
	}
	var errs validate.Errors
	errs.Required("reason", reason)
	errs.Length("reason", reason, 0, MaxReasonLength)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).Suspend(ctx, shopID, actor.UserID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return s.transitionErr(ctx, tx, shopID, "shop is already suspended")
		}
		return s.audit.WithTx(tx).Record(ctx, auditlog.Entry{
			AdminID:    actor.UserID,
			Action:     enums.ActivityShopSuspended,
			TargetType: enums.ActivityTargetShop,
			TargetID:   shopID,
			Details:    map[string]any{"reason": reason},
			IPAddress:  auditlog.IPFromContext(ctx),
		})
	})
	if err != nil {
		return nil, err
	}

	shop, err := s.load(ctx, shopID)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notifications.Notice{
		UserID:  shop.OwnerID,
		Type:    enums.NotificationTypeShopSuspended,
		Title:   "Shop suspended",
		Message: fmt.Sprintf("%s has been suspended: %s", shop.Name, reason),
	})
	return shop, nil
}

func (s *service) Unsuspend(ctx context.Context, actor auth.Actor, shopID uuid.UUID) (*ShopDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionSuspendShop, authz.Resource{}); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).Unsuspend(ctx, shopID, now)
		if err != nil {
			return err
		}
		if !ok {
			return s.transitionErr(ctx, tx, shopID, "shop is not suspended")
		}
		return s.audit.WithTx(tx).Record(ctx, auditlog.Entry{
			AdminID:    actor.UserID,
			Action:     enums.ActivityShopUnsuspended,
			TargetType: enums.ActivityTargetShop,
			TargetID:   shopID,
			IPAddress:  auditlog.IPFromContext(ctx),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, shopID)
}

func (s *service) List(ctx context.Context, actor auth.Actor, status *enums.ShopStatus) ([]ShopDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionListShops, authz.Resource{}); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shop status")
	}
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]ShopDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(shop), nil
}

// transitionErr classifies a conditional update that matched no row.
func (s *service) transitionErr(ctx context.Context, tx *gorm.DB, id uuid.UUID, conflict string) error {
	if _, err := s.repo.WithTx(tx).FindByID(ctx, id); err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, conflict)
}

func verificationNotice(shop *ShopDTO) notifications.Notice {
	if shop.VerificationStatus == enums.ShopStatusVerified {
		return notifications.Notice{
			UserID:  shop.OwnerID,
			Type:    enums.NotificationTypeShopVerified,
			Title:   "Shop verified",
			Message: fmt.Sprintf("%s is now visible to customers.", shop.Name),
		}
	}
	reason := ""
	if shop.RejectionReason != nil {
		reason = *shop.RejectionReason
	}
	return notifications.Notice{
		UserID:  shop.OwnerID,
		Type:    enums.NotificationTypeShopRejected,
		Title:   "Shop verification rejected",
		Message: fmt.Sprintf("%s was not verified: %s", shop.Name, reason),
	}
}
