// Package complaints handles customer complaints and their moderation.
package complaints

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
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxNoteLength        = 2000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	File(ctx context.Context, actor auth.Actor, input FileInput) (*ComplaintDTO, error)
	StartReview(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ComplaintDTO, error)
	Resolve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*ComplaintDTO, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*ComplaintDTO, error)
	List(ctx context.Context, actor auth.Actor, status *enums.ComplaintStatus) ([]ComplaintDTO, error)
	ListMine(ctx context.Context, actor auth.Actor) ([]ComplaintDTO, error)
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
		return nil, fmt.Errorf("complaint repository required")
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
	return &service{repo: p.Repo, audit: p.Audit, tx: p.Tx, authz: p.Authz, notifier: p.Notifier, now: p.Now}, nil
}

func (s *service) File(ctx context.Context, actor auth.Actor, input FileInput) (*ComplaintDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionFileComplaint, authz.Resource{}); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	var errs validate.Errors
	category, err := enums.ParseComplaintCategory(strings.TrimSpace(input.Category))
	if err != nil {
		errs.Add("category", "is not a known category")
	}
	errs.Length("title", title, 1, MaxTitleLength)
	errs.Length("description", description, 1, MaxDescriptionLength)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.ensureExists(ctx, &models.Shop{}, input.ShopID, "shop"); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, &models.Product{}, input.ProductID, "product"); err != nil {
		return nil, err
	}

	c := &models.Complaint{
		CustomerID:  actor.UserID,
		ShopID:      input.ShopID,
		ProductID:   input.ProductID,
		Category:    category,
		Title:       title,
		Description: description,
		Status:      enums.ComplaintStatusPending,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := FromModel(c)
	return &out, nil
}

func (s *service) ensureExists(ctx context.Context, model any, id *uuid.UUID, name string) error {
	if id == nil {
		return nil
	}
	ok, err := s.repo.exists(ctx, model, *id)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, name+" does not exist")
	}
	return nil
}

func (s *service) StartReview(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ComplaintDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionModerateComplaint, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.moderate(ctx, actor, id, enums.ComplaintStatusUnderReview, enums.ActivityComplaintReview, nil,
		map[string]any{"assigned_admin_id": actor.UserID})
}

// Resolve closes a complaint. A resolution note is mandatory.
func (s *service) Resolve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*ComplaintDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionModerateComplaint, authz.Resource{}); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	var errs validate.Errors
	errs.Length("resolution_note", note, 1, MaxNoteLength)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return s.moderate(ctx, actor, id, enums.ComplaintStatusResolved, enums.ActivityComplaintResolved, &note,
		map[string]any{"resolution_note": note, "resolved_at": s.now().UTC(), "assigned_admin_id": actor.UserID})
}

// Reject closes a complaint without action. The note is optional.
func (s *service) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*ComplaintDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionModerateComplaint, authz.Resource{}); err != nil {
		return nil, err
	}
	updates := map[string]any{"assigned_admin_id": actor.UserID}
	var notePtr *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		var errs validate.Errors
		errs.Length("resolution_note", trimmed, 1, MaxNoteLength)
		if err := errs.Err(); err != nil {
			return nil, err
		}
		updates["resolution_note"] = trimmed
		notePtr = &trimmed
	}
	return s.moderate(ctx, actor, id, enums.ComplaintStatusRejected, enums.ActivityComplaintRejected, notePtr, updates)
}

// moderate moves a complaint forward to next together with its audit entry.
// The customer hears about terminal outcomes.
func (s *service) moderate(ctx context.Context, actor auth.Actor, id uuid.UUID, next enums.ComplaintStatus, action enums.ActivityAction, note *string, updates map[string]any) (*ComplaintDTO, error) {
	now := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.Transition(ctx, id, sourcesFor(next), next, updates, now)
		if err != nil {
			return err
		}
		if !ok {
			current, err := repo.FindByID(ctx, id)
			if err != nil {
				return err
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("complaint cannot move from %s to %s", current.Status, next))
		}
		details := map[string]any{"status": string(next)}
		if note != nil {
			details["note"] = *note
		}
		return s.audit.WithTx(tx).Record(ctx, auditlog.Entry{
			AdminID:    actor.UserID,
			Action:     action,
			TargetType: enums.ActivityTargetComplaint,
			TargetID:   id,
			Details:    details,
			IPAddress:  auditlog.IPFromContext(ctx),
		})
	})
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if next.IsTerminal() {
		message := fmt.Sprintf("Your complaint %q was %s.", c.Title, next)
		if note != nil {
			message += " " + *note
		}
		s.notifier.Notify(ctx, notifications.Notice{
			UserID:  c.CustomerID,
			Type:    enums.NotificationTypeComplaintUpdate,
			Title:   "Complaint " + string(next),
			Message: message,
		})
	}
	out := FromModel(c)
	return &out, nil
}

// sourcesFor lists the statuses allowed to move to next.
func sourcesFor(next enums.ComplaintStatus) []enums.ComplaintStatus {
	var out []enums.ComplaintStatus
	for _, s := range []enums.ComplaintStatus{enums.ComplaintStatusPending, enums.ComplaintStatusUnderReview} {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

func (s *service) List(ctx context.Context, actor auth.Actor, status *enums.ComplaintStatus) ([]ComplaintDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionModerateComplaint, authz.Resource{}); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, status, nil)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

func (s *service) ListMine(ctx context.Context, actor auth.Actor) ([]ComplaintDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionFileComplaint, authz.Resource{}); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, nil, &actor.UserID)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

func toDTOs(rows []models.Complaint) []ComplaintDTO {
	out := make([]ComplaintDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
