package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/api/responses"
	"github.com/shelflife/shelflife-backend/api/validators"
	"github.com/shelflife/shelflife-backend/internal/complaints"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

type fileComplaintRequest struct {
	Category    string  `json:"category" validate:"required"`
	Title       string  `json:"title" validate:"required,notblank,max=200"`
	Description string  `json:"description" validate:"required,notblank,max=5000"`
	ShopID      *string `json:"shop_id,omitempty" validate:"omitempty,uuid"`
	ProductID   *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
}

type complaintNoteRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

// ComplaintFile opens a complaint on behalf of the caller.
func ComplaintFile(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "complaints")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload fileComplaintRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := validators.ParseOptionalBodyUUID("shop_id", payload.ShopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseOptionalBodyUUID("product_id", payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		complaint, err := svc.File(r.Context(), actor, complaints.FileInput{
			Category:    payload.Category,
			Title:       payload.Title,
			Description: payload.Description,
			ShopID:      shopID,
			ProductID:   productID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, complaint)
	}
}

// ComplaintListMine returns complaints filed by the caller.
func ComplaintListMine(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "complaints")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		list, err := svc.ListMine(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminComplaintList lists complaints, optionally filtered by ?status=.
func AdminComplaintList(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "complaints")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var status *enums.ComplaintStatus
		if raw := validators.ParseQueryString(r, "status"); raw != nil {
			parsed, err := enums.ParseComplaintStatus(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		list, err := svc.List(r.Context(), actor, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminComplaintReview moves an open complaint into review.
func AdminComplaintReview(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return complaintTransition(svc, logg, false, func(ctx context.Context, actor auth.Actor, id uuid.UUID, _ string) (*complaints.ComplaintDTO, error) {
		return svc.StartReview(ctx, actor, id)
	})
}

// AdminComplaintResolve closes a complaint as resolved.
func AdminComplaintResolve(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return complaintTransition(svc, logg, true, func(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*complaints.ComplaintDTO, error) {
		return svc.Resolve(ctx, actor, id, note)
	})
}

// AdminComplaintReject closes a complaint as rejected.
func AdminComplaintReject(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return complaintTransition(svc, logg, true, func(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*complaints.ComplaintDTO, error) {
		return svc.Reject(ctx, actor, id, note)
	})
}

type complaintStep func(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*complaints.ComplaintDTO, error)

func complaintTransition(svc complaints.Service, logg *logger.Logger, withNote bool, step complaintStep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "complaints")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "complaintId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var note string
		if withNote && r.ContentLength != 0 {
			var payload complaintNoteRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			note = payload.Note
		}

		complaint, err := step(r.Context(), actor, id, note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, complaint)
	}
}
