// Package users keeps the marketplace profile of identity-provider users.
package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/validate"
)

const (
	MaxNameLength  = 100
	MaxEmailLength = 254
	MaxPhoneLength = 20
)

type Service interface {
	Get(ctx context.Context, actor auth.Actor) (*ProfileDTO, error)
	Upsert(ctx context.Context, actor auth.Actor, input UpsertProfileInput) (*ProfileDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor) (*ProfileDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	profile, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(profile), nil
}

// Upsert stores the caller's profile. The role always comes from the token.
func (s *service) Upsert(ctx context.Context, actor auth.Actor, input UpsertProfileInput) (*ProfileDTO, error) {
	if actor.UserID == uuid.Nil || !actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	name := strings.TrimSpace(input.Name)
	email := validate.TrimOptional(input.Email)
	phone := validate.TrimOptional(input.Phone)

	var errs validate.Errors
	errs.Length("name", name, 1, MaxNameLength)
	if email != nil {
		errs.Length("email", *email, 1, MaxEmailLength)
		if _, err := mail.ParseAddress(*email); err != nil {
			errs.Add("email", "is not a valid address")
		}
	}
	if phone != nil {
		errs.Length("phone", *phone, 1, MaxPhoneLength)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:     actor.UserID,
		Name:   name,
		Email:  email,
		Phone:  phone,
		Role:   actor.Role,
		Status: enums.ProfileStatusActive,
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert profile")
	}
	return s.Get(ctx, actor)
}
