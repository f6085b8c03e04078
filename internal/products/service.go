package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpsertByNaturalKey(ctx context.Context, identity Identity) (*models.Product, bool, error)
}

// Service exposes catalog lookups outside a transaction.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Upsert(ctx context.Context, identity Identity) (*ProductDTO, error)
}

type service struct {
	repo productRepository
}

func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) Upsert(ctx context.Context, identity Identity) (*ProductDTO, error) {
	identity.Normalize()
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	product, _, err := s.repo.UpsertByNaturalKey(ctx, identity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
	}
	return NewProductDTO(product), nil
}
