package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/internal/authz"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
)

type productLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	Products     productLookup
	Authz        authz.Authorizer
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, actor auth.Actor, cursor string, limit int) (WishlistPageDTO, error)
	AddItem(ctx context.Context, actor auth.Actor, productID uuid.UUID) error
	RemoveItem(ctx context.Context, actor auth.Actor, productID uuid.UUID) error
}

type service struct {
	repo     *Repository
	products productLookup
	authz    authz.Authorizer
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product lookup is required")
	}
	if params.Authz == nil {
		return nil, fmt.Errorf("authorizer is required")
	}
	return &service{
		repo:     params.WishlistRepo,
		products: params.Products,
		authz:    params.Authz,
	}, nil
}

func (s *service) GetWishlist(ctx context.Context, actor auth.Actor, cursor string, limit int) (WishlistPageDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionManageWishlist, authz.Resource{}); err != nil {
		return WishlistPageDTO{}, err
	}
	decoded, err := pagination.Decode(cursor)
	if err != nil {
		return WishlistPageDTO{}, err
	}
	page, err := s.repo.ListItems(ctx, actor.UserID, decoded, limit)
	if err != nil {
		return WishlistPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return page, nil
}

// AddItem is idempotent; the product must exist.
func (s *service) AddItem(ctx context.Context, actor auth.Actor, productID uuid.UUID) error {
	if err := s.authz.Authorize(ctx, actor, authz.ActionManageWishlist, authz.Resource{}); err != nil {
		return err
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.AddItem(ctx, actor.UserID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, actor auth.Actor, productID uuid.UUID) error {
	if err := s.authz.Authorize(ctx, actor, authz.ActionManageWishlist, authz.Resource{}); err != nil {
		return err
	}
	if err := s.repo.RemoveItem(ctx, actor.UserID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}
