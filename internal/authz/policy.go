// Package authz is the single place that decides who may do what.
package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

type Action string

const (
	ActionCreateShop        Action = "shop.create"
	ActionManageShop        Action = "shop.manage"
	ActionScanLabel         Action = "scan.extract"
	ActionPurchase          Action = "batch.purchase"
	ActionManageWishlist    Action = "wishlist.manage"
	ActionFileComplaint     Action = "complaint.file"
	ActionVerifyShop        Action = "shop.verify"
	ActionSuspendShop       Action = "shop.suspend"
	ActionListShops         Action = "shop.list"
	ActionModerateComplaint Action = "complaint.moderate"
	ActionViewAnalytics     Action = "analytics.view"
)

type rule struct {
	role enums.UserRole
	// ownsShop requires the actor to own Resource.ShopID.
	ownsShop bool
}

var rules = map[Action]rule{
	ActionCreateShop:        {role: enums.UserRoleShopkeeper},
	ActionManageShop:        {role: enums.UserRoleShopkeeper, ownsShop: true},
	ActionScanLabel:         {role: enums.UserRoleShopkeeper},
	ActionPurchase:          {role: enums.UserRoleCustomer},
	ActionManageWishlist:    {role: enums.UserRoleCustomer},
	ActionFileComplaint:     {role: enums.UserRoleCustomer},
	ActionVerifyShop:        {role: enums.UserRoleAdmin},
	ActionSuspendShop:       {role: enums.UserRoleAdmin},
	ActionListShops:         {role: enums.UserRoleAdmin},
	ActionModerateComplaint: {role: enums.UserRoleAdmin},
	ActionViewAnalytics:     {role: enums.UserRoleAdmin},
}

// Resource identifies what an action targets.
type Resource struct {
	ShopID uuid.UUID
}

// ShopOwners resolves the owner of a shop.
type ShopOwners interface {
	OwnerOf(ctx context.Context, shopID uuid.UUID) (uuid.UUID, error)
}

// Authorizer is what services depend on.
type Authorizer interface {
	Authorize(ctx context.Context, actor auth.Actor, action Action, resource Resource) error
}

type Policy struct {
	shops ShopOwners
}

func NewPolicy(shops ShopOwners) (*Policy, error) {
	if shops == nil {
		return nil, fmt.Errorf("shop owner lookup required")
	}
	return &Policy{shops: shops}, nil
}

// Authorize returns nil when actor may perform action on resource and a
// FORBIDDEN error otherwise. Lookup failures surface as they are.
func (p *Policy) Authorize(ctx context.Context, actor auth.Actor, action Action, resource Resource) error {
	r, ok := rules[action]
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeForbidden, "unknown action %s", action)
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.Role != r.role {
		return pkgerrors.Newf(pkgerrors.CodeForbidden, "%s role required", r.role)
	}
	if !r.ownsShop {
		return nil
	}
	if resource.ShopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	owner, err := p.shops.OwnerOf(ctx, resource.ShopID)
	if err != nil {
		return err
	}
	if owner != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop belongs to another user")
	}
	return nil
}
