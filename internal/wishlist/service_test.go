package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/internal/authz"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/db/dbtest"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

type noShops struct{}

func (noShops) OwnerOf(context.Context, uuid.UUID) (uuid.UUID, error) { return uuid.Nil, nil }

func newTestService(t *testing.T) (Service, *Repository, product.Service, *product.Repository) {
	t.Helper()
	client := dbtest.Open(t)
	productRepo := product.NewRepository(client.DB())
	products, err := product.NewService(productRepo)
	require.NoError(t, err)
	policy, err := authz.NewPolicy(noShops{})
	require.NoError(t, err)
	repo := NewRepository(client.DB())
	svc, err := NewService(ServiceParams{WishlistRepo: repo, Products: products, Authz: policy})
	require.NoError(t, err)
	return svc, repo, products, productRepo
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	svc, repo, products, _ := newTestService(t)
	ctx := context.Background()
	customer := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}

	p, err := products.Upsert(ctx, product.Identity{Name: "Milk", Category: "dairy", MRP: decimal.NewFromInt(30)})
	require.NoError(t, err)

	require.NoError(t, svc.AddItem(ctx, customer, p.ID))
	require.NoError(t, svc.AddItem(ctx, customer, p.ID))

	page, err := svc.GetWishlist(ctx, customer, "", 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Milk", page.Items[0].Product.Name)

	ids, err := repo.CustomersForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{customer.UserID}, ids)

	require.NoError(t, svc.RemoveItem(ctx, customer, p.ID))
	page, err = svc.GetWishlist(ctx, customer, "", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestWishlistUnknownProduct(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	customer := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	err := svc.AddItem(context.Background(), customer, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestWishlistPagination(t *testing.T) {
	svc, _, products, _ := newTestService(t)
	ctx := context.Background()
	customer := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	for _, name := range []string{"Bread", "Butter", "Jam"} {
		p, err := products.Upsert(ctx, product.Identity{Name: name, Category: "bakery", MRP: decimal.NewFromInt(40)})
		require.NoError(t, err)
		require.NoError(t, svc.AddItem(ctx, customer, p.ID))
	}

	first, err := svc.GetWishlist(ctx, customer, "", 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.GetWishlist(ctx, customer, first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	_, err = svc.GetWishlist(ctx, customer, "not-base64!", 2)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestWishlistRequiresCustomer(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	admin := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	_, err := svc.GetWishlist(context.Background(), admin, "", 0)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}
