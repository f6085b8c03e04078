// Package inventory owns the batch lifecycle: stocking with an expiry-driven
// discount, atomic purchase, and the expiry sweep.
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/discount"
	"github.com/shelflife/shelflife-backend/internal/notifications"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/logger"
	"github.com/shelflife/shelflife-backend/pkg/metrics"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
	"github.com/shelflife/shelflife-backend/pkg/validate"
)

const (
	MaxQuantity        = 100_000
	MaxBatchCodeLength = 50
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type shopLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

type wishlisters interface {
	CustomersForProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
}

// Service exposes the batch lifecycle.
type Service interface {
	CreateBatch(ctx context.Context, actor auth.Actor, shopID uuid.UUID, input CreateBatchInput) (*BatchDTO, error)
	Purchase(ctx context.Context, actor auth.Actor, batchID uuid.UUID, quantity int) (*Receipt, error)
	ListShopBatches(ctx context.Context, actor auth.Actor, shopID uuid.UUID) ([]BatchDTO, error)
	ListAvailable(ctx context.Context, filter FeedFilter) (*FeedPage, error)
	ExpireDue(ctx context.Context) (int64, error)
}

type ServiceParams struct {
	Repo      *Repository
	Products  *product.Repository
	Shops     shopLookup
	Wishlists wishlisters
	Tx        txRunner
	Authz     authz.Authorizer
	Notifier  notifications.Notifier
	Engine    *discount.Engine
	Metrics   *metrics.CheckoutMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	products  *product.Repository
	shops     shopLookup
	wishlists wishlisters
	tx        txRunner
	authz     authz.Authorizer
	notifier  notifications.Notifier
	engine    *discount.Engine
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
}

func NewService(p ServiceParams) (Service, error) {
	switch {
	case p.Repo == nil:
		return nil, fmt.Errorf("batch repository required")
	case p.Products == nil:
		return nil, fmt.Errorf("product repository required")
	case p.Shops == nil:
		return nil, fmt.Errorf("shop lookup required")
	case p.Wishlists == nil:
		return nil, fmt.Errorf("wishlist lookup required")
	case p.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case p.Authz == nil:
		return nil, fmt.Errorf("authorizer required")
	}
	if p.Notifier == nil {
		p.Notifier = notifications.NopNotifier{}
	}
	if p.Engine == nil {
		p.Engine = discount.NewEngine(nil)
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &service{
		repo:      p.Repo,
		products:  p.Products,
		shops:     p.Shops,
		wishlists: p.Wishlists,
		tx:        p.Tx,
		authz:     p.Authz,
		notifier:  p.Notifier,
		engine:    p.Engine,
		metrics:   p.Metrics,
		logg:      p.Logger,
	}, nil
}

type validatedBatch struct {
	identity product.Identity
	code     string
	quantity int
	expiry   time.Time
	received time.Time
}

// validateBatch checks a create request without touching storage and
// returns the normalized values. Every violated rule is reported.
func validateBatch(input CreateBatchInput, today time.Time) (validatedBatch, error) {
	out := validatedBatch{
		identity: input.Product,
		code:     strings.TrimSpace(input.BatchCode),
		quantity: input.Quantity,
		received: today,
	}
	out.identity.Normalize()

	errs := out.identity.Violations()
	errs.Length("batch_code", out.code, 1, MaxBatchCodeLength)
	errs.IntRange("quantity", input.Quantity, 1, MaxQuantity)

	expiry, err := discount.ParseDate(input.ExpiryDate)
	if err != nil {
		errs.Add("expiry_date", "must be a date formatted YYYY-MM-DD")
	}
	out.expiry = expiry

	if input.ReceivedDate != nil && strings.TrimSpace(*input.ReceivedDate) != "" {
		received, err := discount.ParseDate(*input.ReceivedDate)
		if err != nil {
			errs.Add("received_date", "must be a date formatted YYYY-MM-DD")
		}
		out.received = received
	}
	return out, errs.Err()
}

// CreateBatch stocks a new active batch. The product is resolved by natural
// key and the batch inserted in one transaction; the discount is fixed from
// the engine clock at this moment.
func (s *service) CreateBatch(ctx context.Context, actor auth.Actor, shopID uuid.UUID, input CreateBatchInput) (*BatchDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionManageShop, authz.Resource{ShopID: shopID}); err != nil {
		return nil, err
	}
	now := s.engine.Now().UTC()
	v, err := validateBatch(input, startOfDay(now))
	if err != nil {
		return nil, err
	}
	percent, err := discount.Compute(v.expiry, now)
	if err != nil {
		return nil, err
	}

	var batch *models.InventoryBatch
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		p, _, err := s.products.WithTx(tx).UpsertByNaturalKey(ctx, v.identity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
		}
		batch = &models.InventoryBatch{
			ShopID:          shopID,
			ProductID:       p.ID,
			BatchCode:       v.code,
			Quantity:        v.quantity,
			ReceivedDate:    v.received,
			ExpiryDate:      v.expiry,
			MRP:             v.identity.MRP,
			DiscountPercent: percent,
			Status:          enums.BatchStatusActive,
		}
		if err := s.repo.WithTx(tx).Create(ctx, batch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create batch")
		}
		batch.Product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if percent > 0 {
		s.notifyWishlisters(ctx, batch)
	}
	return NewBatchDTO(batch), nil
}

func (s *service) notifyWishlisters(ctx context.Context, batch *models.InventoryBatch) {
	shop, err := s.shops.FindByID(ctx, batch.ShopID)
	if err != nil || !shop.Listed() {
		return
	}
	customers, err := s.wishlists.CustomersForProduct(ctx, batch.ProductID)
	if err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"batch_id": batch.ID.String(), "error": err.Error()})
		s.logg.Warn(ctx, "wishlist lookup failed")
		return
	}
	if len(customers) == 0 {
		return
	}
	name := batch.Product.Name
	productID, batchID := batch.ProductID, batch.ID
	notices := make([]notifications.Notice, 0, len(customers))
	for _, customerID := range customers {
		notices = append(notices, notifications.Notice{
			UserID:           customerID,
			Type:             enums.NotificationTypeWishlistDiscount,
			Title:            fmt.Sprintf("%s is %d%% off", name, batch.DiscountPercent),
			Message:          fmt.Sprintf("%s now sells %s for %s.", shop.Name, name, batch.UnitPrice().StringFixed(2)),
			RelatedProductID: &productID,
			RelatedBatchID:   &batchID,
		})
	}
	s.notifier.Notify(ctx, notices...)
}

// Purchase takes quantity units from a batch and records the transaction.
// The decrement and the insert commit together or not at all.
func (s *service) Purchase(ctx context.Context, actor auth.Actor, batchID uuid.UUID, quantity int) (*Receipt, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionPurchase, authz.Resource{}); err != nil {
		return nil, err
	}
	var errs validate.Errors
	if batchID == uuid.Nil {
		errs.Add("batch_id", "is required")
	}
	errs.IntRange("quantity", quantity, 1, MaxQuantity)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	now := s.engine.Now().UTC()
	today := startOfDay(now)
	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.Decrement(ctx, batchID, quantity, today)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement batch")
		}
		batch, err := repo.FindByID(ctx, batchID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "batch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch")
		}
		if !ok {
			return purchaseRejection(batch, quantity, today)
		}

		txn := &models.Transaction{
			CustomerID: actor.UserID,
			ShopID:     batch.ShopID,
			ProductID:  batch.ProductID,
			BatchID:    batch.ID,
			Quantity:   quantity,
			Price:      batch.UnitPrice(),
			Timestamp:  now,
		}
		if err := repo.InsertTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
		}
		receipt = &Receipt{Transaction: NewTransactionDTO(txn), Batch: *NewBatchDTO(batch)}
		return nil
	})
	s.metrics.Observe(purchaseOutcome(err), quantity)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// purchaseRejection explains why the conditional decrement matched no row.
func purchaseRejection(batch *models.InventoryBatch, quantity int, today time.Time) error {
	switch {
	case batch.Status == enums.BatchStatusSoldOut:
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "batch is sold out").
			WithDetails(map[string]any{"available": 0, "requested": quantity})
	case !batch.Status.Purchasable():
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "batch is %s", batch.Status)
	case batch.ExpiryDate.Before(today):
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "batch expired on %s", batch.ExpiryDate.Format(time.DateOnly))
	case batch.Shop == nil || !batch.Shop.Listed():
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shop is not accepting orders")
	default:
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
			WithDetails(map[string]any{"available": batch.Quantity, "requested": quantity})
	}
}

func purchaseOutcome(err error) string {
	switch pkgerrors.CodeOf(err) {
	case "":
		return metrics.OutcomeSuccess
	case pkgerrors.CodeOutOfStock:
		return metrics.OutcomeOutOfStock
	case pkgerrors.CodeStateConflict, pkgerrors.CodeNotFound:
		return metrics.OutcomeInvalidState
	default:
		return metrics.OutcomeError
	}
}

func (s *service) ListShopBatches(ctx context.Context, actor auth.Actor, shopID uuid.UUID) ([]BatchDTO, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionManageShop, authz.Resource{ShopID: shopID}); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batches")
	}
	out := make([]BatchDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewBatchDTO(&rows[i]))
	}
	return out, nil
}

// ListAvailable is the customer feed.
func (s *service) ListAvailable(ctx context.Context, filter FeedFilter) (*FeedPage, error) {
	cursor, err := pagination.Decode(filter.Cursor)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now().UTC()
	rows, err := s.repo.ListAvailable(ctx, startOfDay(now), filter, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available batches")
	}

	page := &FeedPage{}
	rows, page.NextCursor = pagination.Split(rows, filter.Limit, func(b models.InventoryBatch) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	})
	page.Items = make([]ListingDTO, 0, len(rows))
	for i := range rows {
		page.Items = append(page.Items, newListingDTO(&rows[i], now))
	}
	return page, nil
}

func newListingDTO(b *models.InventoryBatch, now time.Time) ListingDTO {
	listing := ListingDTO{
		BatchDTO:     *NewBatchDTO(b),
		DaysToExpiry: discount.DaysToExpiry(b.ExpiryDate, now),
	}
	if b.Shop != nil {
		listing.ShopName = b.Shop.Name
		listing.ShopAddress = b.Shop.Address
		listing.ShopLatitude = b.Shop.Latitude
		listing.ShopLongitude = b.Shop.Longitude
	}
	return listing
}

// ExpireDue flips active batches past their expiry date to expired.
func (s *service) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireDue(ctx, startOfDay(s.engine.Now().UTC()))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire batches")
	}
	return n, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
