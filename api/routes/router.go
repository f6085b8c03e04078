package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelflife/shelflife-backend/api/controllers"
	"github.com/shelflife/shelflife-backend/api/middleware"
	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/internal/complaints"
	"github.com/shelflife/shelflife-backend/internal/inventory"
	"github.com/shelflife/shelflife-backend/internal/notifications"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/internal/scan"
	"github.com/shelflife/shelflife-backend/internal/shops"
	"github.com/shelflife/shelflife-backend/internal/users"
	"github.com/shelflife/shelflife-backend/internal/wishlist"
	"github.com/shelflife/shelflife-backend/pkg/config"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

// RedisStore is the Redis surface used by idempotency and rate limiting.
type RedisStore interface {
	middleware.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Dependencies carries everything the router mounts. Nil services answer 500
// and nil pingers are skipped by readiness.
type Dependencies struct {
	Redis    RedisStore
	Gatherer prometheus.Gatherer
	Pingers  map[string]controllers.Pinger

	Profiles      users.Service
	Shops         shops.Service
	Products      product.Service
	Inventory     inventory.Service
	Scan          scan.Service
	Wishlist      wishlist.Service
	Notifications notifications.Service
	Complaints    complaints.Service
	Analytics     analytics.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	var idempotencyStore middleware.IdempotencyStore
	var scanLimiter func(http.Handler) http.Handler
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		scanPolicy := middleware.NewRateLimitPolicy("scan", cfg.Vision.RateWindow, cfg.Vision.RateLimit)
		scanLimiter = middleware.RateLimit(scanPolicy, deps.Redis, logg)
	} else {
		scanLimiter = middleware.RateLimit(middleware.RateLimitPolicy{}, nil, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.CheckoutTTL, logg))

		r.Get("/profile", controllers.ProfileGet(deps.Profiles, logg))
		r.Put("/profile", controllers.ProfileUpsert(deps.Profiles, logg))

		r.Route("/shopkeeper", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleShopkeeper))
			r.Post("/shop", controllers.ShopCreate(deps.Shops, logg))
			r.Get("/shop", controllers.ShopMine(deps.Shops, logg))
			r.Post("/shop/open", controllers.ShopSetOpen(deps.Shops, logg))
			r.Post("/batches", controllers.ShopkeeperBatchCreate(deps.Shops, deps.Inventory, logg))
			r.Get("/batches", controllers.ShopkeeperBatchList(deps.Shops, deps.Inventory, logg))
			r.With(scanLimiter).Post("/scan", controllers.ShopkeeperScan(deps.Scan, logg))
		})

		r.Get("/batches", controllers.BatchFeed(deps.Inventory, logg))
		r.Get("/products/{productId}", controllers.ProductGet(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleCustomer))
			r.Post("/checkout", controllers.Checkout(deps.Inventory, logg))
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
				r.Post("/", controllers.WishlistAdd(deps.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Post("/", controllers.ComplaintFile(deps.Complaints, logg))
			r.Get("/", controllers.ComplaintListMine(deps.Complaints, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.CheckoutTTL, logg))

		r.Get("/analytics", controllers.AdminAnalytics(deps.Analytics, logg))

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", controllers.AdminShopList(deps.Shops, logg))
			r.Post("/{shopId}/verification", controllers.AdminShopVerify(deps.Shops, logg))
			r.Post("/{shopId}/suspend", controllers.AdminShopSuspend(deps.Shops, logg))
			r.Post("/{shopId}/unsuspend", controllers.AdminShopUnsuspend(deps.Shops, logg))
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", controllers.AdminComplaintList(deps.Complaints, logg))
			r.Post("/{complaintId}/review", controllers.AdminComplaintReview(deps.Complaints, logg))
			r.Post("/{complaintId}/resolve", controllers.AdminComplaintResolve(deps.Complaints, logg))
			r.Post("/{complaintId}/reject", controllers.AdminComplaintReject(deps.Complaints, logg))
		})
	})

	return r
}
