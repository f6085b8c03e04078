package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shelflife/shelflife-backend/api/controllers"
	"github.com/shelflife/shelflife-backend/api/routes"
	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/internal/auditlog"
	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/complaints"
	"github.com/shelflife/shelflife-backend/internal/discount"
	"github.com/shelflife/shelflife-backend/internal/inventory"
	"github.com/shelflife/shelflife-backend/internal/notifications"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/internal/scan"
	"github.com/shelflife/shelflife-backend/internal/shops"
	"github.com/shelflife/shelflife-backend/internal/users"
	"github.com/shelflife/shelflife-backend/internal/wishlist"
	"github.com/shelflife/shelflife-backend/pkg/bigquery"
	"github.com/shelflife/shelflife-backend/pkg/config"
	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/instance"
	"github.com/shelflife/shelflife-backend/pkg/logger"
	"github.com/shelflife/shelflife-backend/pkg/metrics"
	"github.com/shelflife/shelflife-backend/pkg/migrate"
	"github.com/shelflife/shelflife-backend/pkg/pubsub"
	"github.com/shelflife/shelflife-backend/pkg/redis"
	"github.com/shelflife/shelflife-backend/pkg/vision"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pingers := map[string]controllers.Pinger{"db": dbClient, "redis": redisClient}

	notifier, closeNotifier := buildNotifier(ctx, cfg, logg, dbClient, pingers)
	defer closeNotifier()

	gdb := dbClient.DB()
	shopRepo := shops.NewRepository(gdb)
	productRepo := product.NewRepository(gdb)
	wishlistRepo := wishlist.NewRepository(gdb)
	auditRepo := auditlog.NewRepository(gdb)
	engine := discount.NewEngine(nil)

	policy, err := authz.NewPolicy(shopRepo)
	requireResource(ctx, logg, "authorization policy", err)

	profileService, err := users.NewService(users.NewRepository(gdb))
	requireResource(ctx, logg, "profile service", err)

	shopService, err := shops.NewService(shops.ServiceParams{
		Repo:     shopRepo,
		Audit:    auditRepo,
		Tx:       dbClient,
		Authz:    policy,
		Notifier: notifier,
	})
	requireResource(ctx, logg, "shop service", err)

	productService, err := product.NewService(productRepo)
	requireResource(ctx, logg, "product service", err)

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:      inventory.NewRepository(gdb),
		Products:  productRepo,
		Shops:     shopRepo,
		Wishlists: wishlistRepo,
		Tx:        dbClient,
		Authz:     policy,
		Notifier:  notifier,
		Engine:    engine,
		Metrics:   metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	requireResource(ctx, logg, "inventory service", err)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlistRepo,
		Products:     productService,
		Authz:        policy,
	})
	requireResource(ctx, logg, "wishlist service", err)

	notificationService, err := notifications.NewService(notifications.NewRepository(gdb))
	requireResource(ctx, logg, "notification service", err)

	complaintService, err := complaints.NewService(complaints.ServiceParams{
		Repo:     complaints.NewRepository(gdb),
		Audit:    auditRepo,
		Tx:       dbClient,
		Authz:    policy,
		Notifier: notifier,
	})
	requireResource(ctx, logg, "complaint service", err)

	aggregator, err := analytics.NewAggregator(analytics.NewGormReader(gdb))
	requireResource(ctx, logg, "analytics aggregator", err)
	analyticsService, err := analytics.NewService(aggregator, policy, nil)
	requireResource(ctx, logg, "analytics service", err)

	var scanService scan.Service
	visionClient, err := vision.NewClient(cfg.Vision.APIKey,
		vision.WithBaseURL(cfg.Vision.BaseURL),
		vision.WithModel(cfg.Vision.Model),
		vision.WithTimeout(cfg.Vision.Timeout),
	)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "label scanning disabled")
	} else {
		scanService, err = scan.NewService(scan.ServiceParams{Vision: visionClient, Authz: policy, Engine: engine, Logger: logg})
		requireResource(ctx, logg, "scan service", err)
	}

	if cfg.FeatureFlags.AnalyticsSnapshot {
		bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "bigquery unavailable for readiness checks")
		} else {
			pingers["bigquery"] = bqClient
			defer bqClient.Close()
		}
	}

	router := routes.NewRouter(cfg, logg, routes.Dependencies{
		Redis:         redisClient,
		Gatherer:      prometheus.DefaultGatherer,
		Pingers:       pingers,
		Profiles:      profileService,
		Shops:         shopService,
		Products:      productService,
		Inventory:     inventoryService,
		Scan:          scanService,
		Wishlist:      wishlistService,
		Notifications: notificationService,
		Complaints:    complaintService,
		Analytics:     analyticsService,
	})

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "shelflife-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"instance":    instance.GetID(),
		"serviceKind": cfg.Service.Kind,
	})

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "api server shutdown failed", err)
		}
	}()

	logg.Info(runCtx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server shut down gracefully")
}

// buildNotifier writes notices straight to Postgres, or publishes them to
// Pub/Sub for the notification worker when that transport is enabled.
func buildNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, pingers map[string]controllers.Pinger) (notifications.Notifier, func()) {
	var sender notifications.Sender
	closeFn := func() {}

	if cfg.FeatureFlags.UsePubSubNotifications() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, pubsub.RolePublisher, logg)
		requireResource(ctx, logg, "pubsub", err)
		pingers["pubsub"] = pubsubClient
		closeFn = func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub", err)
			}
		}
		publisher, err := pubsubClient.NotificationPublisher()
		requireResource(ctx, logg, "pubsub notification publisher", err)
		pubsubSender, err := notifications.NewPubSubSender(publisher)
		requireResource(ctx, logg, "pubsub notification sender", err)
		sender = pubsubSender
	} else {
		storeSender, err := notifications.NewStoreSender(notifications.NewRepository(dbClient.DB()))
		requireResource(ctx, logg, "notification store sender", err)
		sender = storeSender
	}

	dispatcher, err := notifications.NewDispatcher(sender, logg)
	requireResource(ctx, logg, "notification dispatcher", err)
	return dispatcher, closeFn
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
