package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shelflife/shelflife-backend/internal/analytics"
	"github.com/shelflife/shelflife-backend/internal/analytics/writer"
	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/cron"
	"github.com/shelflife/shelflife-backend/internal/inventory"
	"github.com/shelflife/shelflife-backend/internal/notifications"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/internal/shops"
	"github.com/shelflife/shelflife-backend/internal/wishlist"
	"github.com/shelflife/shelflife-backend/pkg/bigquery"
	"github.com/shelflife/shelflife-backend/pkg/config"
	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/instance"
	"github.com/shelflife/shelflife-backend/pkg/logger"
	"github.com/shelflife/shelflife-backend/pkg/metrics"
	"github.com/shelflife/shelflife-backend/pkg/migrate"
	"github.com/shelflife/shelflife-backend/pkg/redis"
)

const lockKeyFormat = "cron-worker:lock:%s"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	only := flag.String("job", "", "comma separated job names to run with -once")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	jobs, closeJobs, err := buildJobs(ctx, cfg, logg, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to build cron jobs", err)
		os.Exit(1)
	}
	defer closeJobs()

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(jobs...)
	if err != nil {
		logg.Error(ctx, "failed to register cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	if *once {
		logg.Info(runCtx, "running cron cycle once")
		if err := service.RunOnce(runCtx, splitJobs(*only)...); err != nil {
			logg.Error(runCtx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(runCtx, "starting cron worker")
	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "cron worker shutting down gracefully")
}

func buildJobs(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client) ([]cron.Job, func(), error) {
	gdb := dbClient.DB()
	closeFn := func() {}

	shopRepo := shops.NewRepository(gdb)
	policy, err := authz.NewPolicy(shopRepo)
	if err != nil {
		return nil, closeFn, err
	}
	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:      inventory.NewRepository(gdb),
		Products:  product.NewRepository(gdb),
		Shops:     shopRepo,
		Wishlists: wishlist.NewRepository(gdb),
		Tx:        dbClient,
		Authz:     policy,
		Logger:    logg,
	})
	if err != nil {
		return nil, closeFn, err
	}

	expiryJob, err := cron.NewBatchExpiryJob(logg, inventoryService)
	if err != nil {
		return nil, closeFn, err
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notifications.NewRepository(gdb),
		Retention:  cfg.Cron.NotificationRetention,
		ChunkSize:  cfg.Cron.NotificationPurgeSize,
	})
	if err != nil {
		return nil, closeFn, err
	}
	jobs := []cron.Job{expiryJob, cleanupJob}

	if !cfg.FeatureFlags.AnalyticsSnapshot {
		return jobs, closeFn, nil
	}

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		return nil, closeFn, fmt.Errorf("bigquery client: %w", err)
	}
	closeFn = func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(ctx, "error closing bigquery", err)
		}
	}
	snapshotWriter, err := writer.New(bqClient, writer.Config{SnapshotTable: cfg.BigQuery.SnapshotTable})
	if err != nil {
		return nil, closeFn, err
	}
	created, err := snapshotWriter.Prepare(ctx)
	if err != nil {
		return nil, closeFn, fmt.Errorf("preparing snapshot table: %w", err)
	}
	if created {
		logg.Info(logg.WithField(ctx, "table", cfg.BigQuery.SnapshotTable), "created snapshot table")
	}
	aggregator, err := analytics.NewAggregator(analytics.NewGormReader(gdb))
	if err != nil {
		return nil, closeFn, err
	}
	snapshotJob, err := cron.NewAnalyticsSnapshotJob(cron.AnalyticsSnapshotJobParams{
		Logger:  logg,
		Builder: aggregator,
		Sink:    snapshotWriter,
	})
	if err != nil {
		return nil, closeFn, err
	}
	return append(jobs, snapshotJob), closeFn, nil
}

func splitJobs(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
