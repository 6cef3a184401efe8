// cmd/admin-api/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vyapara-admin/internal/common/aws"
	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/database"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/common/storage"
	"vyapara-admin/internal/decision"
	"vyapara-admin/internal/docs"
	"vyapara-admin/internal/gateway"
	"vyapara-admin/internal/search"
	"vyapara-admin/internal/server"
	"vyapara-admin/internal/stats"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "path to a config file, overrides the search path")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting admin api...")

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional search mirror) with retry ---
	var searchIndex *search.Index
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		searchIndex = search.NewIndex(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch disabled, list search uses SQL")
	}

	// --- Init Object Storage with retry ---
	var store *storage.Client
	err = retryWithBackoff(func() error {
		var err error
		store, err = storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		return store.EnsureBucket(ctx)
	}, 10, 2*time.Second, zapLog, "Object storage connection")

	if err != nil {
		zapLog.Fatal("object storage failed after retries", zap.Error(err))
	}
	zapLog.Info("Object storage connected successfully")

	// --- Init Notification Clients ---
	var notifier *decision.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		var email *aws.SESClient
		var sms *aws.SNSClient
		if cfg.Notifications.Email.Enabled {
			if email, err = aws.NewSESClient(ctx, cfg.Notifications.AWS.Region); err != nil {
				zapLog.Fatal("ses client failed", zap.Error(err))
			}
		}
		if cfg.Notifications.SMS.Enabled {
			if sms, err = aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region); err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
		}
		notifier = decision.NewNotifier(email, sms, cfg.Notifications, log)
		zapLog.Info("Notification clients initialized")
	}

	// --- Wire Services ---
	gw := gateway.New(pg.DB, cfg.Review, log)
	statsService := stats.NewService(gw, cfg.Review, log)
	guard := decision.NewGuard(redisClient, cfg.Review, log)
	decisions := decision.NewService(gw, guard, notifier, cfg.Review, log)
	documents := docs.NewService(store, cfg.Review, log)

	deps := server.Deps{
		Gateway:    gw,
		Statistics: statsService,
		Decisions:  decisions,
		Documents:  documents,
		Health: []server.HealthCheck{
			{Name: "postgres", Check: pg.Ping},
			{Name: "redis", Check: redisClient.Ping},
		},
	}
	if searchIndex != nil {
		deps.Search = searchIndex
		deps.Health = append(deps.Health, server.HealthCheck{
			Name:  "elasticsearch",
			Check: func(ctx context.Context) error { return esClient.Ping() },
		})
	}

	srv := server.New(cfg.Server, cfg.Review, deps, log)

	// --- Graceful Shutdown ---
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(runCtx, 15*time.Second); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("Shutdown complete")
}
