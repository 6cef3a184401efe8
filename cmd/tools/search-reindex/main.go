// cmd/tools/search-reindex/main.go
//
// Rebuilds the Elasticsearch search mirror from PostgreSQL. Run after
// enabling the mirror on an existing database, or to repair drift.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/database"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/gateway"
	"vyapara-admin/internal/search"
)

func main() {
	batchSize := flag.Int("batch", 500, "applications per indexing batch")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if !cfg.Database.Elasticsearch.Enabled {
		zapLog.Fatal("elasticsearch is disabled in config, nothing to reindex")
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch connection failed", zap.Error(err))
	}

	gw := gateway.New(pg.DB, cfg.Review, log)
	index := search.NewIndex(esClient.Client, cfg.Database.Elasticsearch.Index, log)

	start := time.Now()
	indexed, failed := 0, 0
	offset := 0
	for {
		result, err := gw.List(ctx, gateway.Filter{
			SortBy: "created_at", SortOrder: "asc",
		}.WithPage(*batchSize, offset))
		if err != nil {
			zapLog.Fatal("listing applications failed", zap.Error(err))
		}
		if len(result.Records) == 0 {
			break
		}

		for _, app := range result.Records {
			if err := index.IndexApplication(ctx, app); err != nil {
				failed++
				zapLog.Warn("indexing failed", zap.String("id", app.ID), zap.Error(err))
				continue
			}
			indexed++
		}
		offset += len(result.Records)
	}

	zapLog.Info("reindex complete",
		zap.Int("indexed", indexed),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
