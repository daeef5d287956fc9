package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/elguaire/polla-settlement/internal/pool/engine"
	phttp "github.com/elguaire/polla-settlement/internal/pool/http"
	"github.com/elguaire/polla-settlement/internal/pool/producer"
	"github.com/elguaire/polla-settlement/internal/pool/repo"
	"github.com/elguaire/polla-settlement/internal/shared/cache"
	"github.com/elguaire/polla-settlement/internal/shared/config"
	"github.com/elguaire/polla-settlement/internal/shared/db"
	"github.com/elguaire/polla-settlement/internal/shared/kafka"
	"github.com/elguaire/polla-settlement/internal/shared/logger"
	"github.com/elguaire/polla-settlement/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (mutex de liquidação por evento)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writer (tópico winner_notifications)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWinnerNotifications)
	defer writer.Close()

	// deps
	store := repo.NewPostgres(pg)
	locker := engine.NewRedisLocker(rdb)
	publ := producer.NewKafkaPublisher(writer, cfg.TopicWinnerNotifications)
	eng := engine.New(log, store, locker, publ, cfg.TreasuryAccount)

	// HTTP público
	api := phttp.NewServer(log, eng)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("pool-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
