package main

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/elguaire/polla-settlement/internal/notification"
	"github.com/elguaire/polla-settlement/internal/shared/config"
	"github.com/elguaire/polla-settlement/internal/shared/kafka"
	"github.com/elguaire/polla-settlement/internal/shared/logger"
	"github.com/elguaire/polla-settlement/internal/shared/metrics"
	ev "github.com/elguaire/polla-settlement/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Kafka consumer: consome winner_notifications publicado pelo pool-service
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicWinnerNotifications, "notification-worker")
	defer reader.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicWinnerNotificationsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWinnerNotificationsDLQ)
		defer dlqWriter.Close()
	}

	sender := notification.NewLogSender(log)

	// Servidor HTTP para métricas Prometheus e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("notification-worker started", zap.String("consume", cfg.TopicWinnerNotifications))

	ctx := context.Background()

	// Loop principal: consome notificações e entrega best-effort.
	// Falha de entrega nunca volta para o pool-service; depois de 3
	// tentativas a mensagem vai para a DLQ.
	for {
		key, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var winner ev.WinnerNotified
		if jerr := json.Unmarshal(value, &winner); jerr != nil {
			log.Error("unmarshal winner_notified", zap.Error(jerr))
			continue
		}

		if err := deliver(ctx, sender, &winner); err != nil {
			log.Error("deliver notification",
				zap.String("userId", winner.UserID),
				zap.String("eventId", winner.EventID),
				zap.Error(err),
			)
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(key), value)
			}
		}
	}
}

// deliver tenta a entrega com retry simples antes de desistir.
func deliver(ctx context.Context, sender notification.Sender, winner *ev.WinnerNotified) error {
	const retries = 3
	var err error
	for i := 0; i < retries; i++ {
		if err = sender.Send(ctx, *winner); err == nil {
			return nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return err
}
