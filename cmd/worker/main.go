package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/adapters/event"
	"github.com/khoahotran/codejourney/adapters/media_storage"
	"github.com/khoahotran/codejourney/adapters/persistence"
	"github.com/khoahotran/codejourney/internal/application/service"
	workerUC "github.com/khoahotran/codejourney/internal/application/usecase/lookup"
	"github.com/khoahotran/codejourney/internal/config"
	"github.com/khoahotran/codejourney/pkg/logger"
	"github.com/khoahotran/codejourney/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting CodeJourney Worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "codejourney-worker")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Database
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Cloudinary Uploader. Snapshots are optional.
	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize uploader", err)
		}
	} else {
		appLogger.Warn("Cloudinary not configured, card snapshots are disabled")
	}

	// Repositories
	lookupRepo := persistence.NewPostgresLookupRepo(dbPool, appLogger)

	// Worker Use Case
	processLookupEventUC := workerUC.NewProcessLookupEventUseCase(lookupRepo, uploader, appLogger)

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("cannot start worker", errors.New("config Kafka brokers not found"))
	}

	// Kafka Consumer
	lookupConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicLookupEvents,
		GroupID:  event.LookupProcessorGroup,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer lookupConsumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicLookupEvents))

	for {
		msg, err := lookupConsumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		l := appLogger.With(zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.String("key", string(msg.Key)))

		payload, err := event.DecodeLookupEvent(msg)
		if err != nil {
			l.Error("Failed to decode lookup event, skipping", err)
			commitMessage(lookupConsumer, msg, l)
			continue
		}

		if err := processLookupEventUC.Execute(ctx, payload); err != nil {
			l.Error("Failed to process lookup event", err, zap.String("lookup_id", payload.LookupID.String()))
			continue
		}

		commitMessage(lookupConsumer, msg, l)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
