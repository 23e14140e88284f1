package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playhub/arena/internal/guard"
	"github.com/playhub/arena/internal/infra"
	"github.com/playhub/arena/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox relay failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.OutboxPollInterval <= 0 || cfg.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL and OUTBOX_BATCH_SIZE must be positive")
	}
	logger = cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-relay connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	// Five consecutive failures on a topic pause it for 30s.
	publisher := guard.NewBreakerPublisher(producer, guard.NewCircuitBreaker(5, 30*time.Second))
	store := repository.NewOutboxStore(repository.NewOutboxRepository(), pool)
	relay := infra.NewOutboxRelay(store, publisher, cfg.OutboxBatchSize, logger)

	sched, err := infra.NewScheduler(ctx, logger, infra.Job{
		Name:     "outbox-relay",
		Interval: cfg.OutboxPollInterval,
		Run: func(ctx context.Context) error {
			n, err := relay.RunOnce(ctx)
			if n > 0 {
				logger.Info("processed outbox batch", "count", n)
			}
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	logger.Info("outbox-relay starting",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"kafka_enabled", producer.Enabled(),
	)
	sched.Start()

	<-ctx.Done()
	logger.Info("outbox-relay shutting down")
	return sched.Shutdown()
}
