package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/handler"
	"orderdesk/internal/infra/db"
	"orderdesk/internal/infra/events"
	infraRepo "orderdesk/internal/infra/repository"
	"orderdesk/internal/observability"
	"orderdesk/internal/server"
	"orderdesk/internal/usecase"

	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//イベント送信（RABBITMQ_URL が空なら無効）
	var publisher usecase.EventPublisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		logger.Info("order events enabled", zap.String("exchange", cfg.RabbitMQExchange))
	}

	txm := infraRepo.NewTxManagerGorm(gormDB)
	orderUC := usecase.NewOrderUsecase(txm, publisher, &realClock{}, logger)
	orderH := handler.NewOrderHandler(orderUC)

	e := server.New(logger, orderH)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, e, cfg.Addr(), cfg.ShutdownTimeout, logger)
}
