// Package reminder собирает фоновый процесс напоминаний об истечении
// водительских удостоверений.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/rental-portal/internal/config"
	"github.com/magabrotheeeer/rental-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	reminderservice "github.com/magabrotheeeer/rental-portal/internal/services/reminder"
	"github.com/magabrotheeeer/rental-portal/internal/storage"
)

// App представляет приложение напоминаний.
type App struct {
	service *reminderservice.Service
	db      *storage.Storage
	conn    *amqp.Connection
	ch      *amqp.Channel
	logger  *slog.Logger
}

func waitForDB(ctx context.Context, db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New подключает брокер и базу. Схему создаёт HTTP API портала, здесь
// только ожидается её появление.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("rabbitmq url is required for reminders")
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetTopology())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	publisher := rabbitmq.NewPublisher(ch, rabbitmq.ExchangeNotifications)
	service := reminderservice.New(db, publisher, logger, cfg.WindowDays, cfg.Interval)

	return &App{
		service: service,
		db:      db,
		conn:    conn,
		ch:      ch,
		logger:  logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run сканирует удостоверения до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.service.Run(ctx)

	a.logger.Info("shutting down license reminder")
	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
