package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/rental-portal/internal/cache"
	"github.com/magabrotheeeer/rental-portal/internal/config"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/health"
	"github.com/magabrotheeeer/rental-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/rental-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/metrics"
	"github.com/magabrotheeeer/rental-portal/internal/migrations"
	"github.com/magabrotheeeer/rental-portal/internal/platform"
	authservice "github.com/magabrotheeeer/rental-portal/internal/services/auth"
	dashboardservice "github.com/magabrotheeeer/rental-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/rental-portal/internal/services/documents"
	fleetservice "github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	profileservice "github.com/magabrotheeeer/rental-portal/internal/services/profile"
	"github.com/magabrotheeeer/rental-portal/internal/services/viewer"
	"github.com/magabrotheeeer/rental-portal/internal/storage"
)

// tokenTTL срок жизни токенов, выпускаемых локально. Токены платформы
// несут собственный exp.
const tokenTTL = time.Hour

// App HTTP API портала и его ресурсы.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает базу, Redis и брокер, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	app := &App{logger: logger, db: db, cache: cacheRedis}

	var documentEvents documents.Publisher = rabbitmq.Nop{}
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetTopology())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
		app.ch = ch
		documentEvents = rabbitmq.NewPublisher(ch, rabbitmq.ExchangeDocuments)
	} else {
		logger.Warn("rabbitmq url is empty, document events are disabled")
	}

	client := platform.NewClient(cfg.Platform.URL, cfg.AnonKey, cfg.Platform.Timeout)
	objects := platform.NewObjects(client)

	var records profileservice.Store = platform.NewRecords(client, "clients", "user_id")
	if cfg.Records.Backend == "postgres" {
		records = db
	}
	logger.Info("profile records backend selected", slog.String("backend", cfg.Records.Backend))

	m := metrics.New(prometheus.DefaultRegisterer)
	fleet := fleetservice.New(db, objects, cacheRedis, logger, cfg.FleetBucket, dashboardservice.CacheKey)

	svc := Services{
		Auth:      authservice.New(platform.NewAuth(client), logger, cfg.PublicURL),
		Profiles:  profileservice.New(records, logger),
		Uploader:  documents.NewUploader(objects, records, documentEvents, m, logger, cfg.Bucket, cfg.MaxUploadSize),
		Viewer:    viewer.New(objects, m, logger, cfg.Bucket, cfg.SignedURLTTL),
		Fleet:     fleet,
		Dashboard: dashboardservice.New(db, cacheRedis, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, Options{
		Tokens:        jwt.NewJWTMaker(cfg.JWTSecret, tokenTTL),
		AuthLimiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		MaxUploadSize: cfg.MaxUploadSize,
		HealthChecks: map[string]health.Pinger{
			"postgres": func(ctx context.Context) error { return storage.CheckDatabaseReady(ctx, db) },
			"redis":    func(ctx context.Context) error { return cacheRedis.Db.Ping(ctx).Err() },
		},
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
}
