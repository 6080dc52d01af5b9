// Package app wires together all dependencies and runs the service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JesusFern/BookLog-ELK-Stack/pkg/database"
	"github.com/JesusFern/BookLog-ELK-Stack/pkg/health"
	pkgkafka "github.com/JesusFern/BookLog-ELK-Stack/pkg/kafka"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/config"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/event"
	handler "github.com/JesusFern/BookLog-ELK-Stack/internal/handler/http"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index"
	esindex "github.com/JesusFern/BookLog-ELK-Stack/internal/index/elasticsearch"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/index/memory"
	"github.com/JesusFern/BookLog-ELK-Stack/internal/service"
	storepg "github.com/JesusFern/BookLog-ELK-Stack/internal/store/postgres"
)

// idempotencyTTL bounds how long processed event ids are remembered.
const idempotencyTTL = 24 * time.Hour

// App wires together all dependencies and runs the booklog service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	producer   *pkgkafka.Producer
	dlq        *pkgkafka.DLQProducer
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	// Search index backend.
	var searchIndex index.SearchIndex
	var esIdx *esindex.Index
	switch cfg.SearchIndex {
	case "elasticsearch":
		var err error
		esIdx, err = esindex.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch index: %w", err)
		}
		if err := esIdx.EnsureIndex(ctx, false); err != nil {
			return nil, fmt.Errorf("ensure elasticsearch index: %w", err)
		}
		searchIndex = esIdx
		logger.Info("elasticsearch index initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		searchIndex = memory.New()
		logger.Info("in-memory search index initialized")
	}

	// Primary store.
	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}
	app.pool = pool
	if err := database.RegisterPoolMetrics(pool, "booklog"); err != nil {
		logger.Warn("pgxpool metrics registration failed", slog.String("error", err.Error()))
	}
	bookStore := storepg.NewBookRepository(pool)

	// Service layer.
	searchService := service.NewSearchService(searchIndex, logger)
	syncService := service.NewSyncService(bookStore, searchIndex, cfg.ReindexBatchSize, logger)

	// Change-record propagation over Kafka.
	var publisher service.BookEventPublisher
	if cfg.KafkaEnabled {
		app.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewPublisher(app.producer, logger)

		idemStore, err := app.newIdempotencyStore(ctx)
		if err != nil {
			return nil, err
		}

		app.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		eventConsumer := event.NewConsumer(syncService, logger)
		handle := pkgkafka.IdempotentHandler(idemStore, eventConsumer.Handle, logger)

		for _, topic := range []string{event.TopicBookCreated, event.TopicBookPurchased} {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  "booklog-index-sync",
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			c := pkgkafka.NewConsumer(consumerCfg, handle, logger).WithDLQ(app.dlq)
			app.consumers = append(app.consumers, c)
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", 2),
		)
	}

	catalogService := service.NewCatalogService(bookStore, searchIndex, publisher, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	if esIdx != nil {
		healthHandler.Register("elasticsearch", esIdx.Ping)
	}
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if cfg.KafkaEnabled {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	router := handler.NewRouter(searchService, catalogService, syncService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// newIdempotencyStore selects Redis-backed event dedupe when configured,
// falling back to the in-process store.
func (a *App) newIdempotencyStore(ctx context.Context) (pkgkafka.IdempotencyStore, error) {
	if !a.cfg.RedisEnabled {
		return pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL), nil
	}

	rdCfg := a.cfg.RedisConfig()
	client, err := database.NewRedisClient(ctx, &rdCfg)
	if err != nil {
		return nil, fmt.Errorf("init redis client: %w", err)
	}
	a.redis = client
	a.logger.Info("redis idempotency store initialized", slog.String("addr", rdCfg.Addr()))
	return pkgkafka.NewRedisIdempotencyStore(client, "booklog:events", idempotencyTTL), nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the
// context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func(c *pkgkafka.Consumer) {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}(c)
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
