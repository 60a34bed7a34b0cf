package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catalog-search/config"
	"catalog-search/consumer"
	"catalog-search/driver"
	"catalog-search/gateway"
	"catalog-search/invindex"
	"catalog-search/logger"
	"catalog-search/rest"
	"catalog-search/server"
	"catalog-search/tokenize"
	"catalog-search/usecase"
	appOtel "catalog-search/utils/otel"
	"catalog-search/vocab"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App holds all components of the catalog search service.
type App struct {
	httpServer     *server.Server
	dbPool         *pgxpool.Pool
	redisClient    *redis.Client
	resyncConsumer *consumer.Consumer
	otelShutdown   appOtel.ShutdownFunc
}

// Run initializes all components and starts the service.
// It blocks until ctx is cancelled, then performs graceful shutdown.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting catalog-search",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Load config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	// ── Tokenizer ──
	profile := tokenize.DefaultProfile()
	if len(appCfg.Search.ExtraStopWords) > 0 {
		stopWords := tokenize.StopWords()
		for _, w := range appCfg.Search.ExtraStopWords {
			stopWords[strings.ToLower(w)] = struct{}{}
		}
		profile.StopWords = stopWords
	}
	if segmenter, err := tokenize.InitSegmenter(); err != nil {
		logger.Logger.Error("Failed to initialize segmenter, continuing without CJK support", "err", err)
	} else {
		profile.Segmenter = segmenter
	}

	// ── Drivers (infrastructure layer) ──
	dbPool, err := initDatabasePool(ctx, appCfg.Database)
	if err != nil {
		logger.Logger.Error("Failed to initialize database", "err", err)
		return err
	}
	pgDriver := driver.NewPostgresDriver(dbPool)

	msClient, err := initMeilisearchClient(appCfg.Meilisearch)
	if err != nil {
		logger.Logger.Error("Failed to initialize Meilisearch", "err", err)
		dbPool.Close()
		return err
	}
	msDriver := driver.NewMeilisearchDriver(
		msClient,
		appCfg.Meilisearch.RecordsIndex,
		appCfg.Meilisearch.TermsIndex,
		appCfg.Meilisearch.Timeout,
		appCfg.Search.FilterFields,
	)

	// ── Gateways (anti-corruption layer) ──
	recordRepo := gateway.NewRecordRepositoryGateway(pgDriver)
	mirror := gateway.NewMirrorGateway(msDriver, appCfg.Search.FilterFields)

	if err := mirror.EnsureIndexes(ctx); err != nil {
		logger.Logger.Error("Failed to ensure mirror indexes", "err", err)
		dbPool.Close()
		return err
	}

	// ── Primary index + vocabulary ──
	store := invindex.NewStore(profile, appCfg.Search.FilterFields, pgDriver)
	if err := store.Hydrate(ctx); err != nil {
		logger.Logger.Error("Failed to hydrate primary index", "err", err)
		dbPool.Close()
		return err
	}
	logger.Logger.Info("primary index hydrated", "records", store.Len())

	vocabulary := vocab.NewEngine(appCfg.Search.MinSimilarity, pgDriver)
	if err := vocabulary.Hydrate(ctx); err != nil {
		logger.Logger.Error("Failed to hydrate vocabulary", "err", err)
		dbPool.Close()
		return err
	}
	logger.Logger.Info("vocabulary hydrated", "terms", vocabulary.Len())

	// ── Redis resync queue + consumer ──
	var redisClient *redis.Client
	var resyncQueue *consumer.Queue
	var resyncConsumer *consumer.Consumer
	consumerCfg := consumer.ConfigFromEnv()
	if consumerCfg.Enabled {
		redisClient, err = consumer.NewRedisClient(consumerCfg.RedisURL)
		if err != nil {
			logger.Logger.Error("Failed to create Redis client", "err", err)
		} else {
			resyncQueue = consumer.NewQueue(redisClient, consumerCfg.StreamKey)
			handler := consumer.NewResyncEventHandler(recordRepo, mirror, logger.Logger)
			resyncConsumer = consumer.NewConsumer(redisClient, consumerCfg, handler, logger.Logger)
			if err := resyncConsumer.Start(ctx); err != nil {
				logger.Logger.Error("Failed to start resync consumer", "err", err)
			}
		}
	} else {
		logger.Logger.Info("resync queue disabled")
	}

	// ── Use cases (application layer) ──
	var enqueuer usecase.ResyncEnqueuer
	if resyncQueue != nil {
		enqueuer = resyncQueue
	}
	saveUsecase := usecase.NewSaveRecordUsecase(
		store, vocabulary, mirror, enqueuer,
		appCfg.Search.FieldWeights, profile,
		appCfg.Indexer.MirrorRetries, logger.Logger,
	)
	deleteUsecase := usecase.NewDeleteRecordUsecase(store, mirror, enqueuer, appCfg.Indexer.MirrorRetries, logger.Logger)
	searchUsecase := usecase.NewSearchRecordsUsecase(store, recordRepo, mirror, appCfg.Search.FieldWeights, profile, logger.Logger)
	suggestUsecase := usecase.NewSuggestTermsUsecase(vocabulary, mirror)
	reindexUsecase := usecase.NewReindexMirrorUsecase(recordRepo, mirror, vocabulary, appCfg.Indexer.BatchSize, logger.Logger)

	// ── HTTP server ──
	handler := rest.NewHandler(saveUsecase, deleteUsecase, searchUsecase, suggestUsecase, reindexUsecase)
	httpServer := server.New(handler, server.Config{
		Addr:              appCfg.HTTP.Addr,
		ReadHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
	})

	app := &App{
		httpServer:     httpServer,
		dbPool:         dbPool,
		redisClient:    redisClient,
		resyncConsumer: resyncConsumer,
		otelShutdown:   otelShutdown,
	}

	go func() {
		logger.Logger.Info("http listen", "addr", appCfg.HTTP.Addr)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("http", "err", err)
		}
	}()

	// ── Wait for shutdown signal ──
	<-ctx.Done()
	app.shutdown()
	return nil
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http shutdown error", "err", err)
	}
	if a.resyncConsumer != nil {
		a.resyncConsumer.Stop()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}
