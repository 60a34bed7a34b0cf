package bootstrap

import (
	"context"
	"fmt"
	"time"

	"catalog-search/config"
	"catalog-search/driver"
	"catalog-search/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meilisearch/meilisearch-go"
)

// initDatabasePool creates the pgx connection pool.
func initDatabasePool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := driver.NewPool(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	return pool, nil
}

// initMeilisearchClient initializes the Meilisearch client with retry logic.
func initMeilisearchClient(cfg config.MeilisearchConfig) (meilisearch.ServiceManager, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	if cfg.Host == "" {
		return nil, fmt.Errorf("MEILISEARCH_HOST environment variable is not set")
	}

	logger.Logger.Info("Connecting to Meilisearch", "host", cfg.Host)

	var msClient meilisearch.ServiceManager

	for i := range maxRetries {
		msClient = driver.NewMeilisearchClient(cfg.Host, cfg.APIKey)

		if _, healthErr := msClient.Health(); healthErr != nil {
			logger.Logger.Warn("Meilisearch not ready, retrying", "attempt", i+1, "max", maxRetries, "err", healthErr)
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to connect to Meilisearch after %d attempts: %w", maxRetries, healthErr)
		}

		logger.Logger.Info("Connected to Meilisearch successfully")
		break
	}

	return msClient, nil
}
