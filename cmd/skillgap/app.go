package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/catalog"
	"github.com/jonathan/skillgap/internal/config"
	"github.com/jonathan/skillgap/internal/db"
	"github.com/jonathan/skillgap/internal/db/sqlitestore"
	"github.com/jonathan/skillgap/internal/llm"
	"github.com/jonathan/skillgap/internal/logging"
	"github.com/jonathan/skillgap/internal/service"
)

// loadConfig builds the effective configuration: config file, then environment,
// then persistent flags, with defaults filling whatever is still unset
func loadConfig() (config.Config, error) {
	cfg := config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// setup loads the configuration and builds the logger
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// newLLMClient returns the Gemini client, or nil when no API key is configured so
// that gap analysis runs deterministically
func newLLMClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (llm.Client, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Info("no Gemini API key configured, using deterministic gap analysis")
		return nil, nil
	}

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.Model)
	}
	llmConfig.Timeout = cfg.LLMTimeout.Std()

	client, err := llm.NewClient(ctx, llmConfig, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newCatalogClient builds the catalog client with its cache. The Redis tier is
// used only when a Redis URL is configured.
func newCatalogClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (*catalog.Client, func(), error) {
	cacheOpts := []catalog.CacheOption{catalog.WithCacheLogger(logger)}
	cleanup := func() {}

	if cfg.RedisURL != "" {
		rdb, err := catalog.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		cacheOpts = append(cacheOpts, catalog.WithRedis(rdb))
		cleanup = func() { _ = rdb.Close() }
	}

	client := catalog.NewClient(
		catalog.WithBaseURL(cfg.CatalogBaseURL),
		catalog.WithHTTPClient(&http.Client{Timeout: catalog.DefaultTimeout}),
		catalog.WithRetry(cfg.CatalogMaxRetries, cfg.CatalogRetryDelay.Std()),
		catalog.WithRateLimit(cfg.CatalogRPS),
		catalog.WithCache(catalog.NewCache(cfg.CatalogCacheTTL.Std(), cacheOpts...)),
		catalog.WithLogger(logger),
	)
	return client, cleanup, nil
}

// openStore connects to PostgreSQL when a database URL is configured, otherwise to
// the local SQLite file
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (service.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Info("connected to PostgreSQL")
		return database, database.Close, nil
	}

	if cfg.SQLitePath != "" {
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened SQLite store", zap.String("path", cfg.SQLitePath))
		return store, func() { _ = store.Close() }, nil
	}

	return nil, nil, fmt.Errorf("no store configured: set DATABASE_URL or SQLITE_PATH")
}

// readJSONFile decodes a JSON file into v
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	// Ensure output directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
