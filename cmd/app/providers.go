package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	"github.com/yanqian/label-insight/internal/domain/auth"
	"github.com/yanqian/label-insight/internal/domain/history"
	"github.com/yanqian/label-insight/internal/domain/profile"
	"github.com/yanqian/label-insight/internal/infra/config"
	"github.com/yanqian/label-insight/internal/infra/historystore"
	"github.com/yanqian/label-insight/internal/infra/llm/chatgpt"
	"github.com/yanqian/label-insight/internal/infra/llm/langchain"
	"github.com/yanqian/label-insight/internal/infra/llm/tokens"
	"github.com/yanqian/label-insight/internal/infra/ocr/tesseract"
	"github.com/yanqian/label-insight/internal/infra/profilerepo"
	"github.com/yanqian/label-insight/internal/infra/sqlitestore"
	"github.com/yanqian/label-insight/internal/infra/uploads"
	"github.com/yanqian/label-insight/internal/infra/userrepo"
	"github.com/yanqian/label-insight/internal/infra/vision"
	httpiface "github.com/yanqian/label-insight/internal/interface/http"
	"github.com/yanqian/label-insight/pkg/metrics"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideHistoryConfig(cfg *config.Config) history.Config {
	return history.Config{Limit: cfg.History.Limit}
}

// repositories is the account and profile backend picked by storage.driver.
type repositories struct {
	users    auth.Repository
	profiles profile.Repository
}

func memoryRepositories() *repositories {
	return &repositories{
		users:    userrepo.NewMemoryRepository(),
		profiles: profilerepo.NewMemoryRepository(),
	}
}

func provideRepositories(cfg *config.Config, logger *slog.Logger) (*repositories, func()) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case config.StoragePostgres:
		pool, err := openPostgres(cfg.Storage.Postgres, logger)
		if err != nil {
			logger.Error("postgres unavailable, using memory repositories", "error", err)
			return memoryRepositories(), func() {}
		}
		logger.Info("postgres repositories enabled")
		return &repositories{
			users:    userrepo.NewPostgresRepository(pool),
			profiles: profilerepo.NewPostgresRepository(pool),
		}, pool.Close
	case config.StorageSQLite:
		db, err := sqlitestore.Open(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("sqlite unavailable, using memory repositories", "path", cfg.Storage.SQLite.Path, "error", err)
			return memoryRepositories(), func() {}
		}
		logger.Info("sqlite repositories enabled", "path", cfg.Storage.SQLite.Path)
		closeDB := func() {
			if err := sqlitestore.Close(db); err != nil {
				logger.Warn("failed to close sqlite", "error", err)
			}
		}
		return &repositories{
			users:    userrepo.NewSQLiteRepository(db),
			profiles: profilerepo.NewSQLiteRepository(db),
		}, closeDB
	default:
		logger.Info("using memory repositories")
		return memoryRepositories(), func() {}
	}
}

func openPostgres(cfg config.PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Debug("postgres ping ok", "max_conns", poolConfig.MaxConns)
	return pool, nil
}

func provideUserRepository(repos *repositories) auth.Repository {
	return repos.users
}

func provideProfileRepository(repos *repositories) profile.Repository {
	return repos.profiles
}

func provideHistoryStore(cfg *config.Config, logger *slog.Logger) (history.Store, func()) {
	fallback := historystore.NewMemoryStore(cfg.History.TTL)
	if !cfg.History.Valkey.Enabled {
		return fallback, func() {}
	}
	opt, err := buildValkeyOptions(cfg.History.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return fallback, func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return fallback, func() {}
	}
	logger.Info("history valkey store enabled", "addr", cfg.History.Valkey.Addr)
	return historystore.NewValkeyStore(client, "history", cfg.History.TTL), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// provideAnalysisClient picks the model backend. A missing credential or a
// backend that fails to initialize leaves the client unconfigured so the
// server still starts and reports the problem per request.
func provideAnalysisClient(cfg *config.Config, logger *slog.Logger) *analysis.Client {
	temperature := float64(cfg.LLM.Temperature)
	apiKey := strings.TrimSpace(cfg.LLM.APIKey)

	switch strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) {
	case config.ProviderOllama:
		gen, err := langchain.NewOllama(cfg.LLM.BaseURL, cfg.LLM.Model, temperature)
		if err != nil {
			logger.Error("ollama client init failed", "error", err)
			return analysis.NewUnconfiguredClient("Ollama")
		}
		return analysis.NewClient("Ollama", gen)
	case config.ProviderOpenAI:
		if apiKey == "" {
			logger.Warn("llm api key not set, analysis requests will fail", "provider", "OpenAI")
			return analysis.NewUnconfiguredClient("OpenAI")
		}
		client, err := chatgpt.NewClient(apiKey, cfg.LLM.BaseURL)
		if err != nil {
			logger.Error("openai client init failed", "error", err)
			return analysis.NewUnconfiguredClient("OpenAI")
		}
		return analysis.NewClient("OpenAI", chatgpt.NewGenerator(client, cfg.LLM.Model, temperature, logger))
	default:
		if apiKey == "" {
			logger.Warn("llm api key not set, analysis requests will fail", "provider", analysis.DefaultProvider)
			return analysis.NewUnconfiguredClient(analysis.DefaultProvider)
		}
		gen, err := langchain.NewGemini(context.Background(), apiKey, cfg.LLM.Model, temperature)
		if err != nil {
			logger.Error("gemini client init failed", "error", err)
			return analysis.NewUnconfiguredClient(analysis.DefaultProvider)
		}
		return analysis.NewClient(analysis.DefaultProvider, gen)
	}
}

// provideTokenCounter returns nil when the encoding cannot be loaded; the
// service then falls back to a length based estimate.
func provideTokenCounter(logger *slog.Logger) analysis.TokenCounter {
	counter, err := tokens.NewCounter()
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, estimating prompt tokens", "error", err)
		return nil
	}
	return counter
}

func providePreprocessor(cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) *vision.Preprocessor {
	return vision.NewPreprocessor(cfg.Preprocess.Workers, recorder, logger)
}

func provideExtractor(cfg *config.Config, logger *slog.Logger) *tesseract.Extractor {
	return tesseract.NewExtractor(nil, cfg.OCR.Language, logger)
}

func provideUploads(cfg *config.Config, logger *slog.Logger) (*uploads.LocalStore, error) {
	var mirror uploads.Mirror
	if m := cfg.Uploads.Mirror; m.Enabled {
		bucket, err := uploads.NewBucketMirror(uploads.MirrorConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			Region:    m.Region,
		}, logger)
		if err != nil {
			logger.Error("upload mirror disabled", "error", err)
		} else {
			logger.Info("upload mirror enabled", "bucket", m.Bucket)
			mirror = bucket
		}
	}
	return uploads.NewLocalStore(uploads.Config{
		Dir:           cfg.Uploads.Dir,
		PublicPath:    cfg.Uploads.PublicPath,
		PublicBaseURL: cfg.Uploads.PublicBaseURL,
	}, mirror, logger)
}

func provideHealthInfo(cfg *config.Config, client *analysis.Client) httpiface.HealthInfo {
	return httpiface.HealthInfo{
		OCRLanguage:   cfg.OCR.Language,
		LLMProvider:   client.Provider(),
		LLMConfigured: client.Configured(),
	}
}
