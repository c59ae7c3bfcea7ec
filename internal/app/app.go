// Package app provides application initialization and dependency
// wiring. Setup builds the full pipeline from configuration: database
// pool with migrations, Genkit with the Google AI plugin, knowledge
// store, RAG service and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/answerdesk/answerdesk/db"
	"github.com/answerdesk/answerdesk/internal/api"
	"github.com/answerdesk/answerdesk/internal/chunk"
	"github.com/answerdesk/answerdesk/internal/config"
	"github.com/answerdesk/answerdesk/internal/fetch"
	"github.com/answerdesk/answerdesk/internal/i18n"
	"github.com/answerdesk/answerdesk/internal/knowledge"
	"github.com/answerdesk/answerdesk/internal/llm"
	"github.com/answerdesk/answerdesk/internal/log"
	"github.com/answerdesk/answerdesk/internal/rag"
)

// App is the application container.
type App struct {
	Config  *config.Config
	Logger  log.Logger
	Pool    *pgxpool.Pool
	Genkit  *genkit.Genkit
	Store   *knowledge.Store
	Service *rag.Service
	Server  *api.Server
}

// Setup creates and initializes the application. On failure everything
// already initialized is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai plugin")
	}
	a.Genkit = g
	logger.Info("initialized Genkit",
		"model", cfg.ModelName,
		"embedder", cfg.EmbedderModel)

	embedder, err := llm.NewEmbedder(googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel))
	if err != nil {
		return nil, fmt.Errorf("creating embedder %q: %w", cfg.EmbedderModel, err)
	}

	generator, err := llm.NewGenerator(g, cfg.FullModelName())
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	store, err := knowledge.New(ctx, pool, llm.VectorDimension, logger)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge store: %w", err)
	}
	a.Store = store

	splitter, err := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("creating splitter: %w", err)
	}

	fetcher := fetch.New(fetch.DefaultTimeout)

	service, err := rag.New(splitter, embedder, generator, fetcher, store, cfg.TopK, logger)
	if err != nil {
		return nil, fmt.Errorf("creating rag service: %w", err)
	}
	a.Service = service

	server, err := api.NewServer(api.ServerConfig{
		Service:     service,
		Logger:      logger,
		Translator:  i18n.New(cfg.Language),
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating api server: %w", err)
	}
	a.Server = server

	return a, nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection
// pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Close releases application resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Info("database pool closed")
	}
}
