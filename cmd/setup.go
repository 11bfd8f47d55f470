package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askphys/askphys/db"
	"github.com/askphys/askphys/internal/chat"
	"github.com/askphys/askphys/internal/chunk"
	"github.com/askphys/askphys/internal/config"
	"github.com/askphys/askphys/internal/embed"
	"github.com/askphys/askphys/internal/ingest"
	"github.com/askphys/askphys/internal/log"
	"github.com/askphys/askphys/internal/retrieve"
	"github.com/askphys/askphys/internal/store"
)

// app bundles the wired components every command starts from.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	g      *genkit.Genkit
	embed  *embed.Client
	store  *store.Store
	logger log.Logger
}

// setup loads configuration, migrates the schema, connects the pool and
// initializes the AI provider. Call close when done.
func setup(ctx context.Context, logger log.Logger) (_ *app, retErr error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			pool.Close()
		}
	}()

	g, err := embed.Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing AI provider: %w", err)
	}

	return &app{
		cfg:    cfg,
		pool:   pool,
		g:      g,
		embed:  embed.NewClient(embed.Embedder(g, cfg), cfg.EmbeddingDim, logger),
		store:  store.New(pool, cfg.EmbeddingDim, logger),
		logger: logger,
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}

// ingester builds the ingestion pipeline from the wired components.
func (a *app) ingester(force bool) (*ingest.Pipeline, error) {
	chunker, err := chunk.New(a.cfg.ChunkSize, a.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return ingest.New(chunker, a.embed, a.store, ingest.Options{
		BatchSize:         a.cfg.InsertBatchSize,
		MinDocumentLength: a.cfg.MinDocumentLength,
		Force:             force,
	}, a.logger), nil
}

// tutor builds the question answering stack.
func (a *app) tutor() *chat.Tutor {
	retriever := retrieve.New(a.embed, a.store, retrieve.Options{
		Threshold: a.cfg.SimilarityThreshold,
		TopK:      a.cfg.TopK,
	}, a.logger)
	generator := chat.GenkitGenerator{G: a.g, Model: embed.ModelName(a.cfg)}
	return chat.New(retriever, generator, a.logger)
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

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
