package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/yutingw/go-restaurant-suggestions/app/db"
	"github.com/yutingw/go-restaurant-suggestions/app/observability/metrics"
	"github.com/yutingw/go-restaurant-suggestions/config"
	generativeAI "github.com/yutingw/go-restaurant-suggestions/internal/api/generative_ai"
	"github.com/yutingw/go-restaurant-suggestions/internal/api/restaurants"
	"github.com/yutingw/go-restaurant-suggestions/internal/api/sessions"
	"github.com/yutingw/go-restaurant-suggestions/internal/prompt"
	"github.com/yutingw/go-restaurant-suggestions/internal/session"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *slog.Logger
	Pool              *pgxpool.Pool
	SessionStore      *session.InMemoryStore
	RestaurantHandler *restaurants.Handler
	SessionHandler    *sessions.Handler
}

// NewContainer initializes and returns a new dependency container. The Pool
// is nil when the in-memory catalog backend is configured.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	var (
		pool *pgxpool.Pool
		repo restaurants.Repository
	)
	if cfg.Repositories.Backend == "memory" {
		logger.Info("Using in-memory restaurant catalog")
		repo = restaurants.NewInMemoryRepository(logger)
	} else {
		dbConfig, err := database.NewDatabaseConfig(cfg, logger)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			return nil, err
		}

		pool, err = database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			return nil, err
		}
		repo = restaurants.NewPostgresRepository(pool, logger)
	}

	aiClient, err := generativeAI.NewAIClient(ctx, cfg.AI.Model, cfg.AI.CallTimeout, logger)
	if err != nil {
		logger.Error("Failed to initialize generative AI client", slog.Any("error", err))
		return nil, err
	}

	store := session.NewInMemoryStore(logger)
	prompts := prompt.NewBuilder()

	metrics.InitAppMetrics()
	defaults := prompt.SamplingParams{
		Temperature: float32(cfg.AI.Sampling.Temperature),
		MaxTokens:   int32(cfg.AI.Sampling.MaxTokens),
		TopP:        float32(cfg.AI.Sampling.TopP),
		TopK:        int32(cfg.AI.Sampling.TopK),
	}
	restaurantService := restaurants.NewService(repo, store, aiClient, prompts,
		metrics.Get(), defaults, cfg.Session.OnErrorPolicy, logger)

	return &Container{
		Config:            cfg,
		Logger:            logger,
		Pool:              pool,
		SessionStore:      store,
		RestaurantHandler: restaurants.NewHandler(restaurantService, logger),
		SessionHandler:    sessions.NewHandler(store, logger),
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	if c.Pool == nil {
		return true
	}
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	if c.Pool == nil {
		return nil
	}
	return database.RunMigrations(connectionURL, c.Logger)
}
