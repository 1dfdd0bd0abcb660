package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/askdb-labs/askdb-engine/pkg/catalog"
	"github.com/askdb-labs/askdb-engine/pkg/config"
	"github.com/askdb-labs/askdb-engine/pkg/database"
	"github.com/askdb-labs/askdb-engine/pkg/executor"
	"github.com/askdb-labs/askdb-engine/pkg/handlers"
	"github.com/askdb-labs/askdb-engine/pkg/llm"
	"github.com/askdb-labs/askdb-engine/pkg/logging"
	"github.com/askdb-labs/askdb-engine/pkg/middleware"
	"github.com/askdb-labs/askdb-engine/pkg/repositories"
	"github.com/askdb-labs/askdb-engine/pkg/retrieval"
	"github.com/askdb-labs/askdb-engine/pkg/services"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("engine exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	// golang-migrate needs a database/sql handle
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		_ = sqlDB.Close()
		return err
	}
	_ = sqlDB.Close()

	completionCfg := &llm.Config{
		Provider:    cfg.AI.Provider,
		Endpoint:    cfg.AI.Endpoint,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.APIKey,
		Temperature: cfg.AI.Temperature,
	}
	embeddingCfg := &llm.Config{
		Endpoint:       cfg.AI.EmbeddingEndpoint,
		Model:          cfg.AI.EmbeddingModel,
		APIKey:         cfg.AI.EmbeddingAPIKey,
		EmbeddingModel: cfg.AI.EmbeddingModel,
		Dimensions:     cfg.AI.EmbeddingDimensions,
	}
	completion, embedder, err := llm.NewClients(completionCfg, embeddingCfg, logger)
	if err != nil {
		return err
	}

	cat := catalog.NewPostgresCatalog(db, cfg.Pipeline.SampleRowsPerTable, logger)
	embeddings := repositories.NewEmbeddingRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)

	examples := retrieval.NewExampleRetriever(cfg.Pipeline.ExamplesPath,
		retrieval.NewUniformSampler(time.Now().UnixNano()), logger)
	vectors := retrieval.NewVectorRetriever(embedder, embeddings, logger)

	tokens := services.NewQueryTokenStore(cfg.Pipeline.TokenTTL())
	defer tokens.Stop()

	generation := services.NewGenerationService(completion, cat, examples, vectors, tokens,
		services.GenerationConfig{
			ExampleCount: cfg.Pipeline.ExampleCount,
			VectorRows:   cfg.Pipeline.VectorRowsInPrompt,
		}, logger)
	feedback := services.NewFeedbackService(feedbackRepo, logger)
	exec := executor.NewPostgresExecutor(db, cfg.Pipeline.ExecutionTimeout(), cfg.Pipeline.MaxResultRows, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	queryHandler := handlers.NewQueryHandler(generation, feedback, tokens, exec,
		middleware.NewRateLimiter(cfg.RateLimit.GenerateWindow()),
		middleware.NewRateLimiter(cfg.RateLimit.FeedbackWindow()),
		logger)
	queryHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting askdb-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	return http.ListenAndServe(addr, handler)
}
