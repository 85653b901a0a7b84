package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"compass/internal/api"
	"compass/internal/api/handlers"
	"compass/internal/knowledge"
	"compass/internal/repository"
	"compass/internal/service"
	"compass/internal/vector"
	"compass/pkg/auth"
	"compass/pkg/config"
	"compass/pkg/logger"
	"compass/pkg/postgres"

	"go.uber.org/zap"
)

// @title COMPASS Recommendation API
// @version 1.0
// @description Customer Opportunity Mapping: RAG-based next best product recommendations for banking customers

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting COMPASS recommendation service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	customerRepo := repository.NewCustomerRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	var embedder service.Embedder
	if cfg.Embedding.APIKey != "" {
		embedder = service.NewRemoteEmbedder(&cfg.Embedding, appLogger)
	} else {
		appLogger.Warn("EMBEDDING_API_KEY not set, using deterministic local embedder")
		embedder = vector.NewMockEmbedder(0)
	}

	generator, err := service.NewGroqGenerator(&cfg.Groq, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize generator", zap.Error(err))
	}

	// Load the product knowledge base and bring up the similarity index.
	// The index must be ready before any query is served.
	entries, err := knowledge.Load(cfg.Knowledge.ProductsPath)
	if err != nil {
		appLogger.Fatal("Failed to load knowledge base", zap.Error(err))
	}
	appLogger.Info("Knowledge base loaded",
		zap.String("path", cfg.Knowledge.ProductsPath),
		zap.Int("products", len(entries)),
	)

	index, err := service.BuildOrLoadIndex(ctx, embedder, entries, cfg.Knowledge.IndexPath, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to build similarity index", zap.Error(err))
	}

	recommender := service.NewRecommenderService(embedder, index, generator, entries, cfg.RAG.TopK, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	customerHandler := handlers.NewCustomerHandler(customerRepo, recommender, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, customerHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
