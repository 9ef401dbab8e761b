package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealplanner/internal/api"
	"mealplanner/internal/config"
	"mealplanner/internal/logger"
	"mealplanner/internal/mealplan"
	"mealplanner/internal/platform/edamam"
	"mealplanner/internal/platform/gemini"
	"mealplanner/internal/recipe"
)

const sessionIdleTimeout = 12 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	searcher, closeSearcher, err := newSearcher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSearcher()

	store, closeStore, err := newRecipeStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := mealplan.NewRegistry(cfg.Days())
	if err != nil {
		return fmt.Errorf("error creating session registry: %w", err)
	}

	handler := api.NewHandler(searcher, store, sessions, cfg.DefaultPartySize)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handler.RegisterRoutes(r)

	stopExpiry := make(chan struct{})
	defer close(stopExpiry)
	go expireSessions(sessions, stopExpiry)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("meal planner listening", zap.String("port", cfg.Port), zap.String("recipe_source", cfg.RecipeSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func newSearcher(ctx context.Context, cfg *config.Config) (api.RecipeSearcher, func(), error) {
	if cfg.RecipeSource == config.SourceGemini {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		return client, func() { _ = client.Close() }, nil
	}

	client, err := edamam.NewClient(cfg.EdamamBaseURL, cfg.EdamamAppID, cfg.EdamamAppKey, edamam.WithRandom(cfg.EdamamRandom))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating edamam client: %w", err)
	}
	return client, func() {}, nil
}

func newRecipeStore(cfg *config.Config) (api.RecipeStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, caching recipes in memory")
		return recipe.NewMemoryStore(), func() {}, nil
	}

	dbStore, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating postgresstore: %w", err)
	}
	return dbStore, func() { _ = dbStore.Close() }, nil
}

func expireSessions(sessions *mealplan.Registry, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := sessions.Expire(sessionIdleTimeout); n > 0 {
				logger.Info("expired idle sessions", zap.Int("count", n))
			}
		case <-stop:
			return
		}
	}
}
