package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"recipeapi/docs"
	"recipeapi/internal/auth"
	"recipeapi/internal/cache"
	"recipeapi/internal/config"
	"recipeapi/internal/db"
	"recipeapi/internal/dbwait"
	"recipeapi/internal/handler"
	"recipeapi/internal/logger"
	"recipeapi/internal/metrics"
	"recipeapi/internal/model"
	"recipeapi/internal/repository"
	"recipeapi/internal/router"
	"recipeapi/internal/service"
	"recipeapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Recipe API
// @version 1.0
// @description Recipe management API with tags, ingredients, image uploads and JWT authentication.
// @host localhost:8000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := db.WaitForMySQL(cfg.MySQLDSN, dbwait.New(cfg.DBWaitInterval, log))
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	images, err := storage.NewImageStorage(cfg.MediaRoot)
	if err != nil {
		return err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	ingredientRepo := repository.NewIngredientRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, userService, jwtService, tokenStore)
	tagService := service.NewTagService(tagRepo)
	ingredientService := service.NewIngredientService(ingredientRepo)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, images, log)

	// Initialize handlers
	handlers := router.Handlers{
		User:       handler.NewUserHandler(userService),
		Auth:       handler.NewAuthHandler(authService),
		Tag:        handler.NewAttributeHandler[model.Tag](tagService, tagService),
		Ingredient: handler.NewAttributeHandler[model.Ingredient](ingredientService, ingredientService),
		Recipe:     handler.NewRecipeHandler(recipeService, cfg.MaxUploadBytes),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Register routes
	router.Register(e, cfg, log, metrics.New(reg), authService, handlers, map[string]router.Check{
		"database": func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
		"redis":    cacheClient.Ping,
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Info("swagger documentation available", "url", swaggerURL(cfg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.ServerPort
		log.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
