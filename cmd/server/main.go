package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/database"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/logger"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/router"
	"github.com/iliyamo/movie-catalog/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	admin, err := config.NewAdminCredential(cfg)
	if err != nil {
		return err
	}
	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	// Audit events go to RabbitMQ only when a broker is configured.
	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, log)
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.RabbitURL, cfg.AuditLogPath, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, audit events are stored but not published")
	}

	auditor := service.NewAuditor(repository.NewAuditRepo(db), publisher, log)
	movies := service.NewMovieService(repository.NewMovieRepo(db), log)
	users := service.NewUserService(
		repository.NewUserRepo(db),
		repository.NewRoleRepo(db),
		auditor,
		service.JWTIssuer{Secret: cfg.JWTSecret, TTL: time.Duration(cfg.AccessTTLMin) * time.Minute},
		admin,
		cfg.BcryptCost,
		log,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	router.RegisterRoutes(e, &handler.HealthHandler{DB: db})
	router.RegisterAuth(e, handler.NewAuthHandler(users, log), cfg.JWTSecret)
	router.RegisterMovies(e,
		handler.NewMovieHandler(movies, middleware.NewCachePurger(rdb, cacheCfg, log), log),
		middleware.NewRedisCache(cacheCfg, rdb, log),
		cfg.JWTSecret)
	router.RegisterUsers(e, handler.NewUserHandler(users, log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
