package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccarlsson/todo-app/config"
	"github.com/ccarlsson/todo-app/internal/auth"
	"github.com/ccarlsson/todo-app/internal/health"
	"github.com/ccarlsson/todo-app/internal/infrastructure/memory"
	"github.com/ccarlsson/todo-app/internal/infrastructure/mongodb"
	ctxlog "github.com/ccarlsson/todo-app/internal/log"
	"github.com/ccarlsson/todo-app/internal/metrics"
	"github.com/ccarlsson/todo-app/internal/repository"
	httptransport "github.com/ccarlsson/todo-app/internal/transport/http"
	"github.com/ccarlsson/todo-app/internal/transport/http/handler"
	"github.com/ccarlsson/todo-app/internal/usecase"
	"github.com/ccarlsson/todo-app/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Storage backend selection stays behind the repository interfaces;
	// nothing past this block knows which one is running.
	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
		pinger   health.Pinger
	)
	switch cfg.StorageBackend {
	case "mongodb":
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			stop()
			log.Fatalf("mongodb: %v", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(closeCtx)
		}()
		userRepo = mongodb.NewUserRepository(db)
		taskRepo = mongodb.NewTaskRepository(db)
		pinger = db
	default:
		userRepo = memory.NewUserRepository()
		taskRepo = memory.NewTaskRepository()
	}

	pipeline := validation.NewPipeline()
	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiresMinutes)

	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, tokens, pipeline)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	taskUsecase := usecase.NewTaskUsecase(taskRepo, pipeline)
	taskHandler := handler.NewTaskHandler(taskUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pinger, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, taskHandler, tokens),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
