package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/corebank-service/corebank_service/internal/api/routes"
	"github.com/corebank-service/corebank_service/internal/infrastructure/cache"
	"github.com/corebank-service/corebank_service/internal/infrastructure/config"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
	"github.com/corebank-service/corebank_service/internal/workers/integrity"
	"github.com/corebank-service/corebank_service/pkg/graceful"
	"github.com/corebank-service/corebank_service/pkg/logger"
	"github.com/corebank-service/corebank_service/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	log.Info("starting corebank-service", "environment", cfg.Environment)

	shutdownTracer, err := tracing.InitTracer(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
	}, log.Zap())
	if err != nil {
		log.Fatal("failed to initialize tracing", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Warn("tracer shutdown error", "error", err)
		}
	}()

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}
	log.Info("database migrations applied")

	var redisClient *cache.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		log.Info("redis connected", "host", cfg.Redis.Host)
	}

	router := routes.Setup(cfg, db, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	shutdownManager := graceful.NewShutdownManager(server, db.DB, log)

	if cfg.Integrity.Enabled {
		worker := integrity.NewWorker(db, redisClient, log)
		if err := worker.Start(cfg.Integrity.Schedule); err != nil {
			log.Fatal("failed to start integrity worker", "error", err)
		}
		shutdownManager.Register(worker)
	}

	go func() {
		log.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "error", err)
		}
	}()

	shutdownManager.WaitForShutdown()
}
