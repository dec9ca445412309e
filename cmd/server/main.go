package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sparkworks/sparkworks-backend/internal/config"
	"github.com/sparkworks/sparkworks-backend/internal/database"
	"github.com/sparkworks/sparkworks-backend/internal/engine"
	"github.com/sparkworks/sparkworks-backend/internal/logging"
	"github.com/sparkworks/sparkworks-backend/internal/routes"
	"github.com/sparkworks/sparkworks-backend/internal/webhook"
	"github.com/sparkworks/sparkworks-backend/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	if cfg.SeedDemoStudent {
		if err := database.SeedDemoStudent(db, logger); err != nil {
			logger.Fatal("demo student seed failed", zap.Error(err))
		}
	}

	hub := ws.NewHub(logger)
	go hub.Run()

	sender := webhook.NewSender(cfg.FailureWebhookURL, cfg.BackendSecret, cfg.WebhookTimeout, logger)
	eng := engine.New(db, hub, sender, logger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.Register(r, eng, hub, cfg, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server exited with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
