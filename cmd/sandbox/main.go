package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suteetoe/tokokita/internal/sandbox"
	"github.com/suteetoe/tokokita/pkg/config"
	"github.com/suteetoe/tokokita/pkg/logger"
	"github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("tokokita-sandbox")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting sandbox backend...", cfg.LogFields()...)

	m := prometheus.New(cfg.Metrics.Prefix + "_sandbox")

	store := sandbox.NewStore()
	if err := sandbox.SeedDemo(store); err != nil {
		log.Fatal("Failed to seed demo data", zap.Error(err))
	}
	log.Info("Demo data seeded", zap.String("email", "demo@tokokita.test"))

	srv := sandbox.New(store, sandbox.Options{
		PageSize:        cfg.Sandbox.PageSize,
		DuplicateRows:   cfg.Sandbox.DuplicateRows,
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	}, log, m)

	e := srv.Echo()
	e.HideBanner = true

	go func() {
		port := cfg.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down server", zap.Error(err))
	}
	log.Info("Server stopped")
}
