package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/config"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/handlers"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/pkg/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize dependencies
	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	logger := container.Logger

	if cfg.Database.AutoMigrate {
		if err := container.Migrations.RunMigrations(context.Background()); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	if cfg.Environment == "production" || cfg.Serverless.IsServerless() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerConfig := &handlers.RouterConfig{
		UserHandler: handlers.NewUserHandler(container.Connector, container.Services, container.Metrics, logger),
		BasePath:    cfg.BasePath,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
		Metrics:     container.Metrics,
	}
	if cfg.Metrics.Enabled {
		routerConfig.Gatherer = container.Registry
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"base_path": cfg.BasePath,
		"mode":      cfg.Serverless.Mode,
		"driver":    cfg.Database.Driver,
	}).Info("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
