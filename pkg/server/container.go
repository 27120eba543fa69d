package server

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/config"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Registry   *prometheus.Registry
	Metrics    *observability.Metrics
	Connector  *database.SQLConnector
	Migrations *database.MigrationManager
	Services   services.Factory
}

// NewContainer creates a new dependency injection container. Configuration
// is validated here, once, so invocations never see a half-configured handler.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, observability.NewLogger(cfg.Log))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger
func NewContainerWithLogger(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(registry)
	}

	connector, err := database.NewConnector(cfg.Database.ToConnectionConfig(logger), metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connector: %w", err)
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Registry:   registry,
		Metrics:    metrics,
		Connector:  connector,
		Migrations: database.NewMigrationManager(connector, logger),
		Services:   services.NewFactory(metrics, logger),
	}, nil
}

// Close cleans up all resources. The container owns no open connections;
// every session is closed by the invocation that opened it.
func (c *Container) Close() error {
	c.Logger.Debug("Container closed")
	return nil
}
