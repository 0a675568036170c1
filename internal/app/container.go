package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/adapter/storage"
	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/core/service"
	"github.com/rl1809/warehouse/internal/platform/observability"
)

// Container holds the process-wide resources: logger, tracer and store pool.
type Container struct {
	config            *config.Config
	logger            *zap.Logger
	tracer            observability.Tracer
	store             *storage.SQLStore
	otelLogShutdown   func(context.Context) error
	otelTraceShutdown func(context.Context) error
}

// Services is the set of domain services bound to one logger.
type Services struct {
	Auth      *service.AuthService
	Inventory *service.InventoryService
	Suppliers *service.SupplierService
	Reports   *service.ReportService
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{config: cfg}

	exporting := observability.Enabled(cfg)
	var setupErrs []error
	if exporting {
		shutdown, err := observability.SetupLoggingSDK(ctx, cfg)
		c.otelLogShutdown = shutdown
		if err != nil {
			setupErrs = append(setupErrs, err)
		}
		shutdown, err = observability.SetupTracingSDK(ctx, cfg)
		c.otelTraceShutdown = shutdown
		if err != nil {
			setupErrs = append(setupErrs, err)
		}
	}

	c.logger = observability.NewLogger(cfg.LogLevel, exporting)
	for _, err := range setupErrs {
		c.logger.Error("Failed to setup OpenTelemetry", zap.Error(err))
	}
	c.tracer = otel.Tracer(config.ServiceName)

	store, err := storage.Open(ctx, cfg.Store, c.tracer)
	if err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	c.store = store
	c.logger.Info("connected to store", zap.String("driver", cfg.Store.Driver))

	return c, nil
}

// NewServices wires the domain services; logger may carry session fields.
func (c *Container) NewServices(logger *zap.Logger) *Services {
	if logger == nil {
		logger = c.logger
	}
	inventory := service.NewInventoryService(c.store, logger, c.tracer)
	suppliers := service.NewSupplierService(c.store, logger, c.tracer)
	return &Services{
		Auth:      service.NewAuthService(c.config.AdminUser, c.config.AdminPasswordHash, logger),
		Inventory: inventory,
		Suppliers: suppliers,
		Reports:   service.NewReportService(inventory, suppliers, c.tracer),
	}
}

func (c *Container) Shutdown(ctx context.Context) {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Error("Failed to close store", zap.Error(err))
		}
	}
	if c.otelTraceShutdown != nil {
		if err := c.otelTraceShutdown(ctx); err != nil {
			c.logError("Failed to shutdown OTel tracing", err)
		}
	}
	if c.otelLogShutdown != nil {
		if err := c.otelLogShutdown(ctx); err != nil {
			c.logError("Failed to shutdown OTel logging", err)
		}
	}
	if c.logger != nil {
		// stderr sync fails on some terminals; nothing useful to do about it
		_ = c.logger.Sync()
	}
}

func (c *Container) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.Error(msg, zap.Error(err))
	}
}

func (c *Container) Config() *config.Config       { return c.config }
func (c *Container) Logger() *zap.Logger          { return c.logger }
func (c *Container) Store() *storage.SQLStore     { return c.store }
func (c *Container) Tracer() observability.Tracer { return c.tracer }
