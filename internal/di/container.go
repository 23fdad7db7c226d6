package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jesusrosales17/ecommerce-sub001/internal/notifications"
	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/config"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/observability"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/requestctx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog  services.CatalogService
	Cart     services.CartService
	Checkout services.CheckoutService
	Webhooks services.WebhookService
	Users    services.UserService
	Orders   services.OrderService
}

// Container wires repositories, payments, and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Payments     payments.Provider
	Mailer       notifications.OrderMailer
	Services     Services
}

// NewContainer assembles the runtime dependency graph. Tests can supply
// in-memory registries and stub providers.
func NewContainer(cfg config.Config, reg repositories.Registry, provider payments.Provider, mailer notifications.OrderMailer, logger *zap.Logger) (*Container, error) {
	if reg == nil {
		return nil, errors.New("di: repositories registry is required")
	}
	if provider == nil {
		return nil, errors.New("di: payment provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = notifications.NopMailer{}
	}

	eventLogger := newEventLogger(logger)

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: reg.Products(),
		Logger:   eventLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: catalog service: %w", err)
	}

	cart, err := services.NewCartService(services.CartServiceDeps{
		Carts:    reg.Carts(),
		Products: reg.Products(),
		Logger:   eventLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: cart service: %w", err)
	}

	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:      reg.Carts(),
		Products:   reg.Products(),
		Addresses:  reg.Addresses(),
		Users:      reg.Users(),
		Payments:   provider,
		Currency:   cfg.Checkout.Currency,
		SuccessURL: cfg.Checkout.SuccessURL,
		CancelURL:  cfg.Checkout.CancelURL,
		Logger:     eventLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: checkout service: %w", err)
	}

	webhooks, err := services.NewWebhookService(services.WebhookServiceDeps{
		Registry: reg,
		Mailer:   mailer,
		Logger:   eventLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: webhook service: %w", err)
	}

	users, err := services.NewUserService(services.UserServiceDeps{
		Registry: reg,
		Logger:   eventLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: user service: %w", err)
	}

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Registry: reg,
		Logger:   eventLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: order service: %w", err)
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Payments:     provider,
		Mailer:       mailer,
		Services: Services{
			Catalog:  catalog,
			Cart:     cart,
			Checkout: checkout,
			Webhooks: webhooks,
			Users:    users,
			Orders:   orders,
		},
	}, nil
}

// Close releases repository resources.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

// newEventLogger adapts the zap logger to the service event logging contract,
// preferring a request-scoped logger when one is on the context.
func newEventLogger(base *zap.Logger) services.Logger {
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := base
		if scoped := observability.FromContext(ctx); scoped != requestctx.NoopLogger() {
			logger = scoped
		}
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
