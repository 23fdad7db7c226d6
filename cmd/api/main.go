package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jesusrosales17/ecommerce-sub001/internal/di"
	"github.com/jesusrosales17/ecommerce-sub001/internal/handlers"
	"github.com/jesusrosales17/ecommerce-sub001/internal/notifications"
	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/auth"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/config"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/observability"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("configuration incomplete", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := postgres.Open(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	registry, err := postgres.NewRegistry(db)
	if err != nil {
		logger.Fatal("failed to build repository registry", zap.Error(err))
	}

	provider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
		APIKey: cfg.Stripe.APIKey,
		Logger: func(ctx context.Context, event string, fields map[string]any) {
			zapFields := make([]zap.Field, 0, len(fields))
			for key, value := range fields {
				zapFields = append(zapFields, zap.Any(key, value))
			}
			observability.FromContext(ctx).Info(event, zapFields...)
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise payment provider", zap.Error(err))
	}

	verifier, err := payments.NewWebhookVerifier(cfg.Stripe.WebhookSecret)
	if err != nil {
		logger.Fatal("failed to initialise webhook verifier", zap.Error(err))
	}

	var mailer notifications.OrderMailer = notifications.NopMailer{}
	if cfg.SMTP.Enabled() {
		smtpMailer, err := notifications.NewSMTPMailer(notifications.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger.Named("mailer"))
		if err != nil {
			logger.Fatal("failed to initialise mailer", zap.Error(err))
		}
		mailer = smtpMailer
	}

	container, err := di.NewContainer(cfg, registry, provider, mailer, logger)
	if err != nil {
		logger.Fatal("failed to assemble dependencies", zap.Error(err))
	}

	authn, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		logger.Fatal("failed to initialise authenticator", zap.Error(err))
	}

	catalogHandlers := handlers.NewCatalogHandlers(container.Services.Catalog)
	cartHandlers := handlers.NewCartHandlers(authn, container.Services.Cart)
	checkoutHandlers := handlers.NewCheckoutHandlers(authn, container.Services.Checkout)
	meHandlers := handlers.NewMeHandlers(authn, container.Services.Users)
	orderHandlers := handlers.NewOrderHandlers(authn, container.Services.Orders)
	adminHandlers := handlers.NewAdminHandlers(authn, container.Services.Orders, container.Services.Webhooks)
	webhookHandlers := handlers.NewWebhookHandlers(verifier, container.Services.Webhooks)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(registry)),
		handlers.WithProductRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithMeRoutes(meHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
		handlers.WithWebhookRoutes(webhookHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
	if err := container.Close(shutdownCtx); err != nil {
		logger.Warn("container close error", zap.Error(err))
	}
	logger.Info("server stopped")
}
