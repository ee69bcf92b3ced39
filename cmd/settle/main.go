package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neomorfeo/settle/internal/adapter/email"
	"github.com/neomorfeo/settle/internal/adapter/fsm"
	otelAdapter "github.com/neomorfeo/settle/internal/adapter/otel"
	riverAdapter "github.com/neomorfeo/settle/internal/adapter/river"
	"github.com/neomorfeo/settle/internal/adapter/sqlite"
	stripeAdapter "github.com/neomorfeo/settle/internal/adapter/stripe"
	"github.com/neomorfeo/settle/internal/app"
	"github.com/neomorfeo/settle/internal/config"

	handler "github.com/neomorfeo/settle/internal/adapter/http"
)

const (
	serviceName    = "settle"
	serviceVersion = "0.1.0"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// --- Telemetry ---
	providers, err := otelAdapter.Setup(ctx, otelAdapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelAdapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	var sender email.Sender = email.NewLogSender(slog.Default())
	if cfg.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.ResendAPIKey)
	} else {
		slog.Warn("RESEND_API_KEY not set, notification emails are only logged")
	}

	riverClient, err := riverAdapter.Setup(ctx, db, sender, cfg.EmailFrom)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	gateway, err := otelAdapter.NewTracingGateway(stripeAdapter.NewGateway(stripeAdapter.Config{
		SecretKey:         cfg.StripeSecretKey,
		MaxNetworkRetries: cfg.StripeMaxRetries,
		Country:           cfg.StripeCountry,
	}))
	if err != nil {
		return fmt.Errorf("gateway instrumentation: %w", err)
	}

	tenants := otelAdapter.NewTracingRepository(store)
	publisher := otelAdapter.NewTracingPublisher(riverAdapter.NewPublisher(riverClient))
	validator := fsm.New()

	// --- Application ---
	services := handler.Services{
		Tenants:    app.NewTenantService(tenants),
		Onboarding: app.NewOnboardingService(tenants, gateway, validator, cfg.PublicURL),
		Checkout:   app.NewCheckoutService(tenants, store, gateway, cfg.Fees, cfg.PublicURL),
	}
	webhooks := app.NewWebhookService(
		stripeAdapter.NewVerifier(cfg.StripeWebhookSecret),
		tenants, store, validator, publisher, cfg.Fees, cfg.SupportEmail,
	)

	// --- Adapters (in) ---
	router := handler.NewRouter(handler.RouterConfig{
		Name:     serviceName,
		Version:  serviceVersion,
		Services: services,
		Webhooks: webhooks,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("settle listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-done:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}
