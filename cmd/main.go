package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang-payment-sheet/config"
	"golang-payment-sheet/internal/services/payments"
	"golang-payment-sheet/internal/services/payments/handler"
	"golang-payment-sheet/internal/services/payments/providers"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stripeProvider, err := providers.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.APIBase)
	if err != nil {
		logger.Error("failed to init stripe provider", "error", err)
		os.Exit(1)
	}

	sessions := payments.NewService(stripeProvider,
		payments.WithLogger(logger),
		payments.WithOrphanCompensation(cfg.Checkout.CompensateOrphans),
	)
	router := handler.NewRouter(handler.NewHandler(sessions), cfg.Http.RequestTimeout)

	srv := &http.Server{
		Addr:              cfg.Http.Addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("server running", "addr", cfg.Http.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("failed to serve server", "error", serveErr)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
