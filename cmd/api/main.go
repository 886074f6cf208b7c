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

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	cashflowStore "github.com/m-cagatin/rfmclothingshop/internal/cashflow/store"
	"github.com/m-cagatin/rfmclothingshop/internal/config"
	"github.com/m-cagatin/rfmclothingshop/internal/database"
	"github.com/m-cagatin/rfmclothingshop/internal/export"
	shopHttp "github.com/m-cagatin/rfmclothingshop/internal/http"
	authHandler "github.com/m-cagatin/rfmclothingshop/internal/http/auth"
	cashflowHandler "github.com/m-cagatin/rfmclothingshop/internal/http/cashflow"
	exportHandler "github.com/m-cagatin/rfmclothingshop/internal/http/export"
	importHandler "github.com/m-cagatin/rfmclothingshop/internal/http/importcsv"
	matchingHandler "github.com/m-cagatin/rfmclothingshop/internal/http/matching"
	"github.com/m-cagatin/rfmclothingshop/internal/http/middleware"
	orderHandler "github.com/m-cagatin/rfmclothingshop/internal/http/order"
	paymentHandler "github.com/m-cagatin/rfmclothingshop/internal/http/payment"
	"github.com/m-cagatin/rfmclothingshop/internal/importer"
	"github.com/m-cagatin/rfmclothingshop/internal/matching"
	matchingStore "github.com/m-cagatin/rfmclothingshop/internal/matching/store"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
	orderStore "github.com/m-cagatin/rfmclothingshop/internal/order/store"
	"github.com/m-cagatin/rfmclothingshop/internal/payment"
	paymentStore "github.com/m-cagatin/rfmclothingshop/internal/payment/store"
	"github.com/m-cagatin/rfmclothingshop/internal/reconcile"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
	userStore "github.com/m-cagatin/rfmclothingshop/internal/user/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	cashflowService := cashflow.NewService(cashflowStore.New(db), loc)

	queue, worker, err := reconcileQueue(ctx, cfg, cashflowService, logger)
	if err != nil {
		return err
	}

	var (
		orderService    = order.NewService(orderStore.New(db))
		paymentService  = payment.NewService(paymentStore.New(db), orderService, cashflowService, queue)
		matchingService = matching.NewService(matchingStore.New(db))
		importService   = importer.NewService(loc)
		exportService   = export.NewService(cashflowService)
		userService     = user.NewService(userStore.New(db), user.TokenConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
			TTL:    cfg.Auth.TokenTTL,
		})
	)

	if cfg.Auth.AdminEmail != "" {
		if _, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminName, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("ensuring admin account: %w", err)
		}
	}

	submitLimit, err := middleware.RateLimit(cfg.RateLimit.Payments)
	if err != nil {
		return err
	}

	router := shopHttp.New(shopHttp.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Tokens:         userService,
	}, shopHttp.Handlers{
		Auth:     authHandler.NewHandler(userService),
		Cashflow: cashflowHandler.NewHandler(cashflowService),
		Import:   importHandler.NewHandler(importService, cashflowService, matchingService),
		Rules:    matchingHandler.NewHandler(matchingService),
		Export:   exportHandler.NewHandler(exportService, cashflowService),
		Payments: paymentHandler.NewHandler(paymentService, userService, submitLimit),
		Orders:   orderHandler.NewHandler(orderService),
	})

	if worker != nil && cfg.Reconcile.Worker {
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Error("reconcile worker failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// reconcileQueue returns the SQS-backed queue when RECONCILE_QUEUE_URL is set. Without it, failed
// ledger postings are only logged and no worker runs.
func reconcileQueue(ctx context.Context, cfg *config.Config, ledger reconcile.Ledger, logger *slog.Logger) (payment.Queue, *reconcile.Worker, error) {
	if cfg.Reconcile.QueueURL == "" {
		return nil, nil, nil
	}

	client, err := reconcile.NewSQSClient(ctx, cfg.Reconcile.Region, cfg.Reconcile.AccessKeyID, cfg.Reconcile.SecretAccessKey)
	if err != nil {
		return nil, nil, err
	}

	queue := reconcile.NewSQSQueue(client, cfg.Reconcile.QueueURL)

	return queue, reconcile.NewWorker(client, cfg.Reconcile.QueueURL, ledger, logger), nil
}
