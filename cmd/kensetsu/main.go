package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kensetsu-erp/kensetsu-erp/internal/app"
	"github.com/kensetsu-erp/kensetsu-erp/internal/auth"
	"github.com/kensetsu-erp/kensetsu-erp/internal/documents"
	"github.com/kensetsu-erp/kensetsu-erp/internal/expenses"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/customers"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/projects"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/suppliers"
	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/cache"
	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/db"
	"github.com/kensetsu-erp/kensetsu-erp/internal/purchases"
	"github.com/kensetsu-erp/kensetsu-erp/internal/receipts"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
	"github.com/kensetsu-erp/kensetsu-erp/jobs"
	"github.com/kensetsu-erp/kensetsu-erp/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "kensetsu_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	receiptStore, err := receipts.NewStorage(cfg.ReceiptDir, cfg.ReceiptURL)
	if err != nil {
		logger.Error("init receipt storage", slog.Any("error", err))
		os.Exit(1)
	}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, csrfManager)

	expenseService := expenses.NewService(expenses.NewRepository(pool), auditLogger, idempotencyStore)
	expenseHandler := expenses.NewHandler(logger, expenseService, receiptStore)

	documentCache := documents.NewResponseCache(30 * time.Second)
	documentService := documents.NewService(documents.NewRepository(pool), auditLogger, cfg.TaxRate)
	documentHandler := documents.NewHandler(logger, documentService, documentCache)

	customerService := customers.NewService(customers.NewRepository(pool))
	customerHandler := customers.NewHandler(customerService)
	supplierHandler := suppliers.NewHandler(suppliers.NewService(suppliers.NewRepository(pool)))
	projectHandler := projects.NewHandler(projects.NewService(projects.NewRepository(pool)))

	purchaseService := purchases.NewService(purchases.NewRepository(pool), auditLogger)
	purchaseHandler := purchases.NewHandler(logger, purchaseService)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg unreachable, pdf export degraded", slog.Any("error", err))
	}
	pdfHandler := report.NewDocumentPDFHandler(logger, documentService, customerService, pdfClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = inspector.Close()
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		ExpenseHandler:  expenseHandler,
		DocumentHandler: documentHandler,
		CustomerHandler: customerHandler,
		SupplierHandler: supplierHandler,
		ProjectHandler:  projectHandler,
		PurchaseHandler: purchaseHandler,
		PDFHandler:      pdfHandler,
		JobHandler:      jobHandler,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
