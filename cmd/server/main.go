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

	"github.com/sirupsen/logrus"

	"event-console/internal/catalog"
	"event-console/internal/config"
	"event-console/internal/database"
	"event-console/internal/handlers"
	"event-console/internal/logging"
	"event-console/internal/middleware"
	"event-console/internal/models"
	"event-console/internal/repositories"
	"event-console/internal/server"
	"event-console/internal/services"
)

func main() {
	models.RegisterGobTypes()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)
	ctx := context.Background()

	events, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.WithError(err).WithField("path", cfg.Catalog.Path).Warn("event catalog not loaded")
	}

	var (
		eventSource services.EventSource
		orders      services.OrderStore
		invoices    services.InvoiceStore
		health      *handlers.HealthHandler
	)

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		if events == nil {
			logger.WithError(err).Fatal("no database and no event catalog, nothing to sell")
		}
		logger.WithError(err).Warn("database unavailable, running in catalog mode with in-memory stores")

		eventSource = events
		orders = repositories.NewMemoryOrderStore()
		invoices = repositories.NewMemoryInvoiceStore()
		health = handlers.NewHealthHandler(nil, "catalog")
	} else {
		defer db.Close()
		logger.Info("database connection established")

		eventRepo := repositories.NewEventRepository(db.DB)
		if events != nil {
			eventSource = services.NewChainedEventSource(eventRepo, events)
		} else {
			eventSource = eventRepo
		}
		orders = repositories.NewOrderRepository(db.DB)
		invoices = repositories.NewInvoiceRepository(db.DB)
		health = handlers.NewHealthHandler(db.DB, "database")
	}

	storage := services.NewStorageFactory(cfg, logger).CreateStorageService(ctx)
	images := services.NewImageService(storage, cfg.Storage)
	pdf := services.NewPDFService()

	checkoutService := services.NewCheckoutService(eventSource, orders, pdf, logger)
	invoiceService := services.NewInvoiceService(services.InvoiceServiceDeps{
		Store:    invoices,
		Renderer: pdf,
		QR:       services.NewQRService(),
		Uploader: images,
		Fetcher:  services.NewHTTPImageFetcher(cfg.Storage.MaxUploadBytes),
	}, cfg.Invoice, logger)

	sessionDir := cfg.Session.Dir
	if sessionDir == "" {
		sessionDir = os.TempDir()
	}
	drafts := handlers.NewDraftStore(handlers.NewFilesystemStore(sessionDir, cfg.Session.Secret, cfg.Session.MaxAge, !cfg.IsDevelopment()))

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer limiter.Stop()

	router := server.NewRouter(server.Deps{
		Checkout:       handlers.NewCheckoutHandler(checkoutService, drafts, logger),
		Invoice:        handlers.NewInvoiceHandler(invoiceService, drafts, cfg.Storage.MaxUploadBytes, logger),
		Uploads:        handlers.NewUploadHandler(images, cfg.Storage.MaxUploadBytes, logger),
		Health:         health,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "env": cfg.Server.Env}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	logger.Info("server stopped")
}
