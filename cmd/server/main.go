package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/puentecommerce/puente/internal"
	"github.com/puentecommerce/puente/internal/handler/api"
	"github.com/puentecommerce/puente/internal/middleware"
	"github.com/puentecommerce/puente/internal/router"
	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Choose the settings store. Without a database the server still
	// quotes with the built-in defaults; updates just don't survive a
	// restart.
	var store settings.Store
	if cfg.DatabaseUrl != "" {
		logger.Info("Connecting to database...")
		sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer sqlDB.Close()

		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		logger.Info("Database connection established")

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		store = settings.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory settings store")
		store = settings.NewMemoryStore()
	}

	// Initialize metrics
	metrics := middleware.NewMetrics(cfg.MetricsNamespace)
	pricingMetrics := telemetry.NewPricingMetrics(cfg.MetricsNamespace)

	// Initialize handlers
	quoteHandler := api.NewQuoteHandler(store, pricingMetrics, logger)
	settingsHandler := api.NewSettingsHandler(store, pricingMetrics, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		router.CORS(cfg.AllowedOrigins),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Pricing API
	r.Post("/api/checkout/quote", quoteHandler.CreateQuote)
	r.Get("/api/products/estimate", quoteHandler.Estimate)
	r.Get("/api/admin/pricing", settingsHandler.GetSettings)
	r.Put("/api/admin/pricing", settingsHandler.UpdateSettings)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting pricing server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
