package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paneworks/glassquote/internal/catalog"
	"github.com/paneworks/glassquote/internal/config"
	"github.com/paneworks/glassquote/internal/db"
	"github.com/paneworks/glassquote/internal/logger"
	"github.com/paneworks/glassquote/internal/migrations"
	"github.com/paneworks/glassquote/internal/remote"
	"github.com/paneworks/glassquote/internal/seed"
)

type server struct {
	auth   *authService
	db     *sql.DB
	store  catalog.Store
	remote *remote.Client
	log    *slog.Logger
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}

	store := catalog.NewSQLStore(database)
	if cfg.IsDev() {
		stats, err := seed.Run(store)
		if err != nil {
			log.Error("seed catalog", "error", err)
			os.Exit(1)
		}
		log.Info("seeded catalog", "inserts", stats.Inserts)
	}

	auth := newAuthService(database, cfg.SessionSecret)
	if err := auth.ensureAdminUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("ensure admin user", "error", err)
		os.Exit(1)
	}

	srv := &server{auth: auth, db: database, store: store, log: log}
	if cfg.RemoteBaseURL != "" {
		srv.remote = remote.New(cfg.RemoteBaseURL)
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Post("/login", srv.handleLogin)
	r.Post("/logout", srv.handleLogout)

	r.Route("/glass", func(r chi.Router) {
		r.Get("/types", srv.handleGlassTypes)
		r.Get("/processing-categories", srv.handleProcessingCategories)
		r.Get("/processing-options", srv.handleProcessingOptions)
		r.Get("/suppliers", srv.handleSuppliers)
		r.Get("/templates", srv.handleTemplates)
		r.Get("/pricing-tiers", srv.handlePricingTiers)
		r.Get("/calculate-price", srv.handleCalculatePrice)
		r.Post("/calculate-price", srv.handleCalculatePrice)
		r.Get("/margin", srv.handleMarginConvert)
		r.Post("/quote-flow", srv.handleQuoteFlowState)

		r.Group(func(r chi.Router) {
			r.Use(srv.requireAdmin)
			r.Post("/types", srv.handleCreateGlassType)
			r.Put("/processing-options/{id}", srv.handleUpdateProcessingOption)
			r.Put("/customer-overrides/{customerId}", srv.handleSetCustomerOverrides)
			r.Post("/sku/confirm-pattern", srv.handleConfirmPattern)
			r.Post("/sku/generate", srv.handleGenerateSKUs)
		})
	})

	r.Get("/quotes", srv.handleQuotesList)
	r.Post("/quotes", srv.handleQuoteCreate)

	r.Group(func(r chi.Router) {
		r.Use(srv.requireAdmin)
		r.Get("/admin/export/price-list", srv.handleExportPriceList)
		r.Post("/admin/sync", srv.handleCatalogSync)
		r.Get("/admin/workflow", srv.handleAdminWorkflowState)
	})

	log.Info("listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
