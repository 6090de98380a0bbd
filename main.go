package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"chem-trans-api/api"
	"chem-trans-api/config"
	"chem-trans-api/database"
	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/providers"
	"chem-trans-api/providers/europepmc"
	"chem-trans-api/providers/pubchem"
	"chem-trans-api/providers/pubmed"
	"chem-trans-api/providers/unpaywall"
	"chem-trans-api/services"
	"chem-trans-api/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := database.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		logging.Info("Running database auto-migration...")
		if err := database.Migrate(db.DB); err != nil {
			logging.Fatal("Auto-migration failed", zap.Error(err))
		}
		database.Seed(db.DB, logging)
	} else if err := database.MigrateOwned(db.DB); err != nil {
		logging.Warn("Submission log table could not be migrated", zap.Error(err))
	}

	// Setup Providers
	resolver := pubchem.NewResolver(cfg, logging)
	unpaywallFetcher := unpaywall.NewFetcher(cfg, logging)
	metadataProviders := []providers.MetadataProvider{
		europepmc.NewFetcher(cfg, logging),
		pubmed.NewFetcher(cfg, logging),
	}
	var pdfLocator providers.PDFLocator
	if cfg.UnpaywallEmail != "" {
		metadataProviders = append(metadataProviders, unpaywallFetcher)
		pdfLocator = unpaywallFetcher
	} else {
		logging.Info("UNPAYWALL_EMAIL not set, Unpaywall disabled.")
	}

	// Setup Services
	var store services.ObjectUploader
	if cfg.S3Enabled() {
		s3Store, err := storage.NewStore(context.Background(), cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		store = s3Store
	}
	transformations := services.NewTransformationService(cfg, db.DB, resolver, logging)
	enricher := services.NewEnricher(entity.NewGateway[models.Citation](db.DB, logging), metadataProviders, pdfLocator, logging)
	exporter := services.NewExporter(cfg, transformations, store, logging)

	// Setup Router
	router := api.NewRouter(api.Deps{
		Config:          cfg,
		DB:              db.DB,
		Driver:          db.Driver,
		Pinger:          db,
		Transformations: transformations,
		Enricher:        enricher,
		Exporter:        exporter,
		Logger:          logging,
	})

	// Setup Cron
	cronScheduler := cron.New()
	if err := exporter.Schedule(cronScheduler, cfg.ExportSchedule); err != nil {
		logging.Fatal("Cron setup failed", zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
}
