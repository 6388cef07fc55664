package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gocatalog_api/config"
	"gocatalog_api/internal/catalog/app"
	"gocatalog_api/metrics"
	"gocatalog_api/pkg/dbconnect/postgres"
	"gocatalog_api/pkg/logger"
	"gocatalog_api/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the application config")
	metricsAddr := flag.String("metrics-addr", "", "optional listen address for Prometheus metrics")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
		// Without a config file the Postgres connection still comes from
		// the environment, but a feed location must be configured.
		cfg = &config.AppConfig{Postgres: *config.GetPostgresConfig()}
		cfg.Import.ApplyDefaults()
	}
	if cfg.Postgres.Host == "" {
		cfg.Postgres = *config.GetPostgresConfig()
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.MetricsHandler())
			if err := http.ListenAndServe(*metricsAddr, middleware.Prometheus(mux)); err != nil {
				log.Printf("metrics listener stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector := postgres.NewPgConnector(&cfg.Postgres)
	server := app.NewImportServer(connector, cfg, logger.NewLogger(nil, "IMPORT"))

	log.Printf("Started catalog import")
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Import run failed: %v", err)
	}
}
