package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/papertrim/internal/api"
	"github.com/dgallion1/papertrim/internal/config"
	"github.com/dgallion1/papertrim/internal/fetch"
	"github.com/dgallion1/papertrim/internal/handoff"
	"github.com/dgallion1/papertrim/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if envErr != nil {
		log.Debug("no .env loaded", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateLoader(); err != nil {
		log.Warn("loader hand-off disabled", "reason", err)
	}

	// Initialize clients.
	stats := fetch.NewStats(cfg.StatsWindow)
	fetcher := fetch.NewClient(cfg.FetchTimeout, cfg.MaxDownloadBytes, stats)
	loader := handoff.NewClient(cfg.LoaderURL, cfg.LoaderAPIKey, cfg.LoaderTimeout)

	orch := pipeline.NewOrchestrator(fetcher, loader, log)
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.FetchTimeout + cfg.LoaderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		fetcher.Close()
		loader.Close()
	}()

	log.Info("starting papertrim", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
