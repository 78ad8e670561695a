package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
	"github.com/dgallion1/docoutline/internal/patterns"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Heading families.
	registry := patterns.NewRegistry(log)
	if cfg.PatternDir != "" {
		r, err := patterns.NewRegistryWithDirectory(cfg.PatternDir, log)
		if err != nil {
			log.Error("loading pattern files", "dir", cfg.PatternDir, "error", err)
			os.Exit(1)
		}
		registry = r
	}
	log.Info("heading families loaded", "families", len(registry.Families()), "files", registry.Count())
	if cfg.PatternWatch {
		registry.SetOnChange(func(m *outline.Matcher) {
			log.Info("heading families reloaded", "families", len(m.Families()))
		})
		if err := registry.Watch(); err != nil {
			log.Error("watching pattern directory", "error", err)
			os.Exit(1)
		}
	}

	// Initialize clients.
	stats := extract.NewLLMStats(1 * time.Hour)
	extractor, err := extract.New(ctx, extract.Options{
		Provider:        cfg.Extractor,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		GoogleAPIKey:    cfg.GoogleAPIKey,
		GeminiModel:     cfg.GeminiModel,
		MaxChars:        cfg.MaxExtractChars,
		Stats:           stats,
	})
	if err != nil {
		log.Error("creating extractor", "error", err)
		os.Exit(1)
	}

	var ps *pathstore.Client
	if cfg.PathstoreEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	} else {
		log.Warn("PATHSTORE_API_KEY not set, outlines will not be persisted")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, extractor, ps, registry, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, registry, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
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

		orch.Stop()
		registry.StopWatch()
		if c, ok := extractor.(interface{ Close() }); ok {
			c.Close()
		}
		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting docoutline", "port", cfg.Port, "extractor", extractor.Name(), "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
