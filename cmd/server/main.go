package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/treeflat/internal/api"
	"github.com/dgallion1/treeflat/internal/archive"
	"github.com/dgallion1/treeflat/internal/condition"
	"github.com/dgallion1/treeflat/internal/config"
	"github.com/dgallion1/treeflat/internal/pipeline"
	"github.com/dgallion1/treeflat/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	vocab, err := condition.LoadFile(cfg.VocabularyFile)
	if err != nil {
		log.Error("invalid vocabulary", "file", cfg.VocabularyFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conv := &pipeline.Converter{
		Vocab:       vocab,
		Marker:      cfg.LevelMarker,
		Concurrency: cfg.MaxConcurrentTrees,
		Stats:       stats.NewLatency(time.Hour),
		Log:         log,
	}

	// Archive is optional; leave the interfaces nil when it is off.
	var (
		arch    pipeline.Archiver
		forests api.ForestStore
		client  *archive.Client
	)
	if cfg.ArchiveEnabled {
		client = archive.NewClient(cfg.ArchiveURL, cfg.ArchiveAPIKey)
		arch, forests = client, client
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, conv, arch, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, forests, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if client != nil {
			client.Close()
		}
	}()

	log.Info("starting treeflat",
		"port", cfg.Port,
		"archive", cfg.ArchiveEnabled,
		"features", len(vocab.Features()),
		"workers", cfg.WorkerCount,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
