// Package main is the entry point for the doit CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"doit/internal/backend/dummyjson"
	"doit/internal/cli"
	"doit/internal/commands"
	"doit/internal/config"
	"doit/internal/connectivity"
	"doit/internal/logging"
	"doit/internal/store"
	"doit/internal/tasksync"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newClient)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newClient wires the sync client from config: the remote service, the
// durable cache, the connectivity probe and metrics.
func newClient(ctx context.Context, cfg *config.Config) (*tasksync.Client, error) {
	log := logging.New(os.Stderr, cfg.Debug)

	remote, err := dummyjson.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	probe, err := connectivity.New(cfg)
	if err != nil {
		return nil, err
	}

	return tasksync.New(tasksync.Options{
		Remote:     remote,
		Store:      openStore(cfg, log),
		Probe:      probe,
		Logger:     log,
		Metrics:    tasksync.NewMetrics(prometheus.NewRegistry()),
		FetchLimit: cfg.Remote.FetchLimit,
		OwnerID:    cfg.OwnerID,
	}), nil
}

// openStore opens the durable cache. A cache that cannot be opened (for
// example because another doit process holds its lock) degrades to no cache.
func openStore(cfg *config.Config, log *slog.Logger) store.Store {
	if !cfg.Cache.Enabled {
		return store.Nop{}
	}
	s, err := store.OpenBadger(store.BadgerConfig{
		Path:       cfg.CachePath(),
		SyncWrites: true,
		Logger:     log,
	})
	if err != nil {
		log.Warn("task cache unavailable, continuing without it", "path", cfg.CachePath(), "error", err)
		return store.Nop{}
	}
	return s
}
