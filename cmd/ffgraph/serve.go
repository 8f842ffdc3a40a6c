package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/ffgraph/internal/api"
	"github.com/mattjoyce/ffgraph/internal/config"
	"github.com/mattjoyce/ffgraph/internal/lock"
	"github.com/mattjoyce/ffgraph/internal/log"
	"github.com/mattjoyce/ffgraph/internal/pipeline"
	"github.com/mattjoyce/ffgraph/pkg/ffmpeg"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	listen := fs.String("listen", "", "Listen address (overrides api.listen)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	if *listen != "" {
		cfg.API.Listen = *listen
	}

	logger := log.WithComponent("main")
	logger.Info("ffgraph starting", "version", version, "config_dir", cfg.Dir)

	ops := ffmpeg.DefaultOperators()
	set, err := pipeline.LoadAndCompileDir(cfg.PipelinesRoot(), ops)
	if err != nil {
		logger.Error("failed to load pipelines", "dir", cfg.PipelinesRoot(), "error", err)
		return 1
	}
	logger.Info("pipelines loaded", "count", len(set.Pipelines))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One server owns a cache database at a time.
	if cfg.Cache.Enabled {
		l, err := lock.AcquirePIDLock(lock.PathFor(cfg.Resolve(cfg.Cache.Path)))
		if err != nil {
			logger.Error("failed to acquire cache lock", "error", err)
			return 1
		}
		defer func() { _ = l.Release() }()
		logger.Debug("cache lock acquired", "path", l.Path())
	}

	store, err := openCache(ctx, cfg)
	if err != nil {
		logger.Error("failed to open compile cache", "path", cfg.Cache.Path, "error", err)
		return 1
	}
	var compileCache api.CompileCache
	if store != nil {
		defer store.Close()
		compileCache = store
		logger.Info("compile cache opened", "path", cfg.Resolve(cfg.Cache.Path))
	}

	server := newServer(cfg, ops, set, compileCache)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("API server stopped", "error", err)
		return 1
	}
	logger.Info("ffgraph stopped")
	return 0
}

func newServer(cfg *config.Config, ops *graph.OperatorTable, set *pipeline.Set, c api.CompileCache) *api.Server {
	return api.New(
		api.Config{
			Listen:       cfg.API.Listen,
			APIKey:       cfg.API.APIKey,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
		},
		api.OperatorCompiler{Ops: ops},
		set,
		c,
		log.WithComponent("api"),
	)
}
