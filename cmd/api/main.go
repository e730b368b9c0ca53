package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"property_report/pkg/api"
	"property_report/pkg/core/agent"
	"property_report/pkg/core/config"
	"property_report/pkg/core/logging"
	"property_report/pkg/core/prompt"
	"property_report/pkg/core/report"
	"property_report/pkg/core/schema"
	"property_report/pkg/core/store"
	"property_report/resources"
)

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred cleanup, including the
// final logger sync, runs before main exits.
func start() int {
	// APP_CONFIG may point at an alternative config file
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] invalid configuration:\n%v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// Initialize Prompt Library
	prompts := prompt.NewRegistry()
	if cfg.ResourcesDir != "" {
		if err := prompts.LoadFromDirectory(cfg.ResourcesDir); err != nil {
			return fmt.Errorf("failed to load prompt library: %w", err)
		}
	} else if err := prompts.LoadFromFS(resources.FS); err != nil {
		return fmt.Errorf("failed to load embedded prompt library: %w", err)
	}
	logger.Info("prompt library loaded", zap.Int("prompts", prompts.Count()), zap.Int("schemas", prompts.SchemaCount()))

	contract, err := loadSchema(cfg.ResourcesDir)
	if err != nil {
		return err
	}
	if err := contract.CheckContract(); err != nil {
		return fmt.Errorf("report schema breaks the contract: %w", err)
	}

	archive, cache, cleanup, err := openStores(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	agents := agent.NewManager(cfg.LLM, logger)
	logger.Info("llm providers ready",
		zap.String("active", agents.GetActiveProvider()),
		zap.Strings("available", agents.Available()))

	svc, err := report.NewService(report.Deps{
		Agents:  agents,
		Prompts: prompts,
		Schema:  contract,
		Archive: archive,
		Cache:   cache,
		Logger:  logger,
	}, report.Options{
		Strict:              cfg.Report.Strict,
		CacheTTL:            cfg.Report.CacheTTL,
		Tolerance:           cfg.Report.Tolerance,
		HostedPromptID:      cfg.Report.HostedPromptID,
		HostedPromptVersion: cfg.Report.HostedPromptVersion,
	})
	if err != nil {
		return err
	}

	srv := api.NewServer(cfg.Server, svc, agents, logger)
	return srv.ListenAndServe(ctx, cfg.Addr())
}

func loadSchema(resourcesDir string) (*schema.Schema, error) {
	if resourcesDir == "" {
		return schema.Default()
	}
	data, err := os.ReadFile(filepath.Join(resourcesDir, schema.DefaultPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read report schema: %w", err)
	}
	return schema.Load(data)
}

// openStores prefers Postgres and Redis when configured. An unreachable Redis
// degrades to the in-process cache; an unreachable database is fatal.
func openStores(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*store.Archive, store.Cache, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	dir := cfg.ArchiveDir
	var archive *store.Archive
	if cfg.DatabaseURL != "" {
		pool, err := store.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanups = append(cleanups, pool.Close)
		if archive, err = store.NewArchive(pool, ""); err != nil {
			cleanup()
			return nil, nil, cleanup, err
		}
		if err := archive.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, cleanup, err
		}
	} else {
		var err error
		if archive, err = store.NewArchive(nil, dir); err != nil {
			return nil, nil, cleanup, err
		}
	}
	logger.Info("report archive ready", zap.String("backend", archive.Backend()))

	var cache store.Cache = store.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rc := store.NewRedisCache(cfg.RedisAddr)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, using in-process cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rc.Close()
		} else {
			cache = rc
			cleanups = append(cleanups, func() { _ = rc.Close() })
			logger.Info("response cache ready", zap.String("backend", "redis"))
		}
	}
	return archive, cache, cleanup, nil
}
