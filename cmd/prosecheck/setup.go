package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"prosecheck/internal/cache"
	"prosecheck/internal/check"
	"prosecheck/internal/config"
	"prosecheck/internal/languagetool"
	"prosecheck/internal/logging"
)

// runtimeEnv is everything a command needs to check documents.
type runtimeEnv struct {
	cfg     *config.Config
	log     *slog.Logger
	engine  *languagetool.Engine
	store   *cache.Store
	checker *check.Checker
	closers []io.Closer
}

func (env *runtimeEnv) Close() {
	if env.engine != nil {
		if err := env.engine.Stop(); err != nil {
			env.log.Warn("stop languagetool", "err", err)
		}
	}
	for i := len(env.closers) - 1; i >= 0; i-- {
		_ = env.closers[i].Close()
	}
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	cfg, err := config.Load(wd, explicit)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	if v, _ := cmd.Flags().GetString("lt-url"); v != "" {
		cfg.Engine.URL = v
	}
	return cfg, nil
}

// newRuntime loads configuration and wires logger, engine, cache and checker.
// The engine is not started.
func newRuntime(cmd *cobra.Command) (*runtimeEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	env := &runtimeEnv{cfg: cfg, log: log, closers: []io.Closer{closer}}
	for _, w := range cfg.Warnings {
		log.Warn("config", "path", cfg.Path, "warning", w)
	}

	env.engine = languagetool.NewEngine(languagetool.EngineOptions{
		URL:          cfg.Engine.URL,
		Command:      cfg.Engine.Command,
		ReadyMarker:  cfg.Engine.ReadyMarker,
		StartTimeout: cfg.Engine.StartTimeout,
		Username:     cfg.Engine.Username,
		APIKey:       cfg.Engine.APIKey,
		Logger:       log,
	})

	if cfg.Cache.Enabled {
		store, err := openStore(cfg.Cache, log)
		if err != nil {
			log.Warn("result cache disabled", "err", err)
		} else {
			env.store = store
		}
	}

	env.checker = check.New(env.engine, check.OptionsFromConfig(cfg.Check)).
		WithCache(env.store).
		WithLogger(log)
	return env, nil
}

func openStore(cfg config.CacheConfig, log *slog.Logger) (*cache.Store, error) {
	var disk *cache.DiskCache
	if cfg.Disk {
		d, err := cache.OpenDiskCache(config.AppName)
		if err != nil {
			log.Warn("disk cache unavailable", "err", err)
		} else {
			disk = d
		}
	}
	return cache.NewStore(cfg.Entries, disk, log)
}
