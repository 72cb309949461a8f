package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prosecheck/internal/config"
	"prosecheck/internal/lsp"
	"prosecheck/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the markdown grammar language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("stdio", true, "communicate over stdin/stdout (the only transport)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	env, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(cmdContext(cmd))
	defer cancel()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Checker:    env.checker,
		Debounce:   env.cfg.Debounce(),
		Ready:      env.engine.Ready(),
		Dictionary: env.engine,
		Cache:      env.store,
		Logger:     env.log,
		Version:    version.Version,
	})

	go func() {
		err := env.engine.Start(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		env.log.Error("languagetool did not start", "err", err)
		server.ReportEngineError(err)
		if env.cfg.Engine.URL != "" {
			env.log.Info("waiting for a server", "url", env.cfg.Engine.URL)
			_ = env.engine.Retry(ctx)
		}
	}()

	if env.cfg.Path != "" {
		go func() {
			err := config.Watch(ctx, env.cfg.Path, env.log, func(cfg *config.Config) {
				env.log.Info("config reloaded", "path", cfg.Path)
				server.ApplyConfig(cfg)
			})
			if err != nil {
				env.log.Warn("config watch disabled", "path", env.cfg.Path, "err", err)
			}
		}()
	}

	if err := server.Run(ctx); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
