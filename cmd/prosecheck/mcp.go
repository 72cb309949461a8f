package main

import (
	"context"

	"github.com/spf13/cobra"

	"prosecheck/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Run an MCP server exposing check_markdown over stdio",
	SilenceUsage: true,
	RunE:         runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	env, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(cmdContext(cmd))
	defer cancel()

	go func() {
		err := env.engine.Start(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		env.log.Error("languagetool did not start", "err", err)
		if env.cfg.Engine.URL == "" {
			// tools would wait for readiness forever
			cancel()
			return
		}
		env.log.Info("waiting for a server", "url", env.cfg.Engine.URL)
		_ = env.engine.Retry(ctx)
	}()

	server := mcpserver.New(mcpserver.Config{
		Checker: env.checker,
		Ready:   env.engine.Ready(),
		Logger:  env.log,
	})
	return server.Run(ctx)
}
