package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"prosecheck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "prosecheck",
	Short: "Grammar and spell checking for markdown",
	Long: `prosecheck checks the prose of markdown documents with LanguageTool.
Markup and code are skipped; findings map back to exact source positions.
It runs as a language server, an MCP server, or a batch checker.`,
}

// main registers subcommands and persistent flags and executes the root command.
// Any command error exits with status 1.
func main() {
	// Версия для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("config", "", "path to a prosecheck.toml or .yaml config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("lt-url", "", "URL of a running LanguageTool server")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
