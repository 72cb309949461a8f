package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"prosecheck/internal/check"
	"prosecheck/internal/config"
	"prosecheck/internal/diagfmt"
	"prosecheck/internal/driver"
)

// errFindings is returned when diagnostics were found and --fail-on-findings
// is set. The report has already been printed.
var errFindings = errors.New("findings reported")

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check markdown files and report grammar and spelling problems",
	Long: `Check markdown files. Directories are searched for *.md and *.markdown
files, skipping hidden directories. Without arguments the current directory
is checked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().String("color", "auto", "colorize output (auto|on|off)")
	checkCmd.Flags().String("ui", "auto", "show progress view (auto|on|off)")
	checkCmd.Flags().String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	checkCmd.Flags().Int("jobs", 0, "max parallel checks (0=auto)")
	checkCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics per file (0=all)")
	checkCmd.Flags().Int("suggestions", 3, "suggestions shown per diagnostic in pretty output")
	checkCmd.Flags().Bool("context", true, "show the flagged source line")
	checkCmd.Flags().Bool("fail-on-findings", true, "exit with status 1 when anything is found")
	checkCmd.Flags().Bool("fix", false, "apply the first suggestion of every diagnostic in place")
	checkCmd.Flags().String("language", "", "language code such as en-US, or auto")
	checkCmd.Flags().StringSlice("disable", nil, "additional rule IDs to disable")
}

type checkFlags struct {
	format         string
	color          string
	ui             uiMode
	pathMode       diagfmt.PathMode
	jobs           int
	maxDiagnostics int
	suggestions    int
	context        bool
	failOnFindings bool
	fix            bool
	language       string
	disable        []string
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var (
		f   checkFlags
		err error
	)
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, err
	}
	f.format = strings.ToLower(f.format)
	switch f.format {
	case "pretty", "short", "json":
	default:
		return f, fmt.Errorf("unsupported format %q (must be pretty, short or json)", f.format)
	}
	if f.color, err = flags.GetString("color"); err != nil {
		return f, err
	}
	if _, err = readColorMode(f.color); err != nil {
		return f, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return f, err
	}
	if f.pathMode, err = readPathMode(pathMode); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, err
	}
	if f.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return f, err
	}
	if f.suggestions, err = flags.GetInt("suggestions"); err != nil {
		return f, err
	}
	if f.context, err = flags.GetBool("context"); err != nil {
		return f, err
	}
	if f.failOnFindings, err = flags.GetBool("fail-on-findings"); err != nil {
		return f, err
	}
	if f.fix, err = flags.GetBool("fix"); err != nil {
		return f, err
	}
	if f.language, err = flags.GetString("language"); err != nil {
		return f, err
	}
	if f.language != "" {
		if err = config.ValidateLanguage(f.language); err != nil {
			return f, err
		}
	}
	if f.disable, err = flags.GetStringSlice("disable"); err != nil {
		return f, err
	}
	return f, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := driver.ListMarkdown(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", strings.Join(args, ", "))
	}

	env, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := env.engine.Start(ctx); err != nil {
		return fmt.Errorf("start languagetool: %w", err)
	}

	checker := env.checker
	if flags.language != "" || len(flags.disable) > 0 {
		opts := checker.Options()
		if flags.language != "" {
			opts.Language = flags.language
		}
		opts.DisabledRules = append(append([]string(nil), opts.DisabledRules...), flags.disable...)
		checker = checker.WithOptions(opts)
	}

	results, err := checkWithProgress(ctx, checker, files, driver.Options{
		Jobs:           flags.jobs,
		MaxDiagnostics: flags.maxDiagnostics,
		Fix:            flags.fix,
	}, shouldUseTUI(flags.ui) && flags.format == "pretty")
	if err != nil {
		return err
	}

	if err := report(cmd, results, flags); err != nil {
		return err
	}
	if flags.failOnFindings && (driver.Findings(results) > 0 || failedFiles(results) > 0) {
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return errFindings
	}
	return nil
}

func checkWithProgress(ctx context.Context, checker *check.Checker, files []string, opts driver.Options, useUI bool) ([]driver.FileResult, error) {
	if useUI {
		return runCheckWithUI(ctx, "checking", files, checker, opts)
	}
	return driver.CheckFiles(ctx, checker, files, opts)
}

func report(cmd *cobra.Command, results []driver.FileResult, flags checkFlags) error {
	out := cmd.OutOrStdout()
	baseDir, _ := os.Getwd()
	if flags.format == "json" {
		return diagfmt.JSON(out, results, diagfmt.JSONOpts{PathMode: flags.pathMode, BaseDir: baseDir})
	}
	if flags.format == "short" {
		diagfmt.Short(out, results, flags.pathMode, baseDir)
		return nil
	}

	colorMode, _ := readColorMode(flags.color)
	useColor := colorMode == colorOn || (colorMode == colorAuto && isTerminal(os.Stdout) && !color.NoColor)
	diagfmt.Pretty(out, results, diagfmt.PrettyOpts{
		Color:       useColor,
		PathMode:    flags.pathMode,
		BaseDir:     baseDir,
		Context:     flags.context,
		Suggestions: flags.suggestions,
	})

	findings := driver.Findings(results)
	failed := failedFiles(results)
	summary := fmt.Sprintf("%d file(s) checked, %d finding(s)", len(results), findings)
	if failed > 0 {
		summary += fmt.Sprintf(", %d file(s) failed", failed)
	}
	if flags.fix {
		applied, skipped := fixCounts(results)
		summary += fmt.Sprintf(", %d fix(es) applied, %d skipped", applied, skipped)
		for _, res := range results {
			if res.Fix == nil {
				continue
			}
			for _, s := range res.Fix.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: skipped fix %q: %s\n", filepath.ToSlash(res.Path), s.Edit.NewText, s.Reason)
			}
		}
	}
	fmt.Fprintln(out, summary)
	return nil
}

func failedFiles(results []driver.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func fixCounts(results []driver.FileResult) (applied, skipped int) {
	for _, r := range results {
		if r.Fix != nil {
			applied += len(r.Fix.Applied)
			skipped += len(r.Fix.Skipped)
		}
	}
	return applied, skipped
}

func readPathMode(value string) (diagfmt.PathMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return diagfmt.PathModeAuto, nil
	case "absolute", "abs":
		return diagfmt.PathModeAbsolute, nil
	case "relative", "rel":
		return diagfmt.PathModeRelative, nil
	case "basename", "base":
		return diagfmt.PathModeBasename, nil
	default:
		return diagfmt.PathModeAuto, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", value)
	}
}
