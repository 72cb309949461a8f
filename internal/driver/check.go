// Package driver checks many markdown files in parallel for the command line.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"prosecheck/internal/diag"
	"prosecheck/internal/fix"
	"prosecheck/internal/source"
)

// Checker grades one document.
type Checker interface {
	Check(ctx context.Context, text string) ([]diag.Diagnostic, error)
}

type Options struct {
	// Jobs bounds concurrent checks; zero or less means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps diagnostics kept per file; zero keeps all.
	MaxDiagnostics int
	// Fix writes the first suggestion of every diagnostic back to the file.
	Fix      bool
	Progress ProgressSink
}

// FileResult is the outcome for one file. Err is set when the file could
// not be read or checked; other files are unaffected.
type FileResult struct {
	Path        string
	Doc         *source.Document
	Diagnostics []diag.Diagnostic
	Fix         *fix.ApplyResult
	Err         error
	Elapsed     time.Duration
}

// Findings counts diagnostics across results.
func Findings(results []FileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Diagnostics)
	}
	return n
}

// CheckFiles checks files concurrently. Results keep the order of files.
// Only cancellation of ctx aborts the run.
func CheckFiles(ctx context.Context, checker Checker, files []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(gctx, checker, path, opts)
			if errors.Is(results[i].Err, context.Canceled) {
				return results[i].Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func checkFile(ctx context.Context, checker Checker, path string, opts Options) FileResult {
	start := time.Now()
	res := FileResult{Path: path}
	fail := func(stage Stage, err error) FileResult {
		res.Err = err
		res.Elapsed = time.Since(start)
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: res.Elapsed})
		return res
	}

	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	doc, err := source.ReadFile(path)
	if err != nil {
		return fail(StageRead, err)
	}
	res.Doc = doc

	emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusWorking})
	diags, err := checker.Check(ctx, doc.Text())
	if err != nil {
		return fail(StageCheck, fmt.Errorf("%s: %w", path, err))
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	for _, d := range diags {
		bag.Add(d)
	}
	bag.Sort()
	bag.Dedup()
	res.Diagnostics = bag.Items()

	if opts.Fix && len(res.Diagnostics) > 0 {
		emit(opts.Progress, Event{File: path, Stage: StageFix, Status: StatusWorking})
		applied, err := fix.ApplyFile(doc, res.Diagnostics)
		res.Fix = applied
		if err != nil && !errors.Is(err, fix.ErrNoFixes) {
			return fail(StageFix, err)
		}
	}

	res.Elapsed = time.Since(start)
	emit(opts.Progress, Event{
		File:        path,
		Stage:       StageCheck,
		Status:      StatusDone,
		Elapsed:     res.Elapsed,
		Diagnostics: len(res.Diagnostics),
	})
	return res
}
