// Package check turns a markdown document into positioned diagnostics by
// annotating it, submitting it to the grammar engine and mapping the
// engine's matches back to document coordinates.
package check

import (
	"context"
	"fmt"
	"log/slog"

	"prosecheck/internal/annotation"
	"prosecheck/internal/cache"
	"prosecheck/internal/diag"
	"prosecheck/internal/languagetool"
	"prosecheck/internal/markdown"
	"prosecheck/internal/observ"
	"prosecheck/internal/source"
)

// Engine grades an annotated document.
type Engine interface {
	Check(ctx context.Context, req languagetool.CheckRequest) (*languagetool.Response, error)
}

// Checker is immutable once built; the With methods return modified copies,
// so one checker may serve concurrent checks.
type Checker struct {
	engine Engine
	opts   Options
	cache  *cache.Store
	parser *markdown.Parser
	log    *slog.Logger
}

func New(engine Engine, opts Options) *Checker {
	return &Checker{engine: engine, opts: opts, log: slog.Default()}
}

func (c *Checker) Options() Options { return c.opts }

func (c *Checker) WithOptions(opts Options) *Checker {
	cp := *c
	cp.opts = opts
	return &cp
}

// WithCache enables result memoization. A nil store disables it.
func (c *Checker) WithCache(store *cache.Store) *Checker {
	cp := *c
	cp.cache = store
	return &cp
}

func (c *Checker) WithParser(p *markdown.Parser) *Checker {
	cp := *c
	cp.parser = p
	return &cp
}

func (c *Checker) WithLogger(log *slog.Logger) *Checker {
	cp := *c
	if log == nil {
		log = slog.Default()
	}
	cp.log = log
	return &cp
}

// Check grades text and returns its diagnostics in engine order. A failed
// check returns an error and leaves the cache untouched.
func (c *Checker) Check(ctx context.Context, text string) ([]diag.Diagnostic, error) {
	timer := observ.NewTimer()

	var (
		tree *markdown.Tree
		segs []annotation.Segment
	)
	err := timer.Track(observ.PhaseAnnotate, func() error {
		if c.parser != nil {
			tree = c.parser.Parse(text)
		} else {
			tree = markdown.Parse(text)
		}
		var err error
		segs, err = annotation.Build(tree)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	opts := c.opts
	if fm, ok := tree.FrontMatter(); ok {
		merged, err := opts.merge(fm)
		if err != nil {
			c.log.Warn("ignoring front matter options", "err", err)
		} else {
			opts = merged
		}
	}

	key := cache.KeyFor(text, opts.fingerprint())
	if diags, ok := c.cache.Get(key); ok {
		c.log.Debug("check served from cache", "diagnostics", len(diags))
		return diags, nil
	}

	data, err := annotation.Encode(segs)
	if err != nil {
		return nil, fmt.Errorf("encode annotation: %w", err)
	}

	var resp *languagetool.Response
	err = timer.Track(observ.PhaseEngine, func() error {
		var err error
		resp, err = c.engine.Check(ctx, opts.request(data))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}

	idx := timer.Begin(observ.PhaseMap)
	diags := toDiagnostics(source.NewDocument(text), resp.Matches, opts.MaxSuggestions)
	timer.End(idx, "")

	c.cache.Put(key, diags)
	c.log.Debug("check done", "matches", len(resp.Matches), "timings", timer)
	return diags, nil
}

// toDiagnostics maps matches through doc's line index. Match offsets are
// UTF-16 units into the annotated text, which reproduces the document.
func toDiagnostics(doc *source.Document, matches []languagetool.Match, maxSuggestions int) []diag.Diagnostic {
	if len(matches) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(matches))
	for _, m := range matches {
		msg := m.Message
		if msg == "" {
			msg = m.ShortMessage
		}
		replacements := m.Replacements
		if maxSuggestions > 0 && len(replacements) > maxSuggestions {
			replacements = replacements[:maxSuggestions]
		}
		values := make([]string, 0, len(replacements))
		for _, r := range replacements {
			values = append(values, r.Value)
		}
		d := diag.New(diag.SeverityForIssue(m.Rule.IssueType), doc.RangeAt(m.Offset, m.Length), msg).
			WithRule(m.Rule.ID, m.Rule.Category.Name, m.Rule.IssueType)
		if len(values) > 0 {
			d = d.WithSuggestions(values...)
		}
		out = append(out, d)
	}
	return out
}
