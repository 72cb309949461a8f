package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"prosecheck/internal/diag"
	"prosecheck/internal/driver"
	"prosecheck/internal/source"
)

type palette struct {
	path, rule, gutter, underline, hint *color.Color
	severity                            map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:      color.New(color.Bold),
		rule:      color.New(color.Faint),
		gutter:    color.New(color.FgBlue),
		underline: color.New(color.FgYellow, color.Bold),
		hint:      color.New(color.FgGreen),
		severity: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.rule, p.gutter, p.underline, p.hint}
	for _, c := range p.severity {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes one block per diagnostic:
//
//	<path>:<line>:<col>: <severity> <RULE>: <message>
//	   3 | It make sense.
//	     |    ^~~~
//	     = suggestions: makes
//
// Lines and columns are one-based; columns count UTF-16 units as editors do.
// Files that failed are reported as "<path>: error: <err>".
func Pretty(w io.Writer, results []driver.FileResult, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, res := range results {
		path := formatPath(res.Path, opts.PathMode, opts.BaseDir)
		if res.Err != nil {
			fmt.Fprintf(w, "%s: %s %s\n", p.path.Sprint(path), p.severity[diag.SevError].Sprint("error:"), res.Err)
			continue
		}
		for _, d := range res.Diagnostics {
			sev := strings.ToLower(d.Severity.String())
			fmt.Fprintf(w, "%s: %s", p.path.Sprintf("%s:%d:%d", path, d.Range.Start.Line+1, d.Range.Start.Character+1), p.severity[d.Severity].Sprint(sev))
			if d.RuleID != "" {
				fmt.Fprintf(w, " %s", p.rule.Sprint(d.RuleID))
			}
			fmt.Fprintf(w, ": %s\n", d.Message)
			if opts.Context && res.Doc != nil {
				writeContext(w, p, res.Doc, d.Range)
			}
			if opts.Suggestions > 0 && len(d.Suggestions) > 0 {
				list := d.Suggestions
				if len(list) > opts.Suggestions {
					list = list[:opts.Suggestions]
				}
				fmt.Fprintf(w, "%s %s\n", p.gutter.Sprint("     ="), p.hint.Sprint("suggestions: "+strings.Join(list, ", ")))
			}
		}
	}
}

func writeContext(w io.Writer, p palette, doc *source.Document, r source.Range) {
	line := strings.TrimRight(doc.Line(r.Start.Line), "\r\n")
	lineStart := doc.ByteOffset(source.Position{Line: r.Start.Line})
	start := doc.ByteOffset(r.Start) - lineStart
	end := len(line)
	if r.End.Line == r.Start.Line {
		end = doc.ByteOffset(r.End) - lineStart
	}
	start = clamp(start, 0, len(line))
	end = clamp(end, start, len(line))

	marker := "^" + strings.Repeat("~", max(runewidth.StringWidth(line[start:end])-1, 0))
	fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%4d |", r.Start.Line+1), line)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprint("     |"), padding(line[:start]), p.underline.Sprint(marker))
}

// padding returns blanks as wide as prefix, keeping tabs so the underline
// lines up with the printed source.
func padding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteRune('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
