package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"prosecheck/internal/driver"
	"prosecheck/internal/source"
)

// DiagnosticJSON is one finding. Line and Column are one-based; Range is the
// zero-based LSP range.
type DiagnosticJSON struct {
	File        string       `json:"file"`
	Line        int          `json:"line"`
	Column      int          `json:"column"`
	Range       source.Range `json:"range"`
	Severity    string       `json:"severity"`
	Rule        string       `json:"rule,omitempty"`
	Category    string       `json:"category,omitempty"`
	IssueType   string       `json:"issue_type,omitempty"`
	Message     string       `json:"message"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// FileErrorJSON reports a file that could not be checked.
type FileErrorJSON struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// FixJSON summarizes edits written by --fix.
type FixJSON struct {
	File    string `json:"file"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
}

// DiagnosticsOutput is the root of the JSON document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Errors      []FileErrorJSON  `json:"errors,omitempty"`
	Fixes       []FixJSON        `json:"fixes,omitempty"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(results []driver.FileResult, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, res := range results {
		path := formatPath(res.Path, opts.PathMode, opts.BaseDir)
		if res.Err != nil {
			out.Errors = append(out.Errors, FileErrorJSON{File: path, Error: res.Err.Error()})
			continue
		}
		if res.Fix != nil {
			out.Fixes = append(out.Fixes, FixJSON{File: path, Applied: len(res.Fix.Applied), Skipped: len(res.Fix.Skipped)})
		}
		for _, d := range res.Diagnostics {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				break
			}
			out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
				File:        path,
				Line:        d.Range.Start.Line + 1,
				Column:      d.Range.Start.Character + 1,
				Range:       d.Range,
				Severity:    strings.ToLower(d.Severity.String()),
				Rule:        d.RuleID,
				Category:    d.Category,
				IssueType:   d.IssueType,
				Message:     d.Message,
				Suggestions: d.Suggestions,
			})
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes results as one indented JSON document.
func JSON(w io.Writer, results []driver.FileResult, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(results, opts))
}
