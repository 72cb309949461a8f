package lsp

import (
	"prosecheck/internal/diag"
	"prosecheck/internal/source"
)

// applyChanges applies incremental or full-text changes in order. Ranges are
// resolved against the text as it stands after the preceding change.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		doc := source.NewDocument(text)
		start := doc.ByteOffset(fromLSPPosition(change.Range.Start))
		end := doc.ByteOffset(fromLSPPosition(change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

func fromLSPPosition(p position) source.Position {
	return source.Position{Line: p.Line, Character: p.Character}
}

func toLSPPosition(p source.Position) position {
	return position{Line: p.Line, Character: p.Character}
}

func fromLSPRange(r lspRange) source.Range {
	return source.Range{Start: fromLSPPosition(r.Start), End: fromLSPPosition(r.End)}
}

func toLSPRange(r source.Range) lspRange {
	return lspRange{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

// LSP DiagnosticSeverity values.
const (
	severityError       = 1
	severityWarning     = 2
	severityInformation = 3
)

func toLSPSeverity(s diag.Severity) int {
	switch s {
	case diag.SevError:
		return severityError
	case diag.SevWarning:
		return severityWarning
	default:
		return severityInformation
	}
}

func fromLSPSeverity(s int) diag.Severity {
	switch s {
	case severityError:
		return diag.SevError
	case severityWarning:
		return diag.SevWarning
	default:
		return diag.SevInfo
	}
}

func toLSPDiagnostic(d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    toLSPRange(d.Range),
		Severity: toLSPSeverity(d.Severity),
		Code:     d.RuleID,
		Source:   d.Source,
		Message:  d.Message,
	}
	if len(d.Suggestions) > 0 || d.IssueType != "" {
		out.Data = &diagnosticData{Suggestions: d.Suggestions, IssueType: d.IssueType}
	}
	return out
}

func toLSPDiagnostics(diags []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toLSPDiagnostic(d))
	}
	return out
}

// fromLSPDiagnostics recovers diagnostics a client echoed back. Only our own
// (source languagetool) entries are kept.
func fromLSPDiagnostics(list []lspDiagnostic) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, l := range list {
		if l.Source != "" && l.Source != diag.SourceLanguageTool {
			continue
		}
		d := diag.New(fromLSPSeverity(l.Severity), fromLSPRange(l.Range), l.Message)
		d.RuleID = l.Code
		if l.Data != nil {
			d.IssueType = l.Data.IssueType
			if len(l.Data.Suggestions) > 0 {
				d = d.WithSuggestions(l.Data.Suggestions...)
			}
		}
		out = append(out, d)
	}
	return out
}
