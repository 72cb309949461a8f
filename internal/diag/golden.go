package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatShort renders diagnostics one per line as
// "severity RULE path:line:col message" with one-based line and column.
func FormatShort(path string, diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	path = normalizePath(path)
	var b strings.Builder
	for i, d := range diags {
		rule := d.RuleID
		if rule == "" {
			rule = "-"
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", severityLabel(d.Severity), rule, path,
			d.Range.Start.Line+1, d.Range.Start.Character+1, sanitizeMessage(d.Message))
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
