package diag

import "prosecheck/internal/source"

func New(sev Severity, rng source.Range, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Range:    rng,
		Message:  msg,
		Source:   SourceLanguageTool,
	}
}

func (d Diagnostic) WithSuggestions(values ...string) Diagnostic {
	d.Suggestions = append(d.Suggestions, values...)
	return d
}

func (d Diagnostic) WithRule(id, category, issueType string) Diagnostic {
	d.RuleID = id
	d.Category = category
	d.IssueType = issueType
	return d
}
