package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// SeverityForIssue maps an engine issue type onto a severity: spelling
// mistakes warn, style and grammar hints inform.
func SeverityForIssue(issueType string) Severity {
	if issueType == "misspelling" {
		return SevWarning
	}
	return SevInfo
}
