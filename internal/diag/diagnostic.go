package diag

import (
	"prosecheck/internal/source"
)

// SourceLanguageTool is the Source of every engine-produced diagnostic.
const SourceLanguageTool = "languagetool"

type Diagnostic struct {
	Range       source.Range `json:"range" msgpack:"range"`
	Severity    Severity     `json:"severity" msgpack:"severity"`
	Message     string       `json:"message" msgpack:"message"`
	Suggestions []string     `json:"suggestions,omitempty" msgpack:"suggestions"`
	RuleID      string       `json:"ruleId,omitempty" msgpack:"rule_id"`
	Category    string       `json:"category,omitempty" msgpack:"category"`
	IssueType   string       `json:"issueType,omitempty" msgpack:"issue_type"`
	Source      string       `json:"source" msgpack:"source"`
}
