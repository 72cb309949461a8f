package fix

import (
	"strings"
	"unicode"

	"prosecheck/internal/diag"
	"prosecheck/internal/source"
)

// Correlate returns the quick fixes for the diagnostics touching r.
//
// Diagnostics are selected by line only, since editors often send a bare
// cursor or a whole-line range. Add-word candidates come first, then
// replacements; both groups keep diagnostic order, and replacements keep the
// engine's suggestion order.
func Correlate(doc *source.Document, diags []diag.Diagnostic, r source.Range) []Candidate {
	var words, replacements []Candidate
	for i, d := range diags {
		if !source.Overlaps(d.Range, r, source.ByLine) {
			continue
		}
		flagged := ""
		if doc != nil {
			flagged = doc.Slice(d.Range)
		}
		for _, s := range d.Suggestions {
			c := ReplaceRange(s, d.Range, s, flagged)
			c.Diagnostic = i
			replacements = append(replacements, c)
		}
		if isWord(flagged) {
			c := AddWord(flagged)
			c.Diagnostic = i
			words = append(words, c)
		}
	}
	return append(words, replacements...)
}

func isWord(s string) bool {
	return s != "" && strings.IndexFunc(s, unicode.IsSpace) < 0
}
