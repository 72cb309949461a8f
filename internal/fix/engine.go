package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"prosecheck/internal/diag"
	"prosecheck/internal/source"
)

// ErrNoFixes is returned when no edits were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// SkippedEdit records an edit that was not applied and why.
type SkippedEdit struct {
	Edit   TextEdit
	Reason string
}

// ApplyResult is the outcome of applying edits to one document.
type ApplyResult struct {
	Text    string
	Applied []TextEdit
	Skipped []SkippedEdit
}

type byteEdit struct {
	start, end int
	edit       TextEdit
}

// Apply applies edits to doc. Edits that overlap an earlier accepted edit or
// whose guard text does not match are skipped.
func Apply(doc *source.Document, edits []TextEdit) (*ApplyResult, error) {
	res := &ApplyResult{Text: doc.Text()}
	if len(edits) == 0 {
		return res, ErrNoFixes
	}

	accepted := make([]byteEdit, 0, len(edits))
	for _, e := range edits {
		be := byteEdit{start: doc.ByteOffset(e.Range.Start), end: doc.ByteOffset(e.Range.End), edit: e}
		switch {
		case be.end < be.start:
			res.Skipped = append(res.Skipped, SkippedEdit{Edit: e, Reason: "edit range out of order"})
		case e.OldText != "" && doc.Text()[be.start:be.end] != e.OldText:
			res.Skipped = append(res.Skipped, SkippedEdit{Edit: e, Reason: "existing text does not match expected content"})
		case conflictsWithExisting(accepted, be):
			res.Skipped = append(res.Skipped, SkippedEdit{Edit: e, Reason: "overlaps another edit"})
		default:
			accepted = append(accepted, be)
		}
	}
	if len(accepted) == 0 {
		return res, ErrNoFixes
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].start > accepted[j].start
	})
	working := []byte(doc.Text())
	for _, be := range accepted {
		suffix := append([]byte(nil), working[be.end:]...)
		working = append(append(working[:be.start], be.edit.NewText...), suffix...)
	}
	for i := len(accepted) - 1; i >= 0; i-- {
		res.Applied = append(res.Applied, accepted[i].edit)
	}
	res.Text = string(working)
	return res, nil
}

// PreferredEdits picks the first suggestion of every diagnostic that has one.
func PreferredEdits(doc *source.Document, diags []diag.Diagnostic) []TextEdit {
	edits := make([]TextEdit, 0, len(diags))
	for _, d := range diags {
		if len(d.Suggestions) == 0 {
			continue
		}
		edits = append(edits, TextEdit{Range: d.Range, NewText: d.Suggestions[0], OldText: doc.Slice(d.Range)})
	}
	return edits
}

// ApplyFile applies the preferred edits for diags to the file behind doc and
// writes it back, keeping its mode.
func ApplyFile(doc *source.Document, diags []diag.Diagnostic) (*ApplyResult, error) {
	if doc.Path == "" {
		return nil, fmt.Errorf("fix: document has no path")
	}
	res, err := Apply(doc, PreferredEdits(doc, diags))
	if err != nil {
		return res, err
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(doc.Path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(doc.Path, []byte(res.Text), mode); err != nil {
		return res, fmt.Errorf("write %s: %w", doc.Path, err)
	}
	return res, nil
}

func conflictsWithExisting(existing []byteEdit, cand byteEdit) bool {
	for _, prev := range existing {
		if spansConflict(prev, cand) {
			return true
		}
	}
	return false
}

// spansConflict treats spans as half-open. Two insertions never conflict; an
// insertion conflicts with a span that strictly contains its position.
func spansConflict(a, b byteEdit) bool {
	if a.start == a.end && b.start == b.end {
		return false
	}
	if a.start == a.end {
		return b.start <= a.start && a.start < b.end
	}
	if b.start == b.end {
		return a.start <= b.start && b.start < a.end
	}
	return a.start < b.end && b.start < a.end
}
