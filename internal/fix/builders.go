package fix

import (
	"fmt"

	"prosecheck/internal/source"
)

// CandidateKind classifies a quick fix.
type CandidateKind uint8

const (
	KindReplace CandidateKind = iota
	KindAddWord
)

func (k CandidateKind) String() string {
	switch k {
	case KindReplace:
		return "replace"
	case KindAddWord:
		return "addWord"
	}
	return "unknown"
}

// TextEdit replaces the text covered by Range. OldText, when set, guards the
// edit: it is only applied if the current text matches.
type TextEdit struct {
	Range   source.Range
	NewText string
	OldText string
}

// Candidate is one quick fix offered for a diagnostic. Replace candidates
// carry Edit; add-word candidates carry Word.
type Candidate struct {
	Title string
	Kind  CandidateKind
	Edit  TextEdit
	Word  string
	// Diagnostic indexes the diagnostic the candidate was derived from.
	Diagnostic int
}

// ReplaceRange creates a candidate that replaces rng with newText.
func ReplaceRange(title string, rng source.Range, newText, expect string) Candidate {
	return Candidate{
		Title: title,
		Kind:  KindReplace,
		Edit:  TextEdit{Range: rng, NewText: newText, OldText: expect},
	}
}

// AddWord creates a candidate that adds word to the engine's dictionary.
func AddWord(word string) Candidate {
	return Candidate{
		Title: fmt.Sprintf("Add %q to dictionary", word),
		Kind:  KindAddWord,
		Word:  word,
	}
}
