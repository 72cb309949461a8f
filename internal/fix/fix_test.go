package fix

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"prosecheck/internal/diag"
	"prosecheck/internal/source"
)

const sample = "Hello world! How are you todday?\nIt make sense."

func sampleDiagnostics() []diag.Diagnostic {
	doc := source.NewDocument(sample)
	return []diag.Diagnostic{
		diag.New(diag.SevWarning, doc.RangeAt(25, 6), "Possible spelling mistake").WithSuggestions("today", "toddy"),
		diag.New(diag.SevInfo, doc.RangeAt(36, 4), "Agreement error").WithSuggestions("makes"),
	}
}

func titles(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Title
	}
	return out
}

func TestCorrelateOnDiagnosticLine(t *testing.T) {
	doc := source.NewDocument(sample)
	cursor := source.Range{Start: source.Position{Line: 0, Character: 2}, End: source.Position{Line: 0, Character: 2}}
	cands := Correlate(doc, sampleDiagnostics(), cursor)

	want := []string{`Add "todday" to dictionary`, "today", "toddy"}
	if got := titles(cands); !reflect.DeepEqual(got, want) {
		t.Fatalf("titles = %q, want %q", got, want)
	}
	if cands[0].Kind != KindAddWord || cands[0].Word != "todday" {
		t.Fatalf("unexpected add-word candidate %+v", cands[0])
	}
	edit := cands[1].Edit
	if edit.NewText != "today" || edit.Range != doc.RangeAt(25, 6) || edit.OldText != "todday" {
		t.Fatalf("unexpected edit %+v", edit)
	}
}

func TestCorrelateOffLine(t *testing.T) {
	doc := source.NewDocument(sample + "\n\nClean line.")
	r := source.Range{Start: source.Position{Line: 3, Character: 0}, End: source.Position{Line: 3, Character: 5}}
	if cands := Correlate(doc, sampleDiagnostics(), r); len(cands) != 0 {
		t.Fatalf("expected no candidates, got %q", titles(cands))
	}
}

func TestCorrelateGroupsAcrossDiagnostics(t *testing.T) {
	doc := source.NewDocument(sample)
	whole := source.Range{End: source.Position{Line: 1, Character: 14}}
	cands := Correlate(doc, sampleDiagnostics(), whole)
	want := []string{`Add "todday" to dictionary`, `Add "make" to dictionary`, "today", "toddy", "makes"}
	if got := titles(cands); !reflect.DeepEqual(got, want) {
		t.Fatalf("titles = %q, want %q", got, want)
	}
	if cands[1].Diagnostic != 1 || cands[4].Diagnostic != 1 {
		t.Fatalf("diagnostic indices not kept: %+v", cands)
	}
}

func TestCorrelateSkipsAddWordForPhrases(t *testing.T) {
	doc := source.NewDocument("It is a a test.")
	d := diag.New(diag.SevInfo, doc.RangeAt(6, 3), "Word repetition").WithSuggestions("a")
	cands := Correlate(doc, []diag.Diagnostic{d}, doc.RangeAt(0, 0))
	if got := titles(cands); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("titles = %q", got)
	}
}

func TestApplySkipsConflicts(t *testing.T) {
	doc := source.NewDocument(sample)
	edits := []TextEdit{
		{Range: doc.RangeAt(25, 6), NewText: "today", OldText: "todday"},
		{Range: doc.RangeAt(27, 2), NewText: "xx"},
		{Range: doc.RangeAt(36, 4), NewText: "makes", OldText: "mkae"},
		{Range: doc.RangeAt(0, 5), NewText: "Hi"},
	}
	res, err := Apply(doc, edits)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Text != "Hi world! How are you today?\nIt make sense." {
		t.Fatalf("text = %q", res.Text)
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 2 {
		t.Fatalf("applied %d skipped %d", len(res.Applied), len(res.Skipped))
	}
}

func TestApplyNothing(t *testing.T) {
	if _, err := Apply(source.NewDocument("x"), nil); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := source.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyFile(doc, sampleDiagnostics()); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "Hello world! How are you today?\nIt makes sense." {
		t.Fatalf("file = %q", got)
	}
}
