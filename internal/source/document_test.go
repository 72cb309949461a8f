package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocumentPositionAt(t *testing.T) {
	doc := NewDocument("Hello world! How are you todday?\nIt make sense.")

	start := doc.PositionAt(25)
	end := doc.PositionAt(31)
	if start != (Position{Line: 0, Character: 25}) || end != (Position{Line: 0, Character: 31}) {
		t.Fatalf("unexpected range %s-%s", start, end)
	}

	second := doc.RangeAt(36, 4)
	if second != rng(1, 3, 1, 7) {
		t.Fatalf("unexpected second-line range %s", second)
	}
	if got := doc.Slice(second); got != "make" {
		t.Fatalf("unexpected slice %q", got)
	}
}

func TestDocumentUTF16(t *testing.T) {
	text := "a🙂b\ncafé 🙂 todday"
	doc := NewDocument(text)

	byteOff := strings.Index(text, "todday")
	units := doc.UTF16Offset(byteOff)
	pos := doc.PositionAt(units)
	// "café " is 5 units, the emoji 2, the space 1.
	if pos != (Position{Line: 1, Character: 8}) {
		t.Fatalf("unexpected position %s", pos)
	}
	if got := doc.ByteOffset(pos); got != byteOff {
		t.Fatalf("ByteOffset round trip: got %d, want %d", got, byteOff)
	}
	if doc.Len() != 4+1+13+1 {
		t.Fatalf("unexpected UTF-16 length %d", doc.Len())
	}
}

func TestDocumentClamping(t *testing.T) {
	doc := NewDocument("ab\ncd\n")
	if doc.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", doc.LineCount())
	}
	if got := doc.PositionAt(-4); got != (Position{}) {
		t.Fatalf("negative offset: %s", got)
	}
	if got := doc.PositionAt(100); got != (Position{Line: 2, Character: 0}) {
		t.Fatalf("offset past end: %s", got)
	}
	if got := doc.ByteOffset(Position{Line: 0, Character: 40}); got != 2 {
		t.Fatalf("character past line end: %d", got)
	}
	if got := doc.ByteOffset(Position{Line: 9}); got != len(doc.Text()) {
		t.Fatalf("line past end: %d", got)
	}
	if got := doc.Line(1); got != "cd" {
		t.Fatalf("Line(1) = %q", got)
	}
}

func TestReadFileNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFone\r\ntwo\r\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if doc.Text() != "one\ntwo\n" {
		t.Fatalf("unexpected content %q", doc.Text())
	}
	if doc.Flags&FlagHadBOM == 0 || doc.Flags&FlagNormalizedCRLF == 0 {
		t.Fatalf("unexpected flags %b", doc.Flags)
	}
}
