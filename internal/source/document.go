package source

import (
	"crypto/sha256"
	"os"
	"sort"
	"unicode/utf8"
)

// Flags encodes how a document's content was obtained.
type Flags uint8

const (
	// FlagVirtual marks content that did not come from disk (editor buffer, stdin, tests).
	FlagVirtual Flags = 1 << iota
	FlagHadBOM
	FlagNormalizedCRLF
)

// Document is an immutable text with a line index in both byte and UTF-16
// coordinates. It is built once per check and shared read-only.
type Document struct {
	Path  string
	Flags Flags

	text       string
	lineStarts []int // byte offset of each line start
	unitStarts []int // UTF-16 offset of each line start
	units      int   // total UTF-16 length
}

// NewDocument indexes text. The text is kept verbatim; no normalization is
// applied, so offsets computed against it match the caller's buffer.
func NewDocument(text string) *Document {
	d := &Document{
		text:       text,
		lineStarts: make([]int, 1, 16),
		unitStarts: make([]int, 1, 16),
		Flags:      FlagVirtual,
	}
	units := 0
	for i, r := range text {
		units += utf16Len(r)
		if r == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
			d.unitStarts = append(d.unitStarts, units)
		}
	}
	d.units = units
	return d
}

// ReadFile loads a document from disk, dropping a UTF-8 BOM and folding CRLF
// line endings.
func ReadFile(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	d := NewDocument(string(content))
	d.Path = path
	d.Flags = 0
	if hadBOM {
		d.Flags |= FlagHadBOM
	}
	if hadCRLF {
		d.Flags |= FlagNormalizedCRLF
	}
	return d, nil
}

// Text returns the document content.
func (d *Document) Text() string { return d.text }

// Hash returns the SHA-256 digest of the content.
func (d *Document) Hash() [32]byte { return sha256.Sum256([]byte(d.text)) }

// LineCount returns the number of lines; a trailing newline opens an empty last line.
func (d *Document) LineCount() int { return len(d.lineStarts) }

// Len returns the length of the content in UTF-16 code units.
func (d *Document) Len() int { return d.units }

// Line returns the content of a zero-based line without its line break.
func (d *Document) Line(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	if end < start {
		end = start
	}
	return d.text[start:end]
}

// PositionAt converts a UTF-16 offset from the start of the document into a
// line/character position. Offsets outside the document are clamped.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > d.units {
		offset = d.units
	}
	line := sort.Search(len(d.unitStarts), func(i int) bool { return d.unitStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line, Character: offset - d.unitStarts[line]}
}

// RangeAt converts a UTF-16 offset/length pair into a range.
func (d *Document) RangeAt(offset, length int) Range {
	return Range{Start: d.PositionAt(offset), End: d.PositionAt(offset + length)}
}

// ByteOffset converts a position into a byte offset. A character past the end
// of its line resolves to the line end; a line past the end resolves to the
// end of the document.
func (d *Document) ByteOffset(pos Position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	i := d.lineStarts[pos.Line]
	units := 0
	for i < len(d.text) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		if r == '\n' {
			break
		}
		need := utf16Len(r)
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}

// UTF16Offset converts a byte offset into a UTF-16 offset.
func (d *Document) UTF16Offset(byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(d.text) {
		return d.units
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > byteOffset }) - 1
	units := d.unitStarts[line]
	for _, r := range d.text[d.lineStarts[line]:byteOffset] {
		units += utf16Len(r)
	}
	return units
}

// Slice returns the text covered by r.
func (d *Document) Slice(r Range) string {
	start := d.ByteOffset(r.Start)
	end := d.ByteOffset(r.End)
	if end < start {
		return ""
	}
	return d.text[start:end]
}

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
