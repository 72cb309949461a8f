// Package annotation flattens a markdown syntax tree into the ordered
// prose/markup segments a grammar engine checks.
package annotation

import "strings"

// SegmentKind distinguishes checked prose from excluded markup.
type SegmentKind uint8

const (
	KindProse SegmentKind = iota
	KindMarkup
)

// Segment is one piece of the annotated document.
//
// A prose segment carries Text, which is checked verbatim. A markup segment
// carries the source Literal, which is never checked; when InterpretAs is set
// the engine checks that string in its place.
type Segment struct {
	Kind        SegmentKind
	Text        string
	Literal     string
	InterpretAs string
}

// Prose returns a prose segment.
func Prose(text string) Segment { return Segment{Kind: KindProse, Text: text} }

// Markup returns a markup segment with no substitute.
func Markup(literal string) Segment { return Segment{Kind: KindMarkup, Literal: literal} }

// MarkupAs returns a markup segment checked as interpretAs.
func MarkupAs(literal, interpretAs string) Segment {
	return Segment{Kind: KindMarkup, Literal: literal, InterpretAs: interpretAs}
}

// Checkable is the segment's contribution to the checked text.
func (s Segment) Checkable() string {
	if s.Kind == KindProse {
		return s.Text
	}
	return s.InterpretAs
}

// Original is the segment's contribution to the source document.
func (s Segment) Original() string {
	if s.Kind == KindProse {
		return s.Text
	}
	return s.Literal
}

// Checkable concatenates the checkable contributions of segs.
func Checkable(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Checkable())
	}
	return sb.String()
}

// Original concatenates the source contributions of segs.
func Original(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Original())
	}
	return sb.String()
}
