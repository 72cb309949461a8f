package source

// Granularity selects how precisely Overlaps compares two ranges.
type Granularity uint8

const (
	// ByCharacter requires the ranges to intersect on both the line and the
	// character axis.
	ByCharacter Granularity = iota
	// ByLine only compares line intervals. Code action requests from some
	// clients carry a cursor line without a reliable character.
	ByLine
)

// Overlaps reports whether a and b intersect.
//
// Both ranges are treated as closed intervals on both axes, so a zero-width
// range still overlaps any range containing its point. This differs from the
// half-open character convention used for edits on purpose.
//
// The caller must pass well-formed ranges (Start <= End component-wise);
// malformed input gives an unspecified result.
func Overlaps(a, b Range, g Granularity) bool {
	lines := a.Start.Line <= b.End.Line && a.End.Line >= b.Start.Line
	if g == ByLine {
		return lines
	}
	return lines && a.Start.Character <= b.End.Character && a.End.Character >= b.Start.Character
}
