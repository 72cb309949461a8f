package source

import "fmt"

// Position is a zero-based line/character pair. Character counts UTF-16
// code units, matching the editor protocol.
type Position struct {
	Line      int `json:"line" msgpack:"line"`
	Character int `json:"character" msgpack:"character"`
}

// Range is a start/end pair of positions. Editors treat End as exclusive in
// the character axis; Overlaps treats both ends as inclusive.
type Range struct {
	Start Position `json:"start" msgpack:"start"`
	End   Position `json:"end" msgpack:"end"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Empty reports whether the range has zero width.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}
