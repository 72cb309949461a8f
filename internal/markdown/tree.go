package markdown

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Point is a zero-based row/column pair; Column counts bytes.
type Point struct {
	Row    uint32
	Column uint32
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Node is one entry of a Tree arena. Parent and PrevSibling are indices into
// the same arena (-1 when absent) and are only used for navigation.
type Node struct {
	Kind Kind
	// Name carries the parser's own kind name for KindUnsupported nodes.
	Name string

	Start    int // byte offset, inclusive
	End      int // byte offset, exclusive
	StartPos Point
	EndPos   Point

	Parent      int
	PrevSibling int
	Children    []int
}

// Tree is a read-only syntax tree stored as an arena. Node 0 is the document.
type Tree struct {
	source      string
	nodes       []Node
	lineStarts  []int
	frontMatter *FrontMatter
}

// Root returns the index of the document node.
func (t *Tree) Root() int { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// Source returns the normalized document text the extents refer to.
func (t *Tree) Source() string { return t.source }

// FrontMatter returns the document's front matter block, if any.
func (t *Tree) FrontMatter() (FrontMatter, bool) {
	if t.frontMatter == nil {
		return FrontMatter{}, false
	}
	return *t.frontMatter, true
}

// Text returns the source text covered by node i.
func (t *Tree) Text(i int) string {
	n := &t.nodes[i]
	return t.source[n.Start:n.End]
}

// PointAt converts a byte offset into a row/column point.
func (t *Tree) PointAt(offset int) Point {
	row := sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > offset }) - 1
	if row < 0 {
		row = 0
	}
	return Point{Row: toUint32(row), Column: toUint32(offset - t.lineStarts[row])}
}

func (t *Tree) add(kind Kind, parent int) int {
	idx := len(t.nodes)
	node := Node{Kind: kind, Parent: parent, PrevSibling: -1}
	if parent >= 0 {
		p := &t.nodes[parent]
		if n := len(p.Children); n > 0 {
			node.PrevSibling = p.Children[n-1]
		}
		p.Children = append(p.Children, idx)
	}
	t.nodes = append(t.nodes, node)
	return idx
}

func (t *Tree) setExtent(i, start, end int) {
	if end < start {
		end = start
	}
	n := &t.nodes[i]
	n.Start = start
	n.End = end
}

func (t *Tree) resolvePoints() {
	for i := range t.nodes {
		n := &t.nodes[i]
		n.StartPos = t.PointAt(n.Start)
		n.EndPos = t.PointAt(n.End)
	}
}

func buildLineStarts(src string) []int {
	out := make([]int, 1, 16)
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			out = append(out, i+1)
		}
	}
	return out
}

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("markdown position overflow: %w", err))
	}
	return v
}
