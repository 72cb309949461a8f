package annotation

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"prosecheck/internal/markdown"
)

// listBullet is what a list marker reads as in the checked text.
const listBullet = "•"

var widths = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// FromMarkdown parses content and builds its annotation.
func FromMarkdown(content string) ([]Segment, error) {
	return Build(markdown.Parse(content))
}

// Build walks tree in source order and returns its segments. The original
// contributions of the result reproduce tree.Source() exactly, so offsets
// into the annotated text are offsets into the document.
func Build(tree *markdown.Tree) ([]Segment, error) {
	w := &walker{tree: tree, src: tree.Source()}
	root := tree.Node(tree.Root())
	if err := w.children(root); err != nil {
		return nil, err
	}
	w.gap(len(w.src))
	return w.out, nil
}

type walker struct {
	tree   *markdown.Tree
	src    string
	cursor int
	out    []Segment
}

func (w *walker) children(n *markdown.Node) error {
	for _, c := range n.Children {
		if err := w.visit(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) visit(i int) error {
	n := w.tree.Node(i)
	w.gap(n.Start)

	switch n.Kind {
	case markdown.KindParagraph,
		markdown.KindLink,
		markdown.KindList,
		markdown.KindListItem,
		markdown.KindATXHeading,
		markdown.KindSetextHeading,
		markdown.KindBlockQuote:
		if err := w.children(n); err != nil {
			return err
		}
		w.gap(n.End)

	case markdown.KindStrongEmphasis,
		markdown.KindEmphasis,
		markdown.KindStrikethrough,
		markdown.KindLinkText:
		open := n.End
		if len(n.Children) > 0 {
			open = w.tree.Node(n.Children[0]).Start
		}
		w.markup(open)
		if err := w.children(n); err != nil {
			return err
		}
		w.markup(n.End)

	case markdown.KindCodeSpan,
		markdown.KindFencedCodeBlock,
		markdown.KindIndentedCodeBlock,
		markdown.KindHTMLBlock,
		markdown.KindInlineHTML,
		markdown.KindThematicBreak,
		markdown.KindLinkDestination,
		markdown.KindImage,
		markdown.KindFrontMatter:
		w.markup(n.End)

	case markdown.KindText, markdown.KindAutolink:
		if text := w.take(n.End); text != "" {
			w.out = append(w.out, Prose(text))
		}

	case markdown.KindSoftLineBreak, markdown.KindHardLineBreak:
		if text := w.take(n.End); text != "" {
			w.out = append(w.out, Prose(text))
		}

	case markdown.KindListMarker:
		if literal := w.take(n.End); literal != "" {
			w.out = append(w.out, MarkupAs(literal, bulletFor(literal)))
		}

	default:
		name := n.Kind.String()
		if n.Kind == markdown.KindUnsupported && n.Name != "" {
			name = n.Name
		}
		return &UnsupportedError{Kind: name, Pos: n.StartPos}
	}
	return nil
}

// take consumes the source up to end.
func (w *walker) take(end int) string {
	if end <= w.cursor {
		return ""
	}
	s := w.src[w.cursor:end]
	w.cursor = end
	return s
}

// markup consumes the source up to end as one markup segment. A literal that
// spans lines is checked as the same number of line breaks.
func (w *walker) markup(end int) {
	literal := w.take(end)
	if literal == "" {
		return
	}
	if n := strings.Count(literal, "\n"); n > 0 {
		w.out = append(w.out, MarkupAs(literal, strings.Repeat("\n", n)))
		return
	}
	w.out = append(w.out, Markup(literal))
}

// gap consumes the source between nodes: line break runs are prose, anything
// else on a line (indentation, quote padding, closing fences) is markup.
func (w *walker) gap(end int) {
	for w.cursor < end {
		stop := w.cursor
		if w.src[stop] == '\n' {
			for stop < end && w.src[stop] == '\n' {
				stop++
			}
			w.out = append(w.out, Prose(w.take(stop)))
			continue
		}
		for stop < end && w.src[stop] != '\n' {
			stop++
		}
		w.out = append(w.out, Markup(w.take(stop)))
	}
}

func bulletFor(literal string) string {
	pad := widths.StringWidth(literal) - widths.StringWidth(listBullet)
	if pad <= 0 {
		return listBullet
	}
	return listBullet + strings.Repeat(" ", pad)
}
