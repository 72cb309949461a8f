package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Parser wraps a goldmark instance configured for prose checking.
type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a CommonMark parser with strikethrough and bare-URL
// autolinks enabled. Constructs added by extra extensions that the tree has
// no kind for are kept as KindUnsupported nodes.
func NewParser(extra ...goldmark.Extender) *Parser {
	exts := append([]goldmark.Extender{extension.Strikethrough, extension.Linkify}, extra...)
	return &Parser{md: goldmark.New(goldmark.WithExtensions(exts...))}
}

var defaultParser = NewParser()

// Parse builds a tree with the default parser.
func Parse(content string) *Tree {
	return defaultParser.Parse(content)
}

// Parse builds the syntax tree of content. Node extents are byte offsets into
// Normalize(content), which Tree.Source returns.
func (p *Parser) Parse(content string) *Tree {
	input := []byte(content)
	fm, hasFM := SplitFrontMatter(content)
	if hasFM {
		blank(input[:fm.End])
	}

	t := &Tree{
		source:     Normalize(content),
		lineStarts: buildLineStarts(content),
	}
	root := t.add(KindDocument, -1)
	t.setExtent(root, 0, len(content))

	anchor := 0
	if hasFM {
		t.frontMatter = &fm
		i := t.add(KindFrontMatter, root)
		t.setExtent(i, 0, fm.End)
		anchor = fm.End
	}

	doc := p.md.Parser().Parse(text.NewReader(input))
	b := &builder{src: input, tree: t}
	b.children(doc, root, anchor)
	t.resolvePoints()
	return t
}

// builder maps goldmark nodes onto arena nodes. goldmark keeps exact source
// segments only for text and block lines, so the remaining extents are
// recovered from delimiter runs around children or from scans that start at
// the end of the previously placed node (the anchor). Every method returns
// the end offset of what it placed, which becomes the next anchor.
type builder struct {
	src  []byte
	tree *Tree
}

func (b *builder) children(n ast.Node, parent, anchor int) int {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		anchor = b.node(c, parent, anchor)
	}
	return anchor
}

func (b *builder) node(n ast.Node, parent, anchor int) int {
	switch n.Kind() {
	case ast.KindText:
		return b.text(n.(*ast.Text), parent, anchor)
	case ast.KindParagraph, ast.KindTextBlock:
		return b.paragraph(n, parent, anchor)
	case ast.KindHeading:
		return b.heading(n, parent, anchor)
	case ast.KindBlockquote:
		return b.blockQuote(n, parent, anchor)
	case ast.KindList:
		return b.list(n, parent, anchor)
	case ast.KindListItem:
		return b.listItem(n, parent, anchor)
	case ast.KindFencedCodeBlock:
		return b.fencedCode(n, parent, anchor)
	case ast.KindCodeBlock:
		start, end := b.linesExtent(n, anchor)
		return b.leaf(KindIndentedCodeBlock, parent, start, end)
	case ast.KindHTMLBlock:
		return b.htmlBlock(n.(*ast.HTMLBlock), parent, anchor)
	case ast.KindThematicBreak:
		start := b.skipBlockPrefix(anchor)
		return b.leaf(KindThematicBreak, parent, start, b.trimRight(start, b.lineEnd(start)))
	case ast.KindEmphasis:
		return b.emphasis(n.(*ast.Emphasis), parent, anchor)
	case east.KindStrikethrough:
		return b.strikethrough(n, parent, anchor)
	case ast.KindCodeSpan:
		return b.codeSpan(n, parent, anchor)
	case ast.KindLink:
		return b.link(n, parent, anchor)
	case ast.KindImage:
		return b.image(parent, anchor)
	case ast.KindAutoLink:
		return b.autoLink(n.(*ast.AutoLink), parent, anchor)
	case ast.KindRawHTML:
		return b.rawHTML(n.(*ast.RawHTML), parent, anchor)
	default:
		start := anchor
		if n.Type() == ast.TypeBlock {
			start = b.skipBlockPrefix(anchor)
		}
		i := b.tree.add(KindUnsupported, parent)
		b.tree.nodes[i].Name = n.Kind().String()
		b.tree.setExtent(i, start, start)
		return anchor
	}
}

func (b *builder) leaf(kind Kind, parent, start, end int) int {
	i := b.tree.add(kind, parent)
	end = max(start, end)
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) text(t *ast.Text, parent, anchor int) int {
	start := max(t.Segment.Start, anchor)
	end := b.leaf(KindText, parent, start, t.Segment.Stop)
	if !t.SoftLineBreak() && !t.HardLineBreak() {
		return end
	}
	nl := b.indexFrom(end, '\n')
	if nl < 0 {
		return end
	}
	kind := KindSoftLineBreak
	if t.HardLineBreak() {
		kind = KindHardLineBreak
	}
	return b.leaf(kind, parent, nl, nl+1)
}

func (b *builder) paragraph(n ast.Node, parent, anchor int) int {
	i := b.tree.add(KindParagraph, parent)
	start, end := b.linesExtent(n, anchor)
	end = max(end, b.children(n, i, start))
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) heading(n ast.Node, parent, anchor int) int {
	kind := KindATXHeading
	lines := n.Lines()
	var start, end int
	if lines.Len() > 0 {
		content := max(lines.At(0).Start, anchor)
		s := content
		for s > anchor && (b.src[s-1] == ' ' || b.src[s-1] == '\t') {
			s--
		}
		hashes := s
		for s > anchor && b.src[s-1] == '#' {
			s--
		}
		if s == hashes {
			kind = KindSetextHeading
			s = content
		}
		start = s
		if kind == KindSetextHeading {
			underline := min(b.lineEnd(lines.At(lines.Len()-1).Start)+1, len(b.src))
			end = b.trimRight(start, b.lineEnd(underline))
		} else {
			end = b.trimRight(start, b.lineEnd(start))
		}
	} else {
		start = b.skipBlockPrefix(anchor)
		end = b.trimRight(start, b.lineEnd(start))
	}

	i := b.tree.add(kind, parent)
	end = max(end, b.children(n, i, start))
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) blockQuote(n ast.Node, parent, anchor int) int {
	i := b.tree.add(KindBlockQuote, parent)
	start := b.skipSpace(anchor)
	end := b.children(n, i, min(start+1, len(b.src)))
	end = max(end, min(start+1, len(b.src)))
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) list(n ast.Node, parent, anchor int) int {
	i := b.tree.add(KindList, parent)
	end := b.children(n, i, anchor)
	start := anchor
	if kids := b.tree.nodes[i].Children; len(kids) > 0 {
		start = b.tree.nodes[kids[0]].Start
	}
	b.tree.setExtent(i, start, end)
	return max(start, end)
}

func (b *builder) listItem(n ast.Node, parent, anchor int) int {
	ordered := false
	if l, ok := n.Parent().(*ast.List); ok {
		ordered = l.IsOrdered()
	}
	start := b.skipBlockPrefix(anchor)
	marker := start
	if ordered {
		for marker < len(b.src) && b.src[marker] >= '0' && b.src[marker] <= '9' {
			marker++
		}
		if marker < len(b.src) && (b.src[marker] == '.' || b.src[marker] == ')') {
			marker++
		}
	} else if marker < len(b.src) {
		marker++
	}
	if marker < len(b.src) && (b.src[marker] == ' ' || b.src[marker] == '\t') {
		marker++
	}

	i := b.tree.add(KindListItem, parent)
	b.leaf(KindListMarker, i, start, marker)
	end := max(marker, b.children(n, i, marker))
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) fencedCode(n ast.Node, parent, anchor int) int {
	start := b.indexFence(anchor)
	if start < 0 {
		start = b.skipBlockPrefix(anchor)
		return b.leaf(KindFencedCodeBlock, parent, start, b.trimRight(start, b.lineEnd(start)))
	}
	fence := b.src[start]
	run := 0
	for start+run < len(b.src) && b.src[start+run] == fence {
		run++
	}

	lines := n.Lines()
	last := start
	if lines.Len() > 0 {
		last = max(last, lines.At(lines.Len()-1).Start)
	}
	end := b.trimRight(start, b.lineEnd(last))

	closing := b.lineEnd(last) + 1
	if closing < len(b.src) {
		lineEnd := b.lineEnd(closing)
		c := closing
		for c < lineEnd && (b.src[c] == ' ' || b.src[c] == '\t' || b.src[c] == '>') {
			c++
		}
		closeRun := 0
		for c+closeRun < lineEnd && b.src[c+closeRun] == fence {
			closeRun++
		}
		if closeRun >= run {
			end = b.trimRight(start, lineEnd)
		}
	}
	return b.leaf(KindFencedCodeBlock, parent, start, end)
}

func (b *builder) htmlBlock(h *ast.HTMLBlock, parent, anchor int) int {
	start, end := b.linesExtent(h, anchor)
	if h.HasClosure() {
		end = max(end, b.trimRight(start, h.ClosureLine.Stop))
	}
	return b.leaf(KindHTMLBlock, parent, start, end)
}

func (b *builder) emphasis(e *ast.Emphasis, parent, anchor int) int {
	kind := KindEmphasis
	if e.Level >= 2 {
		kind = KindStrongEmphasis
	}
	return b.delimited(kind, e, parent, anchor, e.Level)
}

func (b *builder) strikethrough(n ast.Node, parent, anchor int) int {
	i := b.tree.add(KindStrikethrough, parent)
	last := b.children(n, i, anchor)
	kids := b.tree.nodes[i].Children
	if len(kids) == 0 {
		b.tree.setExtent(i, anchor, anchor)
		return anchor
	}
	start := b.tree.nodes[kids[0]].Start
	run := 0
	for run < 2 && start > anchor && b.src[start-1] == '~' {
		start--
		run++
	}
	end := last
	for k := 0; k < run && end < len(b.src) && b.src[end] == '~'; k++ {
		end++
	}
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) delimited(kind Kind, n ast.Node, parent, anchor, width int) int {
	i := b.tree.add(kind, parent)
	last := b.children(n, i, anchor)
	kids := b.tree.nodes[i].Children
	if len(kids) == 0 {
		b.tree.setExtent(i, anchor, anchor)
		return anchor
	}
	start := max(b.tree.nodes[kids[0]].Start-width, anchor)
	end := min(last+width, len(b.src))
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) codeSpan(n ast.Node, parent, anchor int) int {
	first, _ := n.FirstChild().(*ast.Text)
	last, _ := n.LastChild().(*ast.Text)
	if first == nil || last == nil {
		start, end := b.scanCodeSpan(anchor)
		return b.leaf(KindCodeSpan, parent, start, end)
	}

	start := max(first.Segment.Start, anchor)
	if start-2 >= anchor && isSpaceOrNewline(b.src[start-1]) && b.src[start-2] == '`' {
		start--
	}
	run := 0
	for start > anchor && b.src[start-1] == '`' {
		start--
		run++
	}
	end := last.Segment.Stop
	if end+1 < len(b.src) && isSpaceOrNewline(b.src[end]) && b.src[end+1] == '`' {
		end++
	}
	for k := 0; k < run && end < len(b.src) && b.src[end] == '`'; k++ {
		end++
	}
	return b.leaf(KindCodeSpan, parent, start, end)
}

func (b *builder) scanCodeSpan(anchor int) (int, int) {
	start := b.indexFrom(anchor, '`')
	if start < 0 {
		return anchor, anchor
	}
	run := b.runLength(start, '`')
	i := start + run
	for {
		j := b.indexFrom(i, '`')
		if j < 0 {
			return start, start + run
		}
		r := b.runLength(j, '`')
		if r == run {
			return start, j + r
		}
		i = j + r
	}
}

func (b *builder) link(n ast.Node, parent, anchor int) int {
	start := b.indexFrom(anchor, '[')
	if start < 0 {
		start = anchor
	}
	i := b.tree.add(KindLink, parent)
	ti := b.tree.add(KindLinkText, i)
	last := b.children(n, ti, min(start+1, len(b.src)))
	textEnd := last
	if closeBr := b.indexFrom(last, ']'); closeBr >= 0 {
		textEnd = closeBr + 1
	}
	b.tree.setExtent(ti, start, textEnd)

	end := b.linkTail(textEnd)
	if end > textEnd {
		b.leaf(KindLinkDestination, i, textEnd, end)
	}
	b.tree.setExtent(i, start, end)
	return end
}

func (b *builder) image(parent, anchor int) int {
	start := anchor
	if j := bytes.Index(b.src[anchor:], []byte("![")); j >= 0 {
		start = anchor + j
	}
	textEnd := min(start+2, len(b.src))
	depth := 1
	for k := start + 2; k < len(b.src); k++ {
		switch b.src[k] {
		case '\\':
			k++
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			textEnd = k + 1
			break
		}
	}
	return b.leaf(KindImage, parent, start, b.linkTail(textEnd))
}

// linkTail returns the end of an inline destination "(...)" or reference
// label "[...]" starting at pos, or pos when neither follows.
func (b *builder) linkTail(pos int) int {
	if pos >= len(b.src) {
		return pos
	}
	switch b.src[pos] {
	case '(':
		depth := 0
		var quote byte
		angle := false
		for i := pos; i < len(b.src); i++ {
			c := b.src[i]
			switch {
			case c == '\\':
				i++
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case angle:
				if c == '>' {
					angle = false
				}
			case c == '<':
				angle = true
			case (c == '"' || c == '\'') && i > pos && isSpaceOrNewline(b.src[i-1]):
				quote = c
			case c == '(':
				depth++
			case c == ')':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
	case '[':
		if j := b.indexFrom(pos+1, ']'); j >= 0 {
			return j + 1
		}
	}
	return pos
}

func (b *builder) autoLink(a *ast.AutoLink, parent, anchor int) int {
	label := a.Label(b.src)
	j := bytes.Index(b.src[anchor:], label)
	if j < 0 {
		return b.leaf(KindAutolink, parent, anchor, anchor)
	}
	start := anchor + j
	return b.leaf(KindAutolink, parent, start, start+len(label))
}

func (b *builder) rawHTML(r *ast.RawHTML, parent, anchor int) int {
	segs := r.Segments
	if segs == nil || segs.Len() == 0 {
		return b.leaf(KindInlineHTML, parent, anchor, anchor)
	}
	start := max(segs.At(0).Start, anchor)
	return b.leaf(KindInlineHTML, parent, start, segs.At(segs.Len()-1).Stop)
}

func (b *builder) linesExtent(n ast.Node, anchor int) (int, int) {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return anchor, anchor
	}
	start := max(lines.At(0).Start, anchor)
	return start, b.trimRight(start, lines.At(lines.Len()-1).Stop)
}

func (b *builder) indexFrom(pos int, c byte) int {
	if pos >= len(b.src) {
		return -1
	}
	j := bytes.IndexByte(b.src[pos:], c)
	if j < 0 {
		return -1
	}
	return pos + j
}

// indexFence finds the first run of three backticks or tildes at or after pos.
func (b *builder) indexFence(pos int) int {
	for i := pos; i+2 < len(b.src); i++ {
		c := b.src[i]
		if (c == '`' || c == '~') && b.src[i+1] == c && b.src[i+2] == c {
			return i
		}
	}
	return -1
}

func (b *builder) runLength(pos int, c byte) int {
	n := 0
	for pos+n < len(b.src) && b.src[pos+n] == c {
		n++
	}
	return n
}

func (b *builder) lineEnd(pos int) int {
	if j := b.indexFrom(pos, '\n'); j >= 0 {
		return j
	}
	return len(b.src)
}

func (b *builder) skipSpace(pos int) int {
	for pos < len(b.src) && isSpaceOrNewline(b.src[pos]) {
		pos++
	}
	return pos
}

// skipBlockPrefix skips whitespace and block-quote markers.
func (b *builder) skipBlockPrefix(pos int) int {
	for pos < len(b.src) && (isSpaceOrNewline(b.src[pos]) || b.src[pos] == '>') {
		pos++
	}
	return pos
}

func (b *builder) trimRight(start, end int) int {
	end = min(end, len(b.src))
	for end > start && isSpaceOrNewline(b.src[end-1]) {
		end--
	}
	return end
}

func isSpaceOrNewline(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
