package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yuin/goldmark/extension"
)

func textsOf(t *Tree, kind Kind) []string {
	var out []string
	for i := 0; i < t.Len(); i++ {
		if t.Node(i).Kind == kind {
			out = append(out, t.Text(i))
		}
	}
	return out
}

func TestParseInlineExtents(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind Kind
		want []string
	}{
		{"strong", "This is a document that supports **bold** text!", KindStrongEmphasis, []string{"**bold**"}},
		{"strong-text", "This is a document that supports **bold** text!", KindText, []string{"This is a document that supports ", "bold", " text!"}},
		{"emphasis", "Hello _good_ day", KindEmphasis, []string{"_good_"}},
		{"strike", "a ~~gone~~ b", KindStrikethrough, []string{"~~gone~~"}},
		{"code-span", "Use `fmt.Println` here", KindCodeSpan, []string{"`fmt.Println`"}},
		{"link", "See [the docs](http://example.com) now", KindLink, []string{"[the docs](http://example.com)"}},
		{"link-text", "See [the docs](http://example.com) now", KindLinkText, []string{"[the docs]"}},
		{"link-dest", "See [the docs](http://example.com) now", KindLinkDestination, []string{"(http://example.com)"}},
		{"image", "An ![alt text](img.png) here", KindImage, []string{"![alt text](img.png)"}},
		{"autolink", "Go to <http://example.com> now", KindAutolink, []string{"http://example.com"}},
		{"inline-html", "a <b>bold</b> c", KindInlineHTML, []string{"<b>", "</b>"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := Parse(tc.src)
			if got := textsOf(tree, tc.kind); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("%s nodes: got %q, want %q", tc.kind, got, tc.want)
			}
		})
	}
}

func TestParseBlockExtents(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind Kind
		want []string
	}{
		{"atx", "# Title\n\nBody text", KindATXHeading, []string{"# Title"}},
		{"setext", "Title\n=====\n\nBody", KindSetextHeading, []string{"Title\n====="}},
		{"paragraphs", "One.\n\nTwo.", KindParagraph, []string{"One.", "Two."}},
		{"fenced", "Intro\n\n```go\nx := 1\n```\n\nafter", KindFencedCodeBlock, []string{"```go\nx := 1\n```"}},
		{"indented", "Intro\n\n    code line\n\nafter", KindIndentedCodeBlock, []string{"code line"}},
		{"thematic", "a\n\n***\n\nb", KindThematicBreak, []string{"***"}},
		{"bullets", "- one\n- two", KindListMarker, []string{"- ", "- "}},
		{"ordered", "1. one\n2. two", KindListMarker, []string{"1. ", "2. "}},
		{"soft-break", "line one\nline two", KindSoftLineBreak, []string{"\n"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := Parse(tc.src)
			if got := textsOf(tree, tc.kind); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("%s nodes: got %q, want %q", tc.kind, got, tc.want)
			}
		})
	}
}

func TestParseNavigation(t *testing.T) {
	tree := Parse("First paragraph.\n\nSecond paragraph.")
	root := tree.Node(tree.Root())
	if root.Kind != KindDocument || root.Parent != -1 {
		t.Fatalf("unexpected root: %+v", root)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(root.Children))
	}
	second := tree.Node(root.Children[1])
	if second.PrevSibling != root.Children[0] {
		t.Fatalf("prev sibling = %d, want %d", second.PrevSibling, root.Children[0])
	}
	if second.Parent != tree.Root() {
		t.Fatalf("parent = %d, want root", second.Parent)
	}
	if second.StartPos != (Point{Row: 2, Column: 0}) {
		t.Fatalf("second paragraph starts at %s", second.StartPos)
	}
	if tree.Node(root.Children[0]).PrevSibling != -1 {
		t.Fatalf("first child must have no previous sibling")
	}
}

func TestParseExtentsNest(t *testing.T) {
	src := strings.Join([]string{
		"# Heading with *emphasis*",
		"",
		"> Quoted **text** with `code`",
		"> and a second line.",
		"",
		"- item one [link](http://a.b)",
		"- item two",
		"  continued",
		"",
		"```",
		"block",
		"```",
		"",
		"Final ~~words~~ here.",
	}, "\n")
	tree := Parse(src)
	var walk func(i int)
	walk = func(i int) {
		n := tree.Node(i)
		if n.Start > n.End {
			t.Fatalf("%s has inverted extent %d..%d", n.Kind, n.Start, n.End)
		}
		prevEnd := n.Start
		for _, c := range n.Children {
			cn := tree.Node(c)
			if cn.Start < prevEnd {
				t.Fatalf("%s child %s starts at %d before %d", n.Kind, cn.Kind, cn.Start, prevEnd)
			}
			if cn.End > n.End {
				t.Fatalf("%s child %s ends at %d past %d", n.Kind, cn.Kind, cn.End, n.End)
			}
			prevEnd = cn.End
			walk(c)
		}
	}
	walk(tree.Root())
	if got := textsOf(tree, KindUnsupported); len(got) != 0 {
		t.Fatalf("unexpected unsupported nodes: %q", got)
	}
}

func TestParseFrontMatter(t *testing.T) {
	src := "---\nlanguage: de-DE\ndisabled_rules: [UPPERCASE_SENTENCE_START]\n---\n# Hallo"
	tree := Parse(src)
	if got := textsOf(tree, KindFrontMatter); !reflect.DeepEqual(got, []string{"---\nlanguage: de-DE\ndisabled_rules: [UPPERCASE_SENTENCE_START]\n---"}) {
		t.Fatalf("front matter nodes: %q", got)
	}
	if got := textsOf(tree, KindATXHeading); !reflect.DeepEqual(got, []string{"# Hallo"}) {
		t.Fatalf("heading nodes: %q", got)
	}
	if got := textsOf(tree, KindThematicBreak); len(got) != 0 {
		t.Fatalf("front matter fences parsed as breaks: %q", got)
	}
	fm, ok := tree.FrontMatter()
	if !ok {
		t.Fatalf("front matter not reported")
	}
	var opts struct {
		Language      string   `yaml:"language"`
		DisabledRules []string `yaml:"disabled_rules"`
	}
	if err := fm.Decode(&opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if opts.Language != "de-DE" || !reflect.DeepEqual(opts.DisabledRules, []string{"UPPERCASE_SENTENCE_START"}) {
		t.Fatalf("decoded %+v", opts)
	}
}

func TestSplitFrontMatterTOML(t *testing.T) {
	src := "+++\nlanguage = \"fr\"\n+++\nBonjour"
	fm, ok := SplitFrontMatter(src)
	if !ok {
		t.Fatalf("expected toml front matter")
	}
	if fm.Format != FrontMatterTOML || fm.End != len("+++\nlanguage = \"fr\"\n+++") {
		t.Fatalf("unexpected front matter %+v", fm)
	}
	var opts struct {
		Language string `toml:"language"`
	}
	if err := fm.Decode(&opts); err != nil || opts.Language != "fr" {
		t.Fatalf("decode: %v %+v", err, opts)
	}
}

func TestSplitFrontMatterRejects(t *testing.T) {
	for _, src := range []string{
		"",
		"no front matter",
		"---\nnever closed",
		"text\n---\nx\n---",
	} {
		if _, ok := SplitFrontMatter(src); ok {
			t.Fatalf("%q: unexpected front matter", src)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"trailing  \nnext\t", "trailing  \nnext "},
		{"crlf\r\nline", "crlf \nline"},
		{"> quoted", "  quoted"},
		{">> nested\n> > spaced", "   nested\n    spaced"},
		{"   > indented", "     indented"},
		{"    > code", "    > code"},
		{"a > b", "a > b"},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if len(got) != len(tc.in) {
			t.Fatalf("Normalize(%q) changed length", tc.in)
		}
		for i := range tc.in {
			if (tc.in[i] == '\n') != (got[i] == '\n') {
				t.Fatalf("Normalize(%q) moved a line break at %d", tc.in, i)
			}
		}
	}
}

func TestTreeSourceIsNormalized(t *testing.T) {
	tree := Parse("> quoted line  \n")
	if tree.Source() != "  quoted line  \n" {
		t.Fatalf("source = %q", tree.Source())
	}
	if got := textsOf(tree, KindText); !reflect.DeepEqual(got, []string{"quoted line"}) {
		t.Fatalf("text nodes: %q", got)
	}
}

func TestParseUnmappedKind(t *testing.T) {
	tree := NewParser(extension.Table).Parse("| a |\n|---|\n| 1 |\n")
	var names []string
	for i := 0; i < tree.Len(); i++ {
		if n := tree.Node(i); n.Kind == KindUnsupported {
			names = append(names, n.Name)
		}
	}
	if !reflect.DeepEqual(names, []string{"Table"}) {
		t.Fatalf("unsupported nodes: %q", names)
	}
}

func TestKindString(t *testing.T) {
	if KindStrongEmphasis.String() != "strong_emphasis" {
		t.Fatalf("got %q", KindStrongEmphasis.String())
	}
	if Kind(200).String() != "unknown" {
		t.Fatalf("got %q", Kind(200).String())
	}
}
