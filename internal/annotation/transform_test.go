package annotation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yuin/goldmark/extension"

	"prosecheck/internal/markdown"
)

var samples = []string{
	"",
	"Hello world! How are you todday?\nIt make sense.",
	"This is a document that supports **bold** text!",
	"Hello **world**, this is _good_!",
	"# Title\n\nFirst paragraph.\n\nSecond paragraph with a `code span`.\n",
	"- one\n- two\n  continued\n\n1. first\n2. second\n",
	"> quoted *text*  \n> more\n\nafter the quote",
	"Intro:\n\n```go\nfunc main() {}\n```\n\nOutro with [a link](http://example.com \"title\").",
	"---\nlanguage: en-US\n---\nBody ~~struck~~ text.\n\n***\n\nSetext\n======\n",
	"Line with trailing spaces   \nand a hard break\\\nnext <span>inline</span> html.\n\n<div>\nblock\n</div>\n",
	"    indented code\n\nSee ![img](a.png) and <https://example.org>.",
	"Emoji 🙂 before todday and www.example.com after.",
}

func TestReconstructsSource(t *testing.T) {
	for _, src := range samples {
		segs, err := FromMarkdown(src)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if got, want := Original(segs), markdown.Normalize(src); got != want {
			t.Fatalf("reconstruction mismatch\n got: %q\nwant: %q", got, want)
		}
	}
}

func TestPreservesLineCount(t *testing.T) {
	for _, src := range samples {
		segs, err := FromMarkdown(src)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		checked := Checkable(segs)
		if got, want := strings.Count(checked, "\n"), strings.Count(src, "\n"); got != want {
			t.Fatalf("%q: checked text has %d line breaks, source has %d (%q)", src, got, want, checked)
		}
	}
}

func TestBoldSegments(t *testing.T) {
	segs, err := FromMarkdown("This is a document that supports **bold** text!")
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	want := []Segment{
		Prose("This is a document that supports "),
		Markup("**"),
		Prose("bold"),
		Markup("**"),
		Prose(" text!"),
	}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segments:\n got %#v\nwant %#v", segs, want)
	}
}

func TestCheckableText(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"Hello **world**, this is _good_!", "Hello world, this is good!"},
		{"Use `todday` here", "Use  here"},
		{"See [the docs](http://x.y) now", "See the docs now"},
		{"a ~~b~~ c", "a b c"},
		{"# Heading\n\nBody", "Heading\n\nBody"},
		{"First.\n\nSecond.", "First.\n\nSecond."},
		{"```\ntodday\n```\nok", "\n\n\nok"},
	}
	for _, tc := range cases {
		segs, err := FromMarkdown(tc.src)
		if err != nil {
			t.Fatalf("%q: %v", tc.src, err)
		}
		if got := Checkable(segs); got != tc.want {
			t.Fatalf("Checkable(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestBlankLinesBecomeProse(t *testing.T) {
	segs, err := FromMarkdown("One.\n\nTwo.")
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	want := []Segment{Prose("One."), Prose("\n\n"), Prose("Two.")}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segments:\n got %#v\nwant %#v", segs, want)
	}
}

func TestListMarkerInterpretedAsBullet(t *testing.T) {
	segs, err := FromMarkdown("- item\n\n10. other")
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	var markers []Segment
	for _, s := range segs {
		if s.Kind == KindMarkup && s.InterpretAs != "" && !strings.Contains(s.InterpretAs, "\n") {
			markers = append(markers, s)
		}
	}
	if len(markers) == 0 {
		t.Fatalf("no list markers in %#v", segs)
	}
	if markers[0] != MarkupAs("- ", "• ") {
		t.Fatalf("first marker = %#v", markers[0])
	}
	for _, m := range markers {
		if len([]rune(m.InterpretAs)) != len([]rune(m.Literal)) {
			t.Fatalf("marker %q substituted by %q of different width", m.Literal, m.InterpretAs)
		}
	}
}

func TestCodeIsNeverProse(t *testing.T) {
	segs, err := FromMarkdown("Run `go vet` and\n\n```\nmake todday\n```\n")
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	for _, s := range segs {
		if s.Kind == KindProse && (strings.Contains(s.Text, "go vet") || strings.Contains(s.Text, "todday")) {
			t.Fatalf("code leaked into prose: %#v", s)
		}
	}
}

func TestBuildRejectsUnsupported(t *testing.T) {
	p := markdown.NewParser(extension.Table)
	tree := p.Parse("Intro\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	segs, err := Build(tree)
	if err == nil {
		t.Fatalf("expected an error, got %d segments", len(segs))
	}
	if segs != nil {
		t.Fatalf("partial output returned: %#v", segs)
	}
	var ue *UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("unexpected error type %T", err)
	}
	if ue.Kind != "Table" || ue.Pos.Row != 2 {
		t.Fatalf("unexpected error %+v", ue)
	}
	if !strings.Contains(err.Error(), `"Table" at 3:1`) {
		t.Fatalf("error text %q", err.Error())
	}
}

func TestEncode(t *testing.T) {
	segs := []Segment{Prose("Hi "), Markup("**"), MarkupAs("- ", "• ")}
	data, err := Encode(segs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"annotation":[{"text":"Hi "},{"markup":"**"},{"markup":"- ","interpretAs":"• "}]}`
	if string(data) != want {
		t.Fatalf("Encode = %s, want %s", data, want)
	}
	var back map[string][]map[string]string
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
}
