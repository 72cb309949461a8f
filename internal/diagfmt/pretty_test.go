package diagfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"prosecheck/internal/diag"
	"prosecheck/internal/driver"
	"prosecheck/internal/source"
)

func sampleResult() driver.FileResult {
	doc := source.NewDocument("# Title\n\nIt make sense.\n")
	return driver.FileResult{
		Path: "/home/user/notes/docs/intro.md",
		Doc:  doc,
		Diagnostics: []diag.Diagnostic{{
			Range:       source.Range{Start: source.Position{Line: 2, Character: 3}, End: source.Position{Line: 2, Character: 7}},
			Severity:    diag.SevWarning,
			Message:     "Possible agreement error.",
			Suggestions: []string{"makes", "made", "making"},
			RuleID:      "IT_VBZ",
			Category:    "Grammar",
			IssueType:   "grammar",
			Source:      diag.SourceLanguageTool,
		}},
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/notes/docs/intro.md:3:4"},
		{"Relative path", PathModeRelative, "docs/intro.md:3:4"},
		{"Basename only", PathModeBasename, "intro.md:3:4"},
		{"Auto inside base", PathModeAuto, "docs/intro.md:3:4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, []driver.FileResult{sampleResult()}, PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/notes"})
			if !strings.HasPrefix(buf.String(), tt.want+": ") {
				t.Fatalf("output %q does not start with %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatPathAutoOutsideBase(t *testing.T) {
	got := formatPath("/srv/other/readme.md", PathModeAuto, "/home/user/notes")
	if got != "/srv/other/readme.md" {
		t.Fatalf("expected absolute path outside base, got %q", got)
	}
}

func TestPrettyContextAndSuggestions(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, []driver.FileResult{sampleResult()}, PrettyOpts{
		PathMode:    PathModeBasename,
		Context:     true,
		Suggestions: 2,
	})
	want := "intro.md:3:4: warning IT_VBZ: Possible agreement error.\n" +
		"   3 | It make sense.\n" +
		"     |    ^~~~\n" +
		"     = suggestions: makes, made\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyUnderlineWideAndTabs(t *testing.T) {
	doc := source.NewDocument("\t日本 teh word\n")
	res := driver.FileResult{
		Path: "wide.md",
		Doc:  doc,
		Diagnostics: []diag.Diagnostic{{
			Range:    source.Range{Start: source.Position{Line: 0, Character: 4}, End: source.Position{Line: 0, Character: 7}},
			Severity: diag.SevError,
			Message:  "Possible spelling mistake found.",
		}},
	}
	var buf bytes.Buffer
	Pretty(&buf, []driver.FileResult{res}, PrettyOpts{PathMode: PathModeBasename, Context: true})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected context lines, got %q", buf.String())
	}
	if lines[0] != "wide.md:1:5: error: Possible spelling mistake found." {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[2] != "     | \t     ^~~" {
		t.Fatalf("unexpected underline %q", lines[2])
	}
}

func TestPrettyFileError(t *testing.T) {
	var buf bytes.Buffer
	res := driver.FileResult{Path: "missing.md", Err: errors.New("open missing.md: no such file or directory")}
	Pretty(&buf, []driver.FileResult{res}, PrettyOpts{PathMode: PathModeBasename})
	want := "missing.md: error: open missing.md: no such file or directory\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestPrettyColor(t *testing.T) {
	var plain, colored bytes.Buffer
	Pretty(&plain, []driver.FileResult{sampleResult()}, PrettyOpts{PathMode: PathModeBasename})
	Pretty(&colored, []driver.FileResult{sampleResult()}, PrettyOpts{PathMode: PathModeBasename, Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output contains escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape codes: %q", colored.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	results := []driver.FileResult{
		sampleResult(),
		{Path: "/home/user/notes/clean.md"},
		{Path: "/home/user/notes/gone.md", Err: errors.New("boom")},
	}
	Short(&buf, results, PathModeRelative, "/home/user/notes")
	want := "warning IT_VBZ docs/intro.md:3:4 Possible agreement error.\n" +
		"error - gone.md boom\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
