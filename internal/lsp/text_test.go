package lsp

import "testing"

func TestApplyChanges(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		changes []textDocumentContentChangeEvent
		want    string
	}{
		{
			name:    "full replace",
			text:    "old",
			changes: []textDocumentContentChangeEvent{{Text: "new"}},
			want:    "new",
		},
		{
			name: "insert on second line",
			text: "one\ntwo\n",
			changes: []textDocumentContentChangeEvent{
				{Range: &lspRange{Start: position{1, 3}, End: position{1, 3}}, Text: "!"},
			},
			want: "one\ntwo!\n",
		},
		{
			name: "utf16 columns after astral rune",
			text: "😀 make",
			changes: []textDocumentContentChangeEvent{
				{Range: &lspRange{Start: position{0, 3}, End: position{0, 7}}, Text: "makes"},
			},
			want: "😀 makes",
		},
		{
			name: "sequential edits",
			text: "ab",
			changes: []textDocumentContentChangeEvent{
				{Range: &lspRange{Start: position{0, 0}, End: position{0, 1}}, Text: "xy"},
				{Range: &lspRange{Start: position{0, 3}, End: position{0, 3}}, Text: "z"},
			},
			want: "xybz",
		},
		{
			name: "range past end clamps",
			text: "a",
			changes: []textDocumentContentChangeEvent{
				{Range: &lspRange{Start: position{5, 0}, End: position{6, 0}}, Text: "b"},
			},
			want: "ab",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := applyChanges(tc.text, tc.changes); got != tc.want {
				t.Fatalf("applyChanges = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCanonicalURI(t *testing.T) {
	cases := map[string]string{
		"file:///a/b/../c.md":     "file:///a/c.md",
		"file:///a/my%20notes.md": "file:///a/my%20notes.md",
		"untitled:Untitled-1":     "untitled:Untitled-1",
	}
	for in, want := range cases {
		if got := canonicalURI(in); got != want {
			t.Fatalf("canonicalURI(%q) = %q, want %q", in, got, want)
		}
	}
}
