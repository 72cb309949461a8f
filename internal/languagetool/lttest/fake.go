// Package lttest provides an in-process stand-in for a LanguageTool server.
package lttest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"prosecheck/internal/languagetool"
)

// Fake flags configured words when they appear in prose segments of the
// annotation, reporting offsets the way LanguageTool does: UTF-16 units into
// the annotated text with markup included.
type Fake struct {
	// Words maps a flagged word to its replacements.
	Words map[string][]string
	// IssueType is reported on every match; empty means "misspelling".
	IssueType string
	// Err, when set, fails every call.
	Err error

	mu       sync.Mutex
	requests []languagetool.CheckRequest
	added    []string
	gate     chan struct{}
}

// NewFake flags "todday" and "make" like a small English rule set.
func NewFake() *Fake {
	return &Fake{Words: map[string][]string{
		"todday": {"today"},
		"make":   {"makes"},
	}}
}

// SetErr replaces Err while checks may be running.
func (f *Fake) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// Hold makes every Check block until Release is called.
func (f *Fake) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
}

// Release unblocks held checks.
func (f *Fake) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

func (f *Fake) Requests() []languagetool.CheckRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]languagetool.CheckRequest(nil), f.requests...)
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *Fake) Added() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added...)
}

func (f *Fake) AddWord(_ context.Context, word string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.added = append(f.added, word)
	delete(f.Words, word)
	return nil
}

func (f *Fake) Check(ctx context.Context, req languagetool.CheckRequest) (*languagetool.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate, err := f.gate, f.Err
	words := make(map[string][]string, len(f.Words))
	for k, v := range f.Words {
		words[k] = v
	}
	issue := f.IssueType
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if issue == "" {
		issue = "misspelling"
	}

	var body struct {
		Annotation []struct {
			Text        *string `json:"text"`
			Markup      *string `json:"markup"`
			InterpretAs string  `json:"interpretAs"`
		} `json:"annotation"`
	}
	if err := json.Unmarshal(req.Data, &body); err != nil {
		return nil, &languagetool.RequestError{Endpoint: "/v2/check", Status: 400, Body: err.Error()}
	}

	resp := &languagetool.Response{Matches: []languagetool.Match{}}
	offset := 0
	for _, a := range body.Annotation {
		switch {
		case a.Text != nil:
			for _, w := range findWords(*a.Text) {
				repl, ok := words[w.text]
				if !ok {
					continue
				}
				m := languagetool.Match{
					Message:      fmt.Sprintf("Possible spelling mistake found: %q.", w.text),
					ShortMessage: "Spelling mistake",
					Offset:       offset + w.offset,
					Length:       units(w.text),
					Rule: languagetool.Rule{
						ID:        "MORFOLOGIK_RULE_EN_US",
						IssueType: issue,
						Category:  languagetool.Category{ID: "TYPOS", Name: "Possible Typo"},
					},
				}
				for _, r := range repl {
					m.Replacements = append(m.Replacements, languagetool.Replacement{Value: r})
				}
				resp.Matches = append(resp.Matches, m)
			}
			offset += units(*a.Text)
		case a.Markup != nil:
			offset += units(*a.Markup)
		}
	}
	return resp, nil
}

type word struct {
	text   string
	offset int // UTF-16 units from the start of the segment
}

func findWords(s string) []word {
	var (
		out   []word
		start = -1
		pos   int
		b     strings.Builder
	)
	flush := func() {
		if start >= 0 {
			out = append(out, word{text: b.String(), offset: start})
			b.Reset()
			start = -1
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || r == '\'' {
			if start < 0 {
				start = pos
			}
			b.WriteRune(r)
		} else {
			flush()
		}
		pos += utf16Len(r)
	}
	flush()
	return out
}

func units(s string) int { return len(utf16.Encode([]rune(s))) }

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
