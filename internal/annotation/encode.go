package annotation

import "encoding/json"

type wireItem struct {
	Text        string `json:"text,omitempty"`
	Markup      string `json:"markup,omitempty"`
	InterpretAs string `json:"interpretAs,omitempty"`
}

type wireAnnotation struct {
	Annotation []wireItem `json:"annotation"`
}

// Encode renders segs in the engine's "data" request format:
// {"annotation":[{"text":...},{"markup":...,"interpretAs":...}]}.
func Encode(segs []Segment) ([]byte, error) {
	items := make([]wireItem, 0, len(segs))
	for _, s := range segs {
		switch s.Kind {
		case KindProse:
			items = append(items, wireItem{Text: s.Text})
		case KindMarkup:
			items = append(items, wireItem{Markup: s.Literal, InterpretAs: s.InterpretAs})
		}
	}
	return json.Marshal(wireAnnotation{Annotation: items})
}
