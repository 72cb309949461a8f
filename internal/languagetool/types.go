// Package languagetool talks to a LanguageTool HTTP server and manages the
// lifetime of a locally spawned one.
package languagetool

// CheckRequest is the form submitted to /v2/check.
type CheckRequest struct {
	// Data is an encoded annotation: {"annotation":[...]}.
	Data          []byte
	Language      string
	MotherTongue  string
	DisabledRules []string
	EnabledRules  []string
	Level         string
}

// Response is the body of a /v2/check reply.
type Response struct {
	Software Software `json:"software"`
	Language Language `json:"language"`
	// Matches is nil when the server omitted the field.
	Matches []Match `json:"matches"`
}

type Software struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	BuildDate  string `json:"buildDate"`
	APIVersion int    `json:"apiVersion"`
}

type Language struct {
	Name     string            `json:"name"`
	Code     string            `json:"code"`
	LongCode string            `json:"longCode,omitempty"`
	Detected *DetectedLanguage `json:"detectedLanguage,omitempty"`
}

type DetectedLanguage struct {
	Name       string  `json:"name"`
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// Match is one flagged span. Offset and Length count UTF-16 code units of
// the annotated document, markup included.
type Match struct {
	Message      string        `json:"message"`
	ShortMessage string        `json:"shortMessage"`
	Replacements []Replacement `json:"replacements"`
	Offset       int           `json:"offset"`
	Length       int           `json:"length"`
	Context      Context       `json:"context"`
	Sentence     string        `json:"sentence"`
	Rule         Rule          `json:"rule"`
}

type Replacement struct {
	Value            string `json:"value"`
	ShortDescription string `json:"shortDescription,omitempty"`
}

type Context struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Rule struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	IssueType   string   `json:"issueType"`
	Category    Category `json:"category"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
