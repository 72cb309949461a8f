package check

import (
	"slices"
	"strconv"
	"strings"

	"prosecheck/internal/config"
	"prosecheck/internal/languagetool"
	"prosecheck/internal/markdown"
)

const (
	DefaultLanguage       = "auto"
	DefaultMaxSuggestions = 8
)

// Options are the engine parameters of a check.
type Options struct {
	Language      string
	MotherTongue  string
	DisabledRules []string
	EnabledRules  []string
	Level         string
	// MaxSuggestions caps suggestions per diagnostic; zero or less keeps all.
	MaxSuggestions int
}

// DefaultOptions mirrors the engine defaults the server ships with.
func DefaultOptions() Options {
	return Options{
		Language:       DefaultLanguage,
		DisabledRules:  slices.Clone(languagetool.DefaultDisabledRules),
		MaxSuggestions: DefaultMaxSuggestions,
	}
}

// OptionsFromConfig converts the [check] section of a config.
func OptionsFromConfig(c config.CheckConfig) Options {
	return Options{
		Language:       c.Language,
		MotherTongue:   c.MotherTongue,
		DisabledRules:  slices.Clone(c.DisabledRules),
		EnabledRules:   slices.Clone(c.EnabledRules),
		Level:          c.Level,
		MaxSuggestions: c.MaxSuggestions,
	}
}

// fingerprint is part of the cache key: two option sets with the same
// fingerprint produce the same engine request.
func (o Options) fingerprint() string {
	disabled := slices.Clone(o.DisabledRules)
	slices.Sort(disabled)
	enabled := slices.Clone(o.EnabledRules)
	slices.Sort(enabled)
	return strings.Join([]string{
		o.Language,
		o.MotherTongue,
		strings.Join(disabled, ","),
		strings.Join(enabled, ","),
		o.Level,
		strconv.Itoa(o.MaxSuggestions),
	}, "|")
}

func (o Options) request(data []byte) languagetool.CheckRequest {
	lang := o.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	return languagetool.CheckRequest{
		Data:          data,
		Language:      lang,
		MotherTongue:  o.MotherTongue,
		DisabledRules: o.DisabledRules,
		EnabledRules:  o.EnabledRules,
		Level:         o.Level,
	}
}

// documentOptions are the keys honoured in a document's front matter.
type documentOptions struct {
	Language      string   `yaml:"language" toml:"language"`
	DisabledRules []string `yaml:"disabled_rules" toml:"disabled_rules"`
}

// merge applies front matter on top of o. Disabled rules are added to the
// configured ones, never replacing them.
func (o Options) merge(fm markdown.FrontMatter) (Options, error) {
	var doc documentOptions
	if err := fm.Decode(&doc); err != nil {
		return o, err
	}
	if doc.Language != "" {
		if err := config.ValidateLanguage(doc.Language); err != nil {
			return o, err
		}
		o.Language = doc.Language
	}
	if len(doc.DisabledRules) > 0 {
		rules := slices.Clone(o.DisabledRules)
		for _, r := range doc.DisabledRules {
			if !slices.Contains(rules, r) {
				rules = append(rules, r)
			}
		}
		o.DisabledRules = rules
	}
	return o, nil
}
