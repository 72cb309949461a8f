package markdown

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FrontMatterFormat names the metadata syntax of a front matter block.
type FrontMatterFormat string

const (
	FrontMatterYAML FrontMatterFormat = "yaml"
	FrontMatterTOML FrontMatterFormat = "toml"
)

// FrontMatter is a metadata block at the very top of a document, fenced by
// "---" (YAML) or "+++" (TOML) lines.
type FrontMatter struct {
	Format FrontMatterFormat
	Body   string
	// End is the byte offset just past the closing fence, before its line break.
	End int
}

// Decode unmarshals the block body into v.
func (fm FrontMatter) Decode(v any) error {
	var err error
	switch fm.Format {
	case FrontMatterYAML:
		err = yaml.Unmarshal([]byte(fm.Body), v)
	case FrontMatterTOML:
		err = toml.Unmarshal([]byte(fm.Body), v)
	default:
		return fmt.Errorf("unknown front matter format %q", fm.Format)
	}
	if err != nil {
		return fmt.Errorf("decode %s front matter: %w", fm.Format, err)
	}
	return nil
}

// SplitFrontMatter detects a front matter block at the start of content.
func SplitFrontMatter(content string) (FrontMatter, bool) {
	first, rest, ok := strings.Cut(content, "\n")
	if !ok {
		return FrontMatter{}, false
	}
	var format FrontMatterFormat
	var closers []string
	switch strings.TrimRight(first, " \t\r") {
	case "---":
		format, closers = FrontMatterYAML, []string{"---", "..."}
	case "+++":
		format, closers = FrontMatterTOML, []string{"+++"}
	default:
		return FrontMatter{}, false
	}

	offset := len(first) + 1
	bodyStart := offset
	for offset <= len(content) {
		line := rest
		next := ""
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, next = rest[:i], rest[i+1:]
		}
		trimmed := strings.TrimRight(line, " \t\r")
		for _, c := range closers {
			if trimmed == c {
				return FrontMatter{
					Format: format,
					Body:   content[bodyStart:offset],
					End:    offset + len(line),
				}, true
			}
		}
		if len(line) == len(rest) {
			break
		}
		offset += len(line) + 1
		rest = next
	}
	return FrontMatter{}, false
}
