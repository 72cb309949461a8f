package annotation

import (
	"fmt"

	"prosecheck/internal/markdown"
)

// UnsupportedError reports a syntax node the transformer has no rule for.
type UnsupportedError struct {
	Kind string
	Pos  markdown.Point
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported markdown construct %q at %d:%d", e.Kind, e.Pos.Row+1, e.Pos.Column+1)
}
