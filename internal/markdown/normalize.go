package markdown

// Normalize blanks document decorations that must never reach the checker:
// trailing whitespace runs (spaces, tabs and a CR before the line feed) and
// leading block-quote markers. Each replaced byte becomes an ASCII space, so
// the result has the same length and the same line breaks as the input.
func Normalize(content string) string {
	buf := []byte(content)
	start := 0
	for start <= len(buf) {
		end := start
		for end < len(buf) && buf[end] != '\n' {
			end++
		}
		line := buf[start:end]
		blankQuoteMarkers(line)
		blankTrailingSpace(line)
		start = end + 1
	}
	return string(buf)
}

func blankQuoteMarkers(line []byte) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	for i < len(line) && line[i] == '>' {
		line[i] = ' '
		i++
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}
}

func blankTrailingSpace(line []byte) {
	for i := len(line) - 1; i >= 0; i-- {
		switch line[i] {
		case ' ', '\t', '\r':
			line[i] = ' '
		default:
			return
		}
	}
}

// blank replaces every byte except line feeds with a space.
func blank(buf []byte) {
	for i, c := range buf {
		if c != '\n' {
			buf[i] = ' '
		}
	}
}
