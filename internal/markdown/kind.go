package markdown

// Kind tags a syntax node. The set is closed: the provider maps every parser
// node onto one of these, and anything it cannot map becomes KindUnsupported.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindDocument
	KindFrontMatter
	KindParagraph
	KindATXHeading
	KindSetextHeading
	KindBlockQuote
	KindList
	KindListItem
	KindListMarker
	KindFencedCodeBlock
	KindIndentedCodeBlock
	KindHTMLBlock
	KindThematicBreak
	KindText
	KindSoftLineBreak
	KindHardLineBreak
	KindEmphasis
	KindStrongEmphasis
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindLinkText
	KindLinkDestination
	KindImage
	KindAutolink
	KindInlineHTML
)

var kindNames = [...]string{
	KindUnsupported:       "unsupported",
	KindDocument:          "document",
	KindFrontMatter:       "front_matter",
	KindParagraph:         "paragraph",
	KindATXHeading:        "atx_heading",
	KindSetextHeading:     "setext_heading",
	KindBlockQuote:        "block_quote",
	KindList:              "list",
	KindListItem:          "list_item",
	KindListMarker:        "list_marker",
	KindFencedCodeBlock:   "fenced_code_block",
	KindIndentedCodeBlock: "indented_code_block",
	KindHTMLBlock:         "html_block",
	KindThematicBreak:     "thematic_break",
	KindText:              "text",
	KindSoftLineBreak:     "soft_line_break",
	KindHardLineBreak:     "hard_line_break",
	KindEmphasis:          "emphasis",
	KindStrongEmphasis:    "strong_emphasis",
	KindStrikethrough:     "strikethrough",
	KindCodeSpan:          "code_span",
	KindLink:              "link",
	KindLinkText:          "link_text",
	KindLinkDestination:   "link_destination",
	KindImage:             "image",
	KindAutolink:          "autolink",
	KindInlineHTML:        "inline_html",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
