package htmltree

import (
	"io"
	"strings"
)

// WriteTree parses htmlContent in literal mode and writes the tree of its
// html element to w. Documents without an html element write nothing.
func WriteTree(w io.Writer, htmlContent string) error {
	root, err := ParseRoot(htmlContent)
	if err != nil {
		return err
	}
	return NewTreeRenderer(nil).Render(w, root)
}

// TreeString is WriteTree into a string.
func TreeString(htmlContent string) (string, error) {
	var sb strings.Builder
	if err := WriteTree(&sb, htmlContent); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ParseRoot parses htmlContent in literal mode and returns its root element.
func ParseRoot(htmlContent string) (*Node, error) {
	parser := NewHTMLParser(ParseModeLiteral)
	if err := parser.LoadFromString(htmlContent); err != nil {
		return nil, err
	}
	return parser.Root(), nil
}
