package htmltree

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// HTMLParser parses documents and locates the subtrees to render.
type HTMLParser struct {
	mode string
	doc  *goquery.Document
}

// NewHTMLParser creates a parser for the given parse mode. An empty mode
// means ParseModeLiteral.
func NewHTMLParser(mode string) *HTMLParser {
	if mode == "" {
		mode = ParseModeLiteral
	}
	return &HTMLParser{mode: mode}
}

// LoadFromString parses HTML from a string.
func (p *HTMLParser) LoadFromString(s string) error {
	return p.LoadFromReader(strings.NewReader(s))
}

// LoadFromFile parses HTML from a file.
func (p *HTMLParser) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return NewIOError(fmt.Sprintf("failed to open %s", filename), err)
	}
	defer file.Close()

	return p.LoadFromReader(file)
}

// LoadFromReader parses HTML from a reader.
func (p *HTMLParser) LoadFromReader(reader io.Reader) error {
	var (
		root *html.Node
		err  error
	)
	switch p.mode {
	case ParseModeLiteral:
		root, err = parseLiteral(reader)
	case ParseModeHTML5:
		root, err = html.Parse(reader)
	default:
		return NewValidationError(fmt.Sprintf("unsupported parse mode %q", p.mode))
	}
	if err != nil {
		return NewParseError("failed to parse HTML", err)
	}

	p.doc = goquery.NewDocumentFromNode(root)
	return nil
}

// Document returns the loaded goquery document, or nil before a load.
func (p *HTMLParser) Document() *goquery.Document {
	return p.doc
}

// RootElement returns the first html element of the document, or nil when
// the document has none.
func (p *HTMLParser) RootElement() *html.Node {
	if p.doc == nil {
		return nil
	}
	sel := p.doc.Find("html").First()
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// Root returns the document's root element as a Node, or nil.
func (p *HTMLParser) Root() *Node {
	return FromHTML(p.RootElement())
}

// FindElements returns the elements matching a CSS selector in document order.
func (p *HTMLParser) FindElements(selector string) ([]*Node, error) {
	if p.doc == nil {
		return nil, nil
	}
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, NewParseError(fmt.Sprintf("invalid CSS selector %q", selector), err)
	}
	return lo.Map(p.doc.FindMatcher(matcher).Nodes, func(n *html.Node, _ int) *Node {
		return FromHTML(n)
	}), nil
}

// QueryXPath returns the element nodes selected by an XPath expression.
func (p *HTMLParser) QueryXPath(expr string) ([]*Node, error) {
	if p.doc == nil || len(p.doc.Nodes) == 0 {
		return nil, nil
	}
	found, err := htmlquery.QueryAll(p.doc.Nodes[0], expr)
	if err != nil {
		return nil, NewParseError(fmt.Sprintf("invalid XPath expression %q", expr), err)
	}
	elements := lo.Filter(found, func(n *html.Node, _ int) bool {
		return n.Type == html.ElementNode
	})
	return lo.Map(elements, func(n *html.Node, _ int) *Node {
		return FromHTML(n)
	}), nil
}

// Roots picks the subtrees to render: CSS matches, XPath matches, or the
// document root. A document without a root yields no subtrees.
func (p *HTMLParser) Roots(selector, xpath string) ([]*Node, error) {
	switch {
	case strings.TrimSpace(selector) != "":
		return p.FindElements(selector)
	case strings.TrimSpace(xpath) != "":
		return p.QueryXPath(xpath)
	}
	if root := p.Root(); root != nil {
		return []*Node{root}, nil
	}
	return nil, nil
}
