package htmltree

import (
	"errors"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements never take children.
var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Keygen: true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// parseLiteral builds a node tree straight from the tokenizer. Unlike
// html.Parse it never inserts implied elements, so the tree mirrors the
// markup as written.
func parseLiteral(r io.Reader) (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	stack := []*html.Node{doc}
	current := func() *html.Node { return stack[len(stack)-1] }

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return doc, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := &html.Node{
				Type:     html.ElementNode,
				DataAtom: tok.DataAtom,
				Data:     tok.Data,
				Attr:     tok.Attr,
			}
			current().AppendChild(el)
			if tt == html.StartTagToken && !voidElements[tok.DataAtom] {
				stack = append(stack, el)
				// Only script and style hold raw text; markup inside
				// title, noscript, iframe and the like is parsed.
				if tok.DataAtom != atom.Script && tok.DataAtom != atom.Style {
					z.NextIsNotRawText()
				}
			}

		case html.EndTagToken:
			tok := z.Token()
			// Close the nearest open element with that name; ignore strays.
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == tok.Data {
					stack = stack[:i]
					break
				}
			}

		case html.TextToken:
			current().AppendChild(&html.Node{Type: html.TextNode, Data: string(z.Text())})

		case html.CommentToken:
			current().AppendChild(&html.Node{Type: html.CommentNode, Data: string(z.Text())})

		case html.DoctypeToken:
			current().AppendChild(&html.Node{Type: html.DoctypeNode, Data: string(z.Text())})
		}
	}
}
