package htmltree

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// tokenListAttributes lists attributes whose value is a whitespace separated
// set of tokens. The "*" entry applies to every element.
var tokenListAttributes = map[string][]string{
	"*":      {"class", "accesskey", "dropzone"},
	"a":      {"rel", "rev"},
	"link":   {"rel", "rev"},
	"td":     {"headers"},
	"th":     {"headers"},
	"form":   {"accept-charset"},
	"object": {"archive"},
	"area":   {"rel"},
	"icon":   {"sizes"},
	"iframe": {"sandbox"},
	"output": {"for"},
}

// IsTokenListAttribute reports whether attr on tag holds a token list.
func IsTokenListAttribute(tag, attr string) bool {
	return lo.Contains(tokenListAttributes["*"], attr) || lo.Contains(tokenListAttributes[tag], attr)
}

// NewAttrValue classifies a raw attribute value for the given tag.
func NewAttrValue(tag, attr, raw string) AttrValue {
	if IsTokenListAttribute(tag, attr) {
		return TokenList(strings.Fields(raw))
	}
	return Scalar(raw)
}

// FromHTML converts a parsed html node and its descendants into a Node tree.
func FromHTML(n *html.Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{Kind: kindOf(n)}
	switch node.Kind {
	case ElementNode:
		node.TagName = qualifiedName(n)
		node.Attributes = convertAttributes(node.TagName, n.Attr)
	default:
		node.Data = n.Data
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.Children = append(node.Children, FromHTML(c))
	}
	return node
}

// ElementChildren returns the element children of n in document order.
func (n *Node) ElementChildren() []*Node {
	if n == nil {
		return nil
	}
	return lo.Filter(n.Children, func(c *Node, _ int) bool {
		return c != nil && c.Kind == ElementNode
	})
}

// CountElements counts n and its element descendants.
func (n *Node) CountElements() int {
	if n == nil || n.Kind != ElementNode {
		return 0
	}
	count := 1
	for _, c := range n.ElementChildren() {
		count += c.CountElements()
	}
	return count
}

// Attr returns the display value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	attr, ok := lo.Find(n.Attributes, func(a Attribute) bool { return a.Name == name })
	if !ok || attr.Value == nil {
		return "", ok
	}
	return attr.Value.String(), true
}

func kindOf(n *html.Node) NodeKind {
	switch n.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	case html.CommentNode:
		return CommentNode
	default:
		return OtherNode
	}
}

func qualifiedName(n *html.Node) string {
	if n.Namespace == "" || n.Namespace == "html" || n.Namespace == "svg" || n.Namespace == "math" {
		return n.Data
	}
	return n.Namespace + ":" + n.Data
}

// convertAttributes keeps the position of the first occurrence of a name and
// the value of its last occurrence.
func convertAttributes(tag string, attrs []html.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}

	index := make(map[string]int, len(attrs))
	result := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		value := NewAttrValue(tag, name, a.Val)
		if i, ok := index[name]; ok {
			result[i].Value = value
			continue
		}
		index[name] = len(result)
		result = append(result, Attribute{Name: name, Value: value})
	}
	return result
}
