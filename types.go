package htmltree

import (
	"strings"
	"time"
)

// NodeKind classifies a node in the document tree.
type NodeKind int

const (
	// ElementNode is a tag instance; the only kind that gets rendered.
	ElementNode NodeKind = iota
	// TextNode is character data.
	TextNode
	// CommentNode is an HTML comment.
	CommentNode
	// OtherNode covers doctypes, documents and anything else.
	OtherNode
)

func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "other"
	}
}

// AttrValue is either a Scalar or a TokenList.
type AttrValue interface {
	// String returns the display form of the value.
	String() string
	attrValue()
}

// Scalar is a plain attribute value, displayed verbatim.
type Scalar string

func (s Scalar) String() string { return string(s) }
func (Scalar) attrValue() {}

// TokenList is a space separated attribute value such as class.
type TokenList []string

// String joins the tokens with single spaces.
func (t TokenList) String() string { return strings.Join(t, " ") }
func (TokenList) attrValue() {}

// Attribute is one name/value pair in document order.
type Attribute struct {
	Name  string
	Value AttrValue
}

// Node is a read-only view of a parsed document node.
type Node struct {
	Kind       NodeKind
	TagName    string
	Attributes []Attribute
	Children   []*Node
	Data       string
}

// Page is a fetched document.
type Page struct {
	URL         string    `toml:"url"`
	StatusCode  int       `toml:"status_code"`
	ContentType string    `toml:"content_type"`
	FetchedAt   time.Time `toml:"fetched_at"`
	Body        []byte    `toml:"-"`
}
