package htmltree

import (
	"strings"
	"testing"
)

func parseForTest(t *testing.T, mode, src string) *HTMLParser {
	t.Helper()
	p := NewHTMLParser(mode)
	if err := p.LoadFromString(src); err != nil {
		t.Fatalf("LoadFromString returned error: %v", err)
	}
	return p
}

func TestNewAttrValueClassifiesTokenLists(t *testing.T) {
	tests := []struct {
		tag, attr, raw string
		want           string
		tokens         bool
	}{
		{"div", "class", "  a   b\tc ", "a b c", true},
		{"div", "class", "", "", true},
		{"a", "rel", "nofollow  noopener", "nofollow noopener", true},
		{"link", "rev", "x y", "x y", true},
		{"td", "headers", "h1 h2", "h1 h2", true},
		{"div", "rel", "a  b", "a  b", false},
		{"div", "id", " x ", " x ", false},
		{"iframe", "sandbox", "allow-forms  allow-scripts", "allow-forms allow-scripts", true},
	}

	for _, tt := range tests {
		v := NewAttrValue(tt.tag, tt.attr, tt.raw)
		if got := v.String(); got != tt.want {
			t.Errorf("%s[%s]=%q: got %q, want %q", tt.tag, tt.attr, tt.raw, got, tt.want)
		}
		if _, ok := v.(TokenList); ok != tt.tokens {
			t.Errorf("%s[%s]: token list = %v, want %v", tt.tag, tt.attr, ok, tt.tokens)
		}
	}
}

func TestFromHTMLKeepsAttributeOrder(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral, `<html><body><div id="x" class="b a" data-k="v"></div></body></html>`)
	nodes, err := p.FindElements("div")
	if err != nil {
		t.Fatalf("FindElements returned error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected one div, got %d", len(nodes))
	}

	got := FormatLabel(nodes[0])
	want := `div (id="x", class="b a", data-k="v")`
	if got != want {
		t.Fatalf("unexpected label: got %q, want %q", got, want)
	}
}

func TestFromHTMLDuplicateAttributeLastValueWins(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral, `<html a="1" b="2" a="3"></html>`)
	if got := FormatLabel(p.Root()); got != `html (a="3", b="2")` {
		t.Fatalf("unexpected label: %q", got)
	}
}

func TestLiteralModeDoesNotInsertImpliedElements(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral, `<html><body><p>hi</p></body></html>`)
	root := p.Root()
	children := root.ElementChildren()
	if len(children) != 1 || children[0].TagName != "body" {
		t.Fatalf("expected only body under html, got %d children", len(children))
	}
}

func TestHTML5ModeNormalizesDocument(t *testing.T) {
	p := parseForTest(t, ParseModeHTML5, `<p>hi</p>`)
	lines := NewTreeRenderer(nil).Lines(p.Root())
	want := []string{"html", "├── head", "└── body", "    └── p"}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestLiteralModeVoidAndStrayTags(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral,
		`<!DOCTYPE html><html><body><img src="a.png"><p>x</span>y</p><hr></body></html>`)
	lines := NewTreeRenderer(nil).Lines(p.Root())
	want := []string{
		"html",
		"└── body",
		`    ├── img (src="a.png")`,
		"    ├── p",
		"    └── hr",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected lines:\n%s", strings.Join(lines, "\n"))
	}
}

func TestLiteralModeRawTextElements(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral,
		`<html><head><script>if (a < b) { document.write("<div>") }</script></head></html>`)
	lines := NewTreeRenderer(nil).Lines(p.Root())
	want := []string{"html", "└── head", "    └── script"}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestLiteralModeParsesMarkupInsideTextLikeElements(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral,
		`<html><head><title><b>x</b></title><style>p > a { color: red }</style></head>`+
			`<body><noscript><img src="p.gif"></noscript><iframe><p>x</p></iframe></body></html>`)
	lines := NewTreeRenderer(nil).Lines(p.Root())
	want := []string{
		"html",
		"├── head",
		"│   ├── title",
		"│   │   └── b",
		"│   └── style",
		"└── body",
		"    ├── noscript",
		`    │   └── img (src="p.gif")`,
		"    └── iframe",
		"        └── p",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected lines:\n%s", strings.Join(lines, "\n"))
	}
}

func TestNodeKindsAreConverted(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral, `<html>text<!-- c --><body></body></html>`)
	root := p.Root()
	kinds := make([]NodeKind, 0, len(root.Children))
	for _, c := range root.Children {
		kinds = append(kinds, c.Kind)
	}
	want := []NodeKind{TextNode, CommentNode, ElementNode}
	if len(kinds) != len(want) {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("child %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
	if root.CountElements() != 2 {
		t.Fatalf("expected 2 elements, got %d", root.CountElements())
	}
}

func TestNodeAttrLookup(t *testing.T) {
	p := parseForTest(t, ParseModeLiteral, `<html class=" a  b " lang="en"></html>`)
	root := p.Root()
	if v, ok := root.Attr("class"); !ok || v != "a b" {
		t.Fatalf("unexpected class: %q %v", v, ok)
	}
	if _, ok := root.Attr("missing"); ok {
		t.Fatal("expected missing attribute")
	}
}

func TestFromHTMLNil(t *testing.T) {
	if FromHTML(nil) != nil {
		t.Fatal("expected nil node")
	}
}
