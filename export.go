package htmltree

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// TreeExport is the structured form of one rendered tree.
type TreeExport struct {
	Tag        string            `toml:"tag"`
	Attributes []AttributeExport `toml:"attributes,omitempty"`
	Children   []TreeExport      `toml:"children,omitempty"`
}

// AttributeExport is one attribute; Tokens is set for token lists only.
type AttributeExport struct {
	Name   string   `toml:"name"`
	Value  string   `toml:"value"`
	Tokens []string `toml:"tokens,omitempty"`
}

// ExportDocument wraps all exported trees.
type ExportDocument struct {
	Source string       `toml:"source,omitempty"`
	Trees  []TreeExport `toml:"tree"`
}

// Exporter writes rendered trees in a configured format.
type Exporter struct {
	format   string
	renderer *TreeRenderer
	maxDepth int
}

// NewExporter creates an exporter for FormatText or FormatTOML.
func NewExporter(format string, opts *RenderOptions) *Exporter {
	if format == "" {
		format = FormatText
	}
	e := &Exporter{format: format, renderer: NewTreeRenderer(opts)}
	if opts != nil {
		e.maxDepth = opts.MaxDepth
	}
	return e
}

// Export writes roots to w. Text trees are separated by a blank line.
func (e *Exporter) Export(w io.Writer, source string, roots []*Node) error {
	switch e.format {
	case FormatText:
		for i, root := range roots {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return NewIOError("failed to write output", err)
				}
			}
			if err := e.renderer.Render(w, root); err != nil {
				return NewIOError("failed to write output", err)
			}
		}
		return nil

	case FormatTOML:
		if len(roots) == 0 {
			return nil
		}
		doc := ExportDocument{Source: source}
		for _, root := range roots {
			doc.Trees = append(doc.Trees, e.exportNode(root, 0))
		}
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return NewIOError("failed to encode toml output", err)
		}
		return nil
	}
	return NewValidationError(fmt.Sprintf("unsupported format %q", e.format))
}

func (e *Exporter) exportNode(n *Node, depth int) TreeExport {
	out := TreeExport{Tag: n.TagName}
	for _, a := range n.Attributes {
		attr := AttributeExport{Name: a.Name}
		if a.Value != nil {
			attr.Value = a.Value.String()
		}
		if tokens, ok := a.Value.(TokenList); ok {
			attr.Tokens = []string(tokens)
		}
		out.Attributes = append(out.Attributes, attr)
	}
	if e.maxDepth > 0 && depth >= e.maxDepth {
		return out
	}
	for _, c := range n.ElementChildren() {
		out.Children = append(out.Children, e.exportNode(c, depth+1))
	}
	return out
}
