package htmltree

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Branch glyphs.
const (
	connectorMid  = "├── "
	connectorLast = "└── "
	indentLink    = "│   "
	indentBlank   = "    "
)

// RenderOptions controls tree rendering.
type RenderOptions struct {
	// MaxDepth limits how many levels below the root are rendered.
	// Zero means unlimited.
	MaxDepth int
}

// TreeRenderer renders element nodes as a connected ASCII tree.
// A TreeRenderer holds no per-render state and is safe for concurrent use.
type TreeRenderer struct {
	opts RenderOptions
}

// NewTreeRenderer creates a renderer. opts may be nil.
func NewTreeRenderer(opts *RenderOptions) *TreeRenderer {
	r := &TreeRenderer{}
	if opts != nil {
		r.opts = *opts
	}
	return r
}

// FormatLabel returns the tag name followed by its attributes, e.g.
// `div (class="a b", id="x")`. Quotes inside values are not escaped.
func FormatLabel(n *Node) string {
	if len(n.Attributes) == 0 {
		return n.TagName
	}

	attrs := make([]string, 0, len(n.Attributes))
	for _, a := range n.Attributes {
		value := ""
		if a.Value != nil {
			value = a.Value.String()
		}
		attrs = append(attrs, fmt.Sprintf(`%s="%s"`, a.Name, value))
	}
	return fmt.Sprintf("%s (%s)", n.TagName, strings.Join(attrs, ", "))
}

// Render writes one line per element node of root's subtree. A nil root
// writes nothing. Only write errors are returned.
func (r *TreeRenderer) Render(w io.Writer, root *Node) error {
	if root == nil {
		return nil
	}
	return r.walk(root, func(line string) error {
		_, err := io.WriteString(w, line+"\n")
		return err
	})
}

// Lines returns the rendered lines of root's subtree.
func (r *TreeRenderer) Lines(root *Node) []string {
	if root == nil {
		return nil
	}
	var lines []string
	_ = r.walk(root, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	return lines
}

// String returns the rendered tree with a trailing newline per line.
func (r *TreeRenderer) String(root *Node) string {
	var buf bytes.Buffer
	_ = r.Render(&buf, root)
	return buf.String()
}

type treeWalk struct {
	opts      RenderOptions
	emit      func(string) error
	truncated bool
}

func (r *TreeRenderer) walk(root *Node, emit func(string) error) error {
	tw := &treeWalk{opts: r.opts, emit: emit}
	if err := tw.render(root, "", false, true, 0); err != nil {
		return err
	}
	if tw.truncated {
		slog.Warn("Tree truncated at max depth", "root", root.TagName, "max_depth", r.opts.MaxDepth)
	}
	return nil
}

func (tw *treeWalk) render(n *Node, prefix string, isLast, isRoot bool, depth int) error {
	line := FormatLabel(n)
	if !isRoot {
		connector := connectorMid
		if isLast {
			connector = connectorLast
		}
		line = prefix + connector + line
	}
	if err := tw.emit(line); err != nil {
		return err
	}

	children := n.ElementChildren()
	if len(children) == 0 {
		return nil
	}
	if tw.opts.MaxDepth > 0 && depth >= tw.opts.MaxDepth {
		tw.truncated = true
		return nil
	}

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += indentBlank
		} else {
			childPrefix += indentLink
		}
	}

	for i, child := range children {
		if err := tw.render(child, childPrefix, i == len(children)-1, false, depth+1); err != nil {
			return err
		}
	}
	return nil
}
