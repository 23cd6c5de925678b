// Package xmltree is a minimal append-only XML element tree with an
// attribute-sorted serializer, just enough to build the SVG backend's
// output without pulling in a general-purpose XML encoder.
package xmltree

import (
	"fmt"
	"sort"
	"strings"
)

// Node is one element in the tree. Either Children or Text is meaningful,
// never both — a leaf node (Text, Title, TSpan) carries text, a container
// carries children.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
	SelfClose bool
}

// New starts a container element.
func New(tag string) *Node {
	return &Node{Tag: tag, Attrs: map[string]string{}}
}

// Leaf starts a self-closing element (e.g. <rect/>, <path/>).
func Leaf(tag string) *Node {
	return &Node{Tag: tag, Attrs: map[string]string{}, SelfClose: true}
}

// TextNode builds a text-bearing element such as <title> or <tspan>.
func TextNode(tag, text string) *Node {
	return &Node{Tag: tag, Attrs: map[string]string{}, Text: text}
}

func (n *Node) Attr(key, value string) *Node {
	if value == "" {
		return n
	}
	n.Attrs[key] = value
	return n
}

func (n *Node) AttrF(key string, format string, args ...any) *Node {
	return n.Attr(key, fmt.Sprintf(format, args...))
}

func (n *Node) Append(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// Render serializes n and its subtree, emitting attributes in sorted
// order so output is deterministic across runs.
func (n *Node) Render() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(n.Attrs[k]))
		b.WriteByte('"')
	}

	if n.SelfClose && len(n.Children) == 0 && n.Text == "" {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	if n.Text != "" {
		b.WriteString(escapeText(n.Text))
	}
	for _, c := range n.Children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
