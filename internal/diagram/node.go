package diagram

import (
	"math"

	"github.com/0x4d5352/railroad/internal/escape"
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// Node is a leaf element drawing a terminal, non-terminal, or comment box.
type Node struct {
	Base

	Style        render.NodeStyle
	Text         string
	Href         *string
	Title        *string
	CssClass     string
	Resolve      bool
	ResolverData any

	resolvedText string
}

func NewNode(style render.NodeStyle, text string) *Node {
	return &Node{Style: style, Text: text}
}

func (n *Node) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	n.Isolate(settings, ctx, true, true)

	text := n.Text
	href, title := n.Href, n.Title
	if n.Resolve && settings.HrefResolver != nil {
		text, href, title = settings.HrefResolver.Resolve(text, href, title, n.ResolverData)
		n.Href, n.Title = href, title
	}
	n.resolvedText = escape.Reveal(text, settings.HiddenSymbolEscape[0], settings.HiddenSymbolEscape[1])

	style := settings.StyleSettings(n.Style)
	textWidth, textHeight := style.Measure.Measure(n.resolvedText)

	n.ContentWidth = textWidth + 2*style.HorizontalPadding
	n.Up = int(math.Ceil(float64(textHeight)/2)) + style.VerticalPadding
	n.Down = n.Up
	n.Height = 0
	n.StartMargin = settings.HorizontalSeqSeparation
	n.EndMargin = settings.HorizontalSeqSeparation
	n.DisplayWidth = n.ContentWidth

	n.FinishIsolate(settings)
}

func (n *Node) contentRender(r render.Render, ctx render.RenderContext) {
	ctx = n.RenderIsolation(r, ctx)

	style := n.Base.settings.StyleSettings(n.Style)
	pos := ctx.StartConnectionPos
	if ctx.Reverse {
		pos = geom.Vec{X: ctx.StartConnectionPos.X - n.ContentWidth, Y: ctx.StartConnectionPos.Y}
	}
	r.Node(pos, n.Style, n.CssClass, n.ContentWidth, n.Up, n.Down, style.Radius, style.HorizontalPadding, n.resolvedText, n.Href, n.Title)
}

func (n *Node) topRidgeLine() geom.RidgeLine    { return defaultTopRidgeLine(&n.Base) }
func (n *Node) bottomRidgeLine() geom.RidgeLine { return defaultBottomRidgeLine(&n.Base) }
func (n *Node) precedence() int                 { return 3 }
func (n *Node) containsChoices() bool           { return false }
func (n *Node) canUseOptEnters() bool           { return false }
func (n *Node) canUseOptExits() bool            { return false }
func (n *Node) debugName() string               { return "node " + n.Text }
