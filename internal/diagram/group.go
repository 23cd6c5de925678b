package diagram

import (
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// Group draws a titled box around its child; it does not change main-line
// routing, only padding.
type Group struct {
	Base

	Item     Element
	Text     string
	CssClass string
	Href     *string
	Title    *string

	textWidth, textHeight int
}

func NewGroup(item Element, text string) *Group {
	return &Group{Item: NewBarrier(item), Text: text}
}

func (g *Group) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	gs := &settings.Group
	ctx.Width -= 2 * (gs.HorizontalPadding + gs.Thickness)
	if ctx.Width < 0 {
		ctx.Width = 0
	}
	ctx.AllowShrinkingStacks = false
	CalculateLayout(g.Item, settings, ctx)
	ib := g.Item.base()

	g.textWidth, g.textHeight = 0, 0
	if g.Text != "" {
		g.textWidth, g.textHeight = gs.TextMeasure.Measure(g.Text)
	}

	g.ContentWidth = max(ib.Width(), g.textWidth) + 2*(gs.HorizontalPadding+gs.Thickness)
	g.StartPadding = 0
	g.EndPadding = 0
	g.StartMargin = gs.HorizontalMargin
	g.EndMargin = gs.HorizontalMargin
	g.Height = ib.Height
	g.Up = ib.Up + gs.VerticalPadding + gs.Thickness + gs.VerticalMargin
	if g.Text != "" {
		g.Up += g.textHeight + gs.TextVerticalOffset
	}
	g.Down = ib.Down + gs.VerticalPadding + gs.Thickness + gs.VerticalMargin
	g.DisplayWidth = g.Width()
}

func (g *Group) contentRender(r render.Render, ctx render.RenderContext) {
	gs := r.Settings().Group
	d := ctx.Dir()
	ib := g.Item.base()

	inset := gs.HorizontalPadding + gs.Thickness
	childCtx := ctx
	childCtx.Pos = ctx.Pos.Add(geom.Vec{X: d * inset})

	boxPos := childCtx.Pos
	if ctx.Reverse {
		boxPos = ctx.Pos.Sub(geom.Vec{X: g.Width()})
	}
	boxPos = boxPos.Sub(geom.Vec{X: d * inset, Y: ib.Up + gs.VerticalPadding + gs.Thickness})
	boxHeight := 2*(gs.VerticalPadding+gs.Thickness) + ib.Up + ib.Height + ib.Down

	var text *string
	if g.Text != "" {
		text = &g.Text
	}
	r.Group(boxPos, g.Width(), boxHeight, g.CssClass, g.textWidth, text, g.Href, g.Title)

	Render(g.Item, r, childCtx)
}

func (g *Group) topRidgeLine() geom.RidgeLine    { return defaultTopRidgeLine(&g.Base) }
func (g *Group) bottomRidgeLine() geom.RidgeLine { return defaultBottomRidgeLine(&g.Base) }
func (g *Group) precedence() int                 { return 3 }
func (g *Group) containsChoices() bool           { return g.Item.containsChoices() }
func (g *Group) canUseOptEnters() bool           { return false }
func (g *Group) canUseOptExits() bool            { return false }
func (g *Group) debugName() string               { return "group" }
