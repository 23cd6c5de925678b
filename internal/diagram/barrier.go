package diagram

import (
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// Barrier disables optimizations that merge lines between its child and
// siblings: it forwards layout/render unchanged except that it strips the
// four opt_* fields, so opt-line absorption never crosses it.
type Barrier struct {
	Base
	Item Element
}

// NewBarrier wraps item in a Barrier, unless item is already a Barrier or
// a Skip (already maximally isolated), in which case it is returned as-is.
func NewBarrier(item Element) Element {
	switch item.(type) {
	case *Barrier, *Skip:
		return item
	}
	return &Barrier{Item: item}
}

func stripOpt(ctx render.LayoutContext) render.LayoutContext {
	ctx.OptEnterTop = false
	ctx.OptEnterBottom = false
	ctx.OptExitTop = false
	ctx.OptExitBottom = false
	return ctx
}

func (b *Barrier) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	CalculateLayout(b.Item, settings, stripOpt(ctx))
	ib := b.Item.base()
	b.DisplayWidth = ib.DisplayWidth
	b.ContentWidth = ib.ContentWidth
	b.StartPadding = ib.StartPadding
	b.EndPadding = ib.EndPadding
	b.StartMargin = ib.StartMargin
	b.EndMargin = ib.EndMargin
	b.Height = ib.Height
	b.Up = ib.Up
	b.Down = ib.Down
}

func (b *Barrier) contentRender(r render.Render, ctx render.RenderContext) {
	ctx.OptEnterTop = nil
	ctx.OptEnterBottom = nil
	ctx.OptExitTop = nil
	ctx.OptExitBottom = nil
	Render(b.Item, r, ctx)
}

func (b *Barrier) topRidgeLine() geom.RidgeLine    { return TopRidgeLine(b.Item) }
func (b *Barrier) bottomRidgeLine() geom.RidgeLine { return BottomRidgeLine(b.Item) }
func (b *Barrier) precedence() int                 { return b.Item.precedence() }
func (b *Barrier) containsChoices() bool           { return b.Item.containsChoices() }
func (b *Barrier) canUseOptEnters() bool           { return false }
func (b *Barrier) canUseOptExits() bool            { return false }
func (b *Barrier) debugName() string               { return "barrier" }
