package diagram

import (
	"fmt"

	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// OneOrMore lays Item on the through line and Repeat beneath it, joined
// by a pair of reversed-direction connectors so the repeat path reads
// backward against the main flow.
type OneOrMore struct {
	Base

	Item   Element
	Repeat Element

	// RepeatTop mirrors the upstream project's field of the same name: it
	// is accepted by the constructor and carried on the element, but
	// nothing in the layout or render pass reads it (matches the
	// original's own dead field, per the source's design notes).
	RepeatTop bool

	itemOffset   int
	repeatOffset int
	sep          int
}

// NewOneOrMore builds the element, defaulting Repeat to Skip (a bare
// loop-back arc) when none is supplied.
func NewOneOrMore(item Element, repeat Element, repeatTop bool) (Element, error) {
	if item == nil {
		return nil, &LoadingError{Path: "one_or_more.item", Message: "item is required"}
	}
	if repeat == nil {
		repeat = NewSkip()
	}
	if IsSkip(item) && IsSkip(repeat) {
		return NewSkip(), nil
	}
	return &OneOrMore{Item: item, Repeat: repeat, RepeatTop: repeatTop}, nil
}

// MustOneOrMore panics on a validation failure.
func MustOneOrMore(item Element, repeat Element, repeatTop bool) Element {
	e, err := NewOneOrMore(item, repeat, repeatTop)
	if err != nil {
		panic(err)
	}
	return e
}

func (o *OneOrMore) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	childCtx := o.Isolate(settings, ctx, true, true)

	extra := render.ConnStack.ArcSize(settings)

	itemCtx := interiorContext(childCtx.Width-2*extra, false)
	CalculateLayout(o.Item, settings, itemCtx)

	repeatWidth := o.Item.base().Width()
	repeatCtx := render.LayoutContext{
		Width:                repeatWidth,
		IsOuter:              false,
		StartConnection:      render.ConnStack,
		StartDirection:       render.DirUp,
		StartTopIsClear:      true,
		StartBottomIsClear:   true,
		EndConnection:        render.ConnStack,
		EndDirection:         render.DirUp,
		EndTopIsClear:        true,
		EndBottomIsClear:     true,
		AllowShrinkingStacks: true,
	}
	CalculateLayout(o.Repeat, settings, repeatCtx)

	o.ContentWidth = o.Item.base().Width()
	if rw := o.Repeat.base().Width() + 2*extra; rw > o.ContentWidth {
		o.ContentWidth = rw
	}

	o.sep = settings.VerticalSeqSeparation
	if ctx.IsOuter {
		o.sep = settings.VerticalSeqSeparationOuter
	}

	o.itemOffset = 0
	o.repeatOffset = o.Item.base().Down + o.sep + o.Repeat.base().Up

	o.Up = o.Item.base().Up
	o.Down = o.repeatOffset + o.Repeat.base().Height + o.Repeat.base().Down
	o.Height = o.Item.base().Height
	o.DisplayWidth = o.ContentWidth

	o.FinishIsolate(settings)
}

func (o *OneOrMore) contentRender(r render.Render, ctx render.RenderContext) {
	ctx = o.RenderIsolation(r, ctx)
	d := ctx.Dir()

	itemWidth := o.Item.base().Width()
	repeatWidth := o.Repeat.base().Width()

	itemLeft := ctx.StartConnectionPos.X
	itemRight := ctx.EndConnectionPos.X

	repeatOffsetX := (itemWidth - repeatWidth) / 2
	repeatLeft := itemLeft + d*repeatOffsetX
	repeatRight := repeatLeft + d*repeatWidth
	repeatY := ctx.Pos.Y + o.repeatOffset

	itemCtx := render.RenderContext{
		Pos:                geom.Vec{X: ctx.Pos.X, Y: ctx.Pos.Y},
		StartConnectionPos: geom.Vec{X: itemLeft, Y: ctx.Pos.Y},
		EndConnectionPos:   geom.Vec{X: itemRight, Y: ctx.Pos.Y},
		Reverse:            ctx.Reverse,
	}
	Render(o.Item, r, itemCtx)

	repeatCtx := render.RenderContext{
		Pos:                geom.Vec{X: repeatLeft, Y: repeatY},
		StartConnectionPos: geom.Vec{X: repeatRight, Y: repeatY},
		EndConnectionPos:   geom.Vec{X: repeatLeft, Y: repeatY},
		Reverse:            !ctx.Reverse,
	}

	down := r.Line(ctx.EndConnectionPos, ctx.Reverse, "")
	down.BendBackwardAbs(repeatY, false, false)
	down.SegmentAbs(repeatRight, false, false)

	Render(o.Repeat, r, repeatCtx)

	up := r.Line(geom.Vec{X: repeatLeft, Y: repeatY}, ctx.Reverse, "")
	up.BendBackwardReverseAbs(ctx.Pos.Y, false, false)
	up.SegmentAbs(ctx.StartConnectionPos.X, false, false)
}

func (o *OneOrMore) topRidgeLine() geom.RidgeLine    { return defaultTopRidgeLine(&o.Base) }
func (o *OneOrMore) bottomRidgeLine() geom.RidgeLine { return defaultBottomRidgeLine(&o.Base) }
func (o *OneOrMore) precedence() int                 { return 1 }
func (o *OneOrMore) containsChoices() bool            { return o.Item.containsChoices() || o.Repeat.containsChoices() }
func (o *OneOrMore) canUseOptEnters() bool            { return false }
func (o *OneOrMore) canUseOptExits() bool             { return false }
func (o *OneOrMore) debugName() string                { return "one_or_more" }

// NewZeroOrMore builds the loader's "zero_or_more" shorthand: an Optional
// wrapping a OneOrMore, so the whole construct may also be skipped entirely.
func NewZeroOrMore(item Element, repeat Element, repeatTop bool) (Element, error) {
	oom, err := NewOneOrMore(item, repeat, repeatTop)
	if err != nil {
		return nil, fmt.Errorf("zero_or_more: %w", err)
	}
	return NewOptional(oom), nil
}
