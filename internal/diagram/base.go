// Package diagram implements the Element tree, the per-variant layout
// algorithm, and render dispatch described by the core's design: a
// tagged-variant recursive data structure together with free functions that
// read and write a mutable box record embedded in each variant.
package diagram

import (
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// Element is any node of the diagram tree. Concrete variants embed Base and
// implement the content hooks the engine dispatches to.
type Element interface {
	base() *Base
	contentLayout(settings *render.LayoutSettings, context render.LayoutContext)
	contentRender(r render.Render, context render.RenderContext)
	topRidgeLine() geom.RidgeLine
	bottomRidgeLine() geom.RidgeLine
	precedence() int
	containsChoices() bool
	canUseOptEnters() bool
	canUseOptExits() bool
	debugName() string
}

// Base holds the box-record fields common to every Element, plus the
// layout cache and the isolation bookkeeping shared by every variant's
// calculate_layout.
type Base struct {
	DisplayWidth int
	ContentWidth int
	StartPadding int
	EndPadding   int
	StartMargin  int
	EndMargin    int
	Height       int
	Up           int
	Down         int

	settings *render.LayoutSettings
	context  *render.LayoutContext

	topRidge    *geom.RidgeLine
	bottomRidge *geom.RidgeLine

	iso isolation
}

// Width is the total footprint this element reserves between its
// neighbours' margins: padding + content + padding.
func (b *Base) Width() int {
	return b.StartPadding + b.ContentWidth + b.EndPadding
}

func (b *Base) base() *Base { return b }

// Base exposes an element's box record to callers outside the package
// (the render driver, in particular, needs the root element's metrics to
// size its backend's canvas).
func (b *Base) Base() *Base { return b }

// CalculateLayout is the engine's entry point for every element. It is a
// no-op if settings and context are unchanged from the last call (testable
// property: idempotent layout), otherwise it resets the box record and
// dispatches to the variant's contentLayout.
func CalculateLayout(e Element, settings *render.LayoutSettings, context render.LayoutContext) {
	b := e.base()
	if b.settings == settings && b.context != nil && *b.context == context {
		return
	}
	*b = Base{settings: settings, context: cloneContext(context)}
	e.contentLayout(settings, context)
}

func cloneContext(c render.LayoutContext) *render.LayoutContext {
	cp := c
	return &cp
}

// Render is the engine's entry point for drawing. It assumes
// CalculateLayout has already been run with a context compatible with ctx.
func Render(e Element, r render.Render, ctx render.RenderContext) {
	r.Enter(e.debugName())
	defer r.Exit()
	e.contentRender(r, ctx)
}

// TopRidgeLine returns the element's cached top-edge silhouette,
// recomputing it on first access after layout.
func TopRidgeLine(e Element) geom.RidgeLine {
	b := e.base()
	if b.topRidge == nil {
		rl := e.topRidgeLine()
		b.topRidge = &rl
	}
	return *b.topRidge
}

// BottomRidgeLine returns the element's cached bottom-edge silhouette.
func BottomRidgeLine(e Element) geom.RidgeLine {
	b := e.base()
	if b.bottomRidge == nil {
		rl := e.bottomRidgeLine()
		b.bottomRidge = &rl
	}
	return *b.bottomRidge
}

// defaultTopRidgeLine/defaultBottomRidgeLine are the box-edge silhouettes
// used by the variants whose content never bulges past their own display
// box: Skip, Node, End, Choice, OneOrMore and Group.
func defaultTopRidgeLine(b *Base) geom.RidgeLine {
	return geom.RidgeLine{Before: -b.Up, Ridge: []geom.Vec{{X: b.DisplayWidth, Y: b.Height + b.Down}}}
}

func defaultBottomRidgeLine(b *Base) geom.RidgeLine {
	return geom.RidgeLine{Before: b.Down, Ridge: []geom.Vec{{X: b.DisplayWidth, Y: -(b.Up + b.Height)}}}
}

// isolation records what calculate_content_layout asked Isolate to shrink,
// so FinishIsolate (called after the variant fills in its own box record)
// and the render pass (which must still draw the arc using the original
// connection kind) can see through the override back to caller intent.
type isolation struct {
	start, end bool

	startArcSize, endArcSize int

	origStartConn render.ConnectionType
	origEndConn   render.ConnectionType
	origStartDir  render.ConnectionDirection
	origEndDir    render.ConnectionDirection
}

// Isolate shrinks the available width by the arc size of whichever sides
// are requested, overrides that side's connection to Normal so the child
// never has to special-case Stack/Split itself, and remembers enough to
// restore the bookkeeping once the child's layout is known. Returns the
// context the child should actually be laid out against.
func (b *Base) Isolate(settings *render.LayoutSettings, ctx render.LayoutContext, start, end bool) render.LayoutContext {
	b.iso = isolation{
		start: start, end: end,
		origStartConn: ctx.StartConnection, origEndConn: ctx.EndConnection,
		origStartDir: ctx.StartDirection, origEndDir: ctx.EndDirection,
	}

	out := ctx
	if start {
		b.iso.startArcSize = ctx.StartConnection.ArcSize(settings)
		out.Width -= b.iso.startArcSize
		out.StartConnection = render.ConnNormal
		out.StartTopIsClear = true
		out.StartBottomIsClear = true
		out.StartDirection = render.DirStraight
	}
	if end {
		b.iso.endArcSize = ctx.EndConnection.ArcSize(settings)
		out.Width -= b.iso.endArcSize
		out.EndConnection = render.ConnNormal
		out.EndTopIsClear = true
		out.EndBottomIsClear = true
		out.EndDirection = render.DirStraight
	}
	if out.Width < 0 {
		out.Width = 0
	}
	return out
}

// FinishIsolate must be called once the variant has computed its box
// record against the isolated (shrunk) width: it adds the reserved arc
// size back into the relevant padding and display width, and widens the
// margin on sides that connect via Stack/Split so neighbours leave room
// for the arc's curve.
func (b *Base) FinishIsolate(settings *render.LayoutSettings) {
	if b.iso.start {
		b.StartPadding += b.iso.startArcSize
		b.DisplayWidth += b.iso.startArcSize
		if isArced(b.iso.origStartConn) {
			if min := b.StartPadding + settings.ArcMargin; b.StartMargin < min {
				b.StartMargin = min
			}
		}
	}
	if b.iso.end {
		b.EndPadding += b.iso.endArcSize
		b.DisplayWidth += b.iso.endArcSize
		if isArced(b.iso.origEndConn) {
			if min := b.EndPadding + settings.ArcMargin; b.EndMargin < min {
				b.EndMargin = min
			}
		}
	}
}

func isArced(c render.ConnectionType) bool {
	return c == render.ConnStack || c == render.ConnSplit
}

// RenderIsolation draws the arc reserved by Isolate, using the connection
// kind that was overridden to Normal for layout purposes, and returns the
// RenderContext the child should actually be rendered against (with its
// start/end connection positions shifted past the arc).
func (b *Base) RenderIsolation(r render.Render, ctx render.RenderContext) render.RenderContext {
	out := ctx
	d := ctx.Dir()
	if b.iso.start && b.iso.startArcSize > 0 {
		target := geom.Vec{X: ctx.StartConnectionPos.X + d*b.iso.startArcSize, Y: ctx.StartConnectionPos.Y}
		drawArc(r, ctx, ctx.StartConnectionPos, target, b.iso.origStartConn, b.iso.origStartDir, true)
		out.StartConnectionPos = target
	}
	if b.iso.end && b.iso.endArcSize > 0 {
		target := geom.Vec{X: ctx.EndConnectionPos.X - d*b.iso.endArcSize, Y: ctx.EndConnectionPos.Y}
		drawArc(r, ctx, ctx.EndConnectionPos, target, b.iso.origEndConn, b.iso.origEndDir, false)
		out.EndConnectionPos = target
	}
	return out
}

// drawArc emits the line segment/bend that used to be implicit in a
// Stack/Split/StackBound connection before Isolate flattened it to Normal
// for the child's sake. Normal and StackBound connections are always a
// straight run; Stack and Split need a turn, whose direction follows the
// connection's recorded ConnectionDirection.
func drawArc(r render.Render, ctx render.RenderContext, from, to geom.Vec, conn render.ConnectionType, dir render.ConnectionDirection, isStart bool) {
	if conn == render.ConnNull {
		return
	}
	line := r.Line(from, ctx.Reverse, "")
	switch conn {
	case render.ConnNormal, render.ConnStackBound:
		line.SegmentAbs(to.X, false, false)
	case render.ConnStack:
		if isStart == (dir == render.DirUp) {
			line.BendBackwardReverseAbs(to.Y, false, false)
		} else {
			line.BendBackwardAbs(to.Y, false, false)
		}
		line.SegmentAbs(to.X, false, false)
	case render.ConnSplit:
		line.BendForwardAbs(to.Y, false, false)
		line.SegmentAbs(to.X, false, false)
	}
}
