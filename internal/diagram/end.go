package diagram

import (
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// End is the diagram's start/finish cap. Not user-constructible; the
// render driver wraps the user's tree in a pair of these.
type End struct {
	Base
	ReverseMarker bool
}

func NewEnd(reverseMarker bool) *End { return &End{ReverseMarker: reverseMarker} }

func (e *End) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	e.Isolate(settings, ctx, true, true)
	e.DisplayWidth = settings.MarkerWidth
	e.ContentWidth = settings.MarkerWidth
	e.Up = settings.MarkerProjectedHeight
	e.Down = settings.MarkerProjectedHeight
	e.FinishIsolate(settings)
}

func (e *End) contentRender(r render.Render, ctx render.RenderContext) {
	ctx = e.RenderIsolation(r, ctx)
	pos := ctx.StartConnectionPos
	if ctx.Reverse {
		pos = geom.Vec{X: pos.X - e.DisplayWidth, Y: pos.Y}
	}
	if e.ReverseMarker != ctx.Reverse {
		r.RightMarker(pos)
	} else {
		r.LeftMarker(pos)
	}
}

func (e *End) topRidgeLine() geom.RidgeLine    { return defaultTopRidgeLine(&e.Base) }
func (e *End) bottomRidgeLine() geom.RidgeLine { return defaultBottomRidgeLine(&e.Base) }
func (e *End) precedence() int                 { return 3 }
func (e *End) containsChoices() bool           { return false }
func (e *End) canUseOptEnters() bool           { return false }
func (e *End) canUseOptExits() bool            { return false }
func (e *End) debugName() string               { return "end" }
