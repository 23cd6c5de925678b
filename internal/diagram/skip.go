package diagram

import (
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// Skip is the empty passthrough element: it draws only the connecting
// line and contributes nothing to the layout.
type Skip struct{ Base }

func NewSkip() *Skip { return &Skip{} }

func (s *Skip) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	s.Isolate(settings, ctx, true, true)
	s.FinishIsolate(settings)
}

func (s *Skip) contentRender(r render.Render, ctx render.RenderContext) {
	ctx = s.RenderIsolation(r, ctx)
	r.Line(ctx.StartConnectionPos, ctx.Reverse, "").SegmentAbs(ctx.EndConnectionPos.X, false, false)
}

func (s *Skip) topRidgeLine() geom.RidgeLine    { return defaultTopRidgeLine(&s.Base) }
func (s *Skip) bottomRidgeLine() geom.RidgeLine { return defaultBottomRidgeLine(&s.Base) }
func (s *Skip) precedence() int                 { return 3 }
func (s *Skip) containsChoices() bool           { return false }
func (s *Skip) canUseOptEnters() bool           { return false }
func (s *Skip) canUseOptExits() bool            { return false }
func (s *Skip) debugName() string               { return "skip" }

// IsSkip reports whether e is (or reduces to) a Skip element.
func IsSkip(e Element) bool {
	_, ok := e.(*Skip)
	return ok
}
