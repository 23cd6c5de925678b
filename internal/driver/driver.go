// Package driver wires together the diagram tree, a settings record and
// a backend: it is the render_text/render_svg entry point the rest of
// the engine is built around.
package driver

import (
	"github.com/muesli/termenv"

	"github.com/0x4d5352/railroad/internal/diagram"
	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
	"github.com/0x4d5352/railroad/internal/svgrender"
	"github.com/0x4d5352/railroad/internal/textrender"
)

// wrap builds Sequence(End, Barrier(Sequence(root, End(reverse), NoBreak)), NoBreak),
// the fixed shell every rendered diagram sits inside so its two outer caps
// lay out and render like any other element.
func wrap(root diagram.Element) diagram.Element {
	inner := diagram.MustSequence([]diagram.Element{root, diagram.NewEnd(true)}, []diagram.LineBreak{diagram.BreakNoBreak})
	outer := diagram.MustSequence([]diagram.Element{diagram.NewEnd(false), diagram.NewBarrier(inner)}, []diagram.LineBreak{diagram.BreakNoBreak})
	return outer
}

func rootContext(width int) render.LayoutContext {
	return render.LayoutContext{
		Width:                width,
		IsOuter:              true,
		StartConnection:      render.ConnNull,
		StartTopIsClear:      true,
		StartBottomIsClear:   true,
		EndConnection:        render.ConnNull,
		EndTopIsClear:        true,
		EndBottomIsClear:     true,
		AllowShrinkingStacks: true,
	}
}

// layoutText runs the shared setup RenderText and RenderTextColor both
// need: wrap, lay out, and draw root into a sized text backend.
func layoutText(root diagram.Element, settings *render.TextRenderSettings, reverse bool) *textrender.Backend {
	wrapped := wrap(root)

	maxWidth := settings.MaxWidth - 2*settings.Padding
	diagram.CalculateLayout(wrapped, &settings.LayoutSettings, rootContext(maxWidth))

	b := wrapped.Base()
	width := settings.Padding + b.Width() + settings.Padding
	height := settings.Padding + b.Up + b.Height + b.Down + settings.Padding + 1

	backend := textrender.New(settings, width, height)
	renderRoot(wrapped, backend, settings.Padding, b.Up+settings.Padding, reverse)
	return backend
}

// RenderText lays out root against settings and draws it on a Unicode
// character grid, returning the grid as newline-joined rows. reverse flips
// the whole diagram right-to-left.
func RenderText(root diagram.Element, settings *render.TextRenderSettings, reverse bool) string {
	return layoutText(root, settings, reverse).String()
}

// RenderTextColor is RenderText, except runs of cells belonging to one
// node style are wrapped in that style's ANSI color for profile (the
// terminal's detected color capability).
func RenderTextColor(root diagram.Element, settings *render.TextRenderSettings, reverse bool, profile termenv.Profile) string {
	return layoutText(root, settings, reverse).StringColor(profile)
}

// RenderSVG lays out root against settings and draws it as an SVG
// document, returning the serialized XML.
func RenderSVG(root diagram.Element, settings *render.SvgRenderSettings, reverse bool, title, desc string) string {
	wrapped := wrap(root)

	maxWidth := settings.MaxWidth - 2*settings.Padding
	diagram.CalculateLayout(wrapped, &settings.LayoutSettings, rootContext(maxWidth))

	b := wrapped.Base()
	width := settings.Padding + b.Width() + settings.Padding
	height := settings.Padding + b.Up + b.Height + b.Down + settings.Padding + 1

	backend := svgrender.New(settings, width, height, title, desc)
	renderRoot(wrapped, backend, settings.Padding, b.Up+settings.Padding, reverse)
	return backend.String()
}

// renderRoot draws root into r. When reverse is set, the start connection
// sits at the right edge and the diagram is walked right-to-left, matching
// what every element's contentRender already does with ctx.Reverse.
func renderRoot(root diagram.Element, r render.Render, left, top int, reverse bool) {
	w := root.Base().Width()
	start := geom.Vec{X: left, Y: top}
	end := geom.Vec{X: left + w, Y: top}
	if reverse {
		start, end = end, start
	}
	ctx := render.RenderContext{
		Pos:                start,
		StartConnectionPos: start,
		EndConnectionPos:   end,
		Reverse:            reverse,
	}
	diagram.Render(root, r, ctx)
}
