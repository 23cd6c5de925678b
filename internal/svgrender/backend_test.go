package svgrender

import (
	"strings"
	"testing"

	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

func testSettings() *render.SvgRenderSettings {
	s := render.DefaultSvgRenderSettings()
	s.MaxWidth = 400
	return s
}

func TestNewEmitsSvgRootAttributes(t *testing.T) {
	b := New(testSettings(), 100, 50, "a title", "a description")
	out := b.String()

	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("expected an XML declaration, got: %s", out)
	}
	for _, want := range []string{
		`<svg`,
		`xmlns="http://www.w3.org/2000/svg"`,
		`xmlns:xlink="http://www.w3.org/1999/xlink"`,
		`width="100"`,
		`height="50"`,
		`viewBox="0 0 100 50"`,
		`aria-label="a title"`,
		`<title>a title</title>`,
		`<desc>a description</desc>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestNewOmitsTitleAndDescWhenEmpty(t *testing.T) {
	b := New(testSettings(), 10, 10, "", "")
	out := b.String()
	if strings.Contains(out, "<title>") || strings.Contains(out, "<desc>") {
		t.Fatalf("expected no title/desc elements for empty strings, got: %s", out)
	}
}

func TestNewInlinesCSS(t *testing.T) {
	s := testSettings()
	s.CSS = ".literal { fill: red; }"
	b := New(s, 10, 10, "", "")
	out := b.String()
	if !strings.Contains(out, "<style>"+s.CSS+"</style>") {
		t.Fatalf("expected inlined CSS in a <style> element, got: %s", out)
	}
}

func TestNodeEmitsRectAndText(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	b.Node(geom.Vec{X: 10, Y: 20}, render.StyleTerminal, "my-class", 40, 8, 8, 10, 5, "hello", nil, nil)
	out := b.String()

	for _, want := range []string{
		`<rect`,
		`x="10"`,
		`width="40"`,
		`height="16"`,
		`rx="10"`,
		`<text`,
		`>hello<`,
		`class="node my-class"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected node output to contain %q, got: %s", want, out)
		}
	}
}

func TestNodeWithHrefWrapsInAnchor(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	href := "https://example.com"
	title := "a link"
	b.Node(geom.Vec{X: 0, Y: 0}, render.StyleNonTerminal, "", 10, 5, 5, 0, 2, "go", &href, &title)
	out := b.String()

	if !strings.Contains(out, `<a href="https://example.com"`) {
		t.Fatalf("expected an <a> wrapper with the href, got: %s", out)
	}
	if !strings.Contains(out, `xlink:title="a link"`) {
		t.Fatalf("expected the link title carried as xlink:title, got: %s", out)
	}
}

func TestNodeWithoutHrefEmitsTitleElement(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	title := "a tooltip"
	b.Node(geom.Vec{X: 0, Y: 0}, render.StyleTerminal, "", 10, 5, 5, 0, 2, "go", nil, &title)
	out := b.String()
	if !strings.Contains(out, "<title>a tooltip</title>") {
		t.Fatalf("expected a <title> child when no href is set, got: %s", out)
	}
	if strings.Contains(out, "<a ") {
		t.Fatalf("did not expect an anchor wrapper without an href, got: %s", out)
	}
}

func TestNodeEscapesHiddenSymbolMarkersIntoTspans(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	escaped := "a" + render.EscapeMarkerPrefix + `\t` + render.EscapeMarkerSuffix + "b"
	b.Node(geom.Vec{X: 0, Y: 0}, render.StyleTerminal, "", 10, 5, 5, 0, 2, escaped, nil, nil)
	out := b.String()

	if !strings.Contains(out, `<tspan class="escape">\t</tspan>`) {
		t.Fatalf("expected the escaped run wrapped in a classed tspan, got: %s", out)
	}
	if !strings.Contains(out, "<tspan>a</tspan>") || !strings.Contains(out, "<tspan>b</tspan>") {
		t.Fatalf("expected the surrounding runs as plain tspans, got: %s", out)
	}
}

func TestGroupEmitsRectAndHeading(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	text := "a grammar rule"
	b.Group(geom.Vec{X: 5, Y: 5}, 50, 30, "", 0, &text, nil, nil)
	out := b.String()

	for _, want := range []string{
		`<rect`,
		`x="5"`,
		`width="50"`,
		`height="30"`,
		`stroke-dasharray="4 2"`,
		"a grammar rule",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected group output to contain %q, got: %s", want, out)
		}
	}
}

func TestGroupColorCyclesWithoutRepeatingImmediately(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	c1 := b.groupColor()
	c2 := b.groupColor()
	if c1 == c2 {
		t.Fatalf("expected consecutive group colors to differ, got %q twice", c1)
	}
	if !strings.HasPrefix(c1, "#") || !strings.HasPrefix(c2, "#") {
		t.Fatalf("expected hex colors, got %q and %q", c1, c2)
	}
}

func TestGroupColorUsesConfiguredPalette(t *testing.T) {
	s := testSettings()
	s.Colors = []string{"#111111", "#222222"}
	b := New(s, 200, 100, "", "")
	if got := b.groupColor(); got != "#111111" {
		t.Fatalf("expected the first configured color, got %q", got)
	}
	if got := b.groupColor(); got != "#222222" {
		t.Fatalf("expected the second configured color, got %q", got)
	}
	if got := b.groupColor(); got != "#111111" {
		t.Fatalf("expected the palette to cycle back to the first color, got %q", got)
	}
}

func TestLeftMarkerSimpleVsComplex(t *testing.T) {
	s := testSettings()
	s.EndClass = render.EndSimple
	b := New(s, 200, 100, "", "")
	before := strings.Count(b.String(), `<path`)
	b.LeftMarker(geom.Vec{X: 0, Y: 0})
	simple := b.String()
	if got := strings.Count(simple, `<path`) - before; got != 2 {
		t.Fatalf("expected a simple end marker to draw exactly 2 paths (line + tick), got %d: %s", got, simple)
	}

	s2 := testSettings()
	s2.EndClass = render.EndComplex
	b2 := New(s2, 200, 100, "", "")
	before2 := strings.Count(b2.String(), `<path`)
	b2.LeftMarker(geom.Vec{X: 0, Y: 0})
	complex := b2.String()
	if got := strings.Count(complex, `<path`) - before2; got != 3 {
		t.Fatalf("expected a complex end marker to draw 3 paths (line + 2 ticks), got %d: %s", got, complex)
	}
}

func TestEnterExitNestsGroups(t *testing.T) {
	b := New(testSettings(), 200, 100, "", "")
	b.Enter("sequence")
	b.Enter("node A")
	b.Node(geom.Vec{X: 0, Y: 0}, render.StyleTerminal, "", 10, 5, 5, 0, 2, "A", nil, nil)
	b.Exit()
	b.Node(geom.Vec{X: 20, Y: 0}, render.StyleTerminal, "", 10, 5, 5, 0, 2, "B", nil, nil)
	b.Exit()
	out := b.String()

	aIdx := strings.Index(out, ">A<")
	bIdx := strings.Index(out, ">B<")
	elNodeIdx := strings.Index(out, `class="el-node A"`)
	if aIdx < 0 || bIdx < 0 || elNodeIdx < 0 {
		t.Fatalf("expected both nodes and the nested group class present, got: %s", out)
	}
	if elNodeIdx > aIdx {
		t.Fatalf("expected the 'node A' group to wrap node A's own markup")
	}
	// Exit() back out: B is appended after the "el-node A" group closes, so
	// it must not be nested inside it.
	closeIdx := strings.Index(out[elNodeIdx:], "</g>")
	if closeIdx < 0 {
		t.Fatal("expected the nested group to close")
	}
	if bIdx < elNodeIdx+closeIdx {
		t.Fatal("expected node B to render after the nested group closed, not inside it")
	}
}

func TestExitAtRootIsANoOp(t *testing.T) {
	b := New(testSettings(), 10, 10, "", "")
	b.Exit()
	b.Exit()
	b.Node(geom.Vec{X: 0, Y: 0}, render.StyleTerminal, "", 10, 5, 5, 0, 2, "A", nil, nil)
	if !strings.Contains(b.String(), ">A<") {
		t.Fatal("expected Exit() at the root to be harmless and rendering to still work")
	}
}

func TestLineSegmentAbsEmitsHorizontalCommand(t *testing.T) {
	b := New(testSettings(), 100, 50, "", "")
	line := b.Line(geom.Vec{X: 0, Y: 10}, false, "")
	line.SegmentAbs(30, false, false)
	out := b.String()
	if !strings.Contains(out, `d="M0 10H30"`) {
		t.Fatalf("expected a path starting at (0,10) with an H30 command, got: %s", out)
	}
}

func TestLineSegmentWithArrowEmitsArrowUse(t *testing.T) {
	b := New(testSettings(), 100, 50, "", "")
	line := b.Line(geom.Vec{X: 0, Y: 0}, false, "")
	line.SegmentAbs(30, false, true)
	out := b.String()
	if !strings.Contains(out, `href="#railroad-arrow"`) {
		t.Fatalf("expected an arrowhead <use> reference, got: %s", out)
	}
}

func TestBendShortDeltaUsesCubicCurve(t *testing.T) {
	b := New(testSettings(), 100, 50, "", "")
	line := b.Line(geom.Vec{X: 0, Y: 0}, false, "")
	// ArcRadius defaults to 10; a delta under 2*10 should use a Bezier "C".
	line.BendForwardAbs(5, false, false)
	out := b.String()
	if !strings.Contains(out, `d="M0 0C0 1.667 0 3.333 0 5"`) {
		t.Fatalf("expected a cubic bend for a short vertical delta, got: %s", out)
	}
}

func TestBendLongDeltaUsesArcs(t *testing.T) {
	b := New(testSettings(), 100, 50, "", "")
	line := b.Line(geom.Vec{X: 0, Y: 0}, false, "")
	line.BendForwardAbs(100, false, false)
	out := b.String()
	if !strings.Contains(out, "a10 10 0 0") {
		t.Fatalf("expected quarter-arc commands for a long vertical delta, got: %s", out)
	}
}

func TestDebugPosEmitsCircle(t *testing.T) {
	b := New(testSettings(), 100, 50, "", "")
	b.DebugPos(geom.Vec{X: 3, Y: 4}, "marker")
	out := b.String()
	if !strings.Contains(out, `<circle`) || !strings.Contains(out, `cx="3"`) || !strings.Contains(out, `cy="4"`) {
		t.Fatalf("expected a debug circle at (3,4), got: %s", out)
	}
}
