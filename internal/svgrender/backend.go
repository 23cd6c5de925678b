// Package svgrender implements the Render port as an in-memory XML
// element tree (internal/xmltree) serialized to SVG: paths accumulate a
// "d" attribute incrementally, arcs and short bends follow the style the
// upstream project's SVG output uses, and group fill colors cycle
// through a palette generated with go-colorful when none is configured.
package svgrender

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
	"github.com/0x4d5352/railroad/internal/xmltree"
)

func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}

var arrowPaths = map[string]string{
	"triangle":    "M0,-4 L8,0 L0,4 Z",
	"stealth":     "M0,-4 L8,0 L0,4 L2,0 Z",
	"barb":        "M0,-4 L8,0 L0,-1 Z",
	"harpoon":     "M0,-4 L8,0 L0,0 Z",
	"harpoon_up":  "M0,0 L8,0 L0,4 Z",
}

// Backend is an SVG/Render implementation sized to a known canvas.
type Backend struct {
	settings *render.SvgRenderSettings
	width    int
	height   int
	root     *xmltree.Node
	stack    []*xmltree.Node
	colorIdx int
}

// New builds the SVG root element and, if configured, the title/desc/style
// children the spec requires. title/desc may be empty.
func New(settings *render.SvgRenderSettings, width, height int, title, desc string) *Backend {
	root := xmltree.New("svg")
	root.Attr("xmlns", "http://www.w3.org/2000/svg")
	root.Attr("xmlns:xlink", "http://www.w3.org/1999/xlink")
	root.AttrF("width", "%d", width)
	root.AttrF("height", "%d", height)
	root.AttrF("viewBox", "0 0 %d %d", width, height)

	if title != "" {
		root.Attr("aria-label", title)
		root.Append(xmltree.TextNode("title", title))
	}
	if desc != "" {
		root.Append(xmltree.TextNode("desc", desc))
	}
	if settings.CSS != "" {
		style := xmltree.New("style")
		style.Text = settings.CSS
		root.Append(style)
	}

	defs := xmltree.New("defs")
	style := settings.ArrowStyle
	if style == "" {
		style = "triangle"
	}
	if d, ok := arrowPaths[style]; ok {
		marker := xmltree.Leaf("path").Attr("id", "railroad-arrow").Attr("d", d)
		defs.Append(marker)
	}
	root.Append(defs)

	b := &Backend{settings: settings, width: width, height: height, root: root}
	b.stack = []*xmltree.Node{root}
	return b
}

func (b *Backend) Settings() *render.LayoutSettings { return &b.settings.LayoutSettings }

func (b *Backend) current() *xmltree.Node { return b.stack[len(b.stack)-1] }

func (b *Backend) Enter(elementName string) {
	g := xmltree.New("g").Attr("class", "el-"+elementName)
	b.current().Append(g)
	b.stack = append(b.stack, g)
}

func (b *Backend) Exit() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// String serializes the full document with an XML declaration.
func (b *Backend) String() string {
	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + b.root.Render()
}

// groupColor cycles through the configured palette, wrapping around at its
// end; with no palette configured it steps an HSV hue by 57° per call.
func (b *Backend) groupColor() string {
	if len(b.settings.Colors) > 0 {
		c := b.settings.Colors[b.colorIdx%len(b.settings.Colors)]
		b.colorIdx++
		return c
	}
	hue := math.Mod(float64(b.colorIdx)*57.0, 360.0)
	b.colorIdx++
	c := colorful.Hsv(hue, 0.35, 0.95)
	return c.Hex()
}

type path struct {
	b       *Backend
	node    *xmltree.Node
	pos     geom.Vec
	reverse bool
	d       strings.Builder
}

func (b *Backend) Line(pos geom.Vec, reverse bool, cssClass string) render.Line {
	n := xmltree.Leaf("path")
	n.Attr("class", cssClass)
	n.Attr("fill", "none")
	n.Attr("stroke", "currentColor")
	if b.settings.StrokeWidth > 0 {
		n.Attr("stroke-width", fmtNum(b.settings.StrokeWidth))
	}
	b.current().Append(n)
	p := &path{b: b, node: n, pos: pos, reverse: reverse}
	p.d.WriteString("M" + fmtNum(float64(pos.X)) + " " + fmtNum(float64(pos.Y)))
	return p
}

func (p *path) commit() {
	p.node.Attr("d", p.d.String())
}

func (p *path) arrowUse(at geom.Vec, pointingLeft bool) {
	use := xmltree.Leaf("use")
	use.Attr("href", "#railroad-arrow")
	transform := fmt.Sprintf("translate(%s,%s)", fmtNum(float64(at.X)), fmtNum(float64(at.Y)))
	if pointingLeft {
		transform += " scale(-1,1)"
	}
	use.Attr("transform", transform)
	p.b.current().Append(use)
}

func (p *path) SegmentAbs(x int, arrowBegin, arrowEnd bool) render.Line {
	start := p.pos
	p.d.WriteString("H" + fmtNum(float64(x)))
	if arrowBegin {
		p.arrowUse(start, x < start.X)
	}
	if arrowEnd {
		p.arrowUse(geom.Vec{X: x, Y: p.pos.Y}, x < start.X)
	}
	p.pos = geom.Vec{X: x, Y: p.pos.Y}
	p.commit()
	return p
}

// bendSweep derives the SVG arc sweep flag (0 = counter-clockwise, 1 =
// clockwise) from the travel direction before the bend and whether it
// turns downward, so the two quarter-arcs stay tangent to both the
// horizontal run and the vertical run they join.
func bendSweep(horiz render.Direction, goingDown bool) int {
	east := horiz == render.East
	if goingDown == east {
		return 1
	}
	return 0
}

func (p *path) Bend(targetY int, comingFrom, comingTo render.Direction, hasComingTo bool, arrowBegin, arrowEnd bool) render.Line {
	r := p.b.settings.ArcRadius
	dy := float64(targetY - p.pos.Y)
	if dy == 0 {
		p.pos = geom.Vec{X: p.pos.X, Y: targetY}
		p.commit()
		return p
	}
	sign := 1.0
	if dy < 0 {
		sign = -1.0
	}
	absDy := math.Abs(dy)
	sweep := bendSweep(comingFrom, dy > 0)

	if absDy >= 2*r {
		p.d.WriteString(fmt.Sprintf("a%s %s 0 0 %d 0 %s", fmtNum(r), fmtNum(r), sweep, fmtNum(sign*r)))
		midY := float64(p.pos.Y) + sign*r
		endArcStartY := float64(targetY) - sign*r
		if endArcStartY != midY {
			p.d.WriteString("V" + fmtNum(endArcStartY))
		}
		p.d.WriteString(fmt.Sprintf("a%s %s 0 0 %d 0 %s", fmtNum(r), fmtNum(r), 1-sweep, fmtNum(sign*r)))
	} else {
		x := float64(p.pos.X)
		c1y := float64(p.pos.Y) + dy/3
		c2y := float64(p.pos.Y) + dy*2/3
		p.d.WriteString(fmt.Sprintf("C%s %s %s %s %s %s", fmtNum(x), fmtNum(c1y), fmtNum(x), fmtNum(c2y), fmtNum(x), fmtNum(float64(targetY))))
	}
	p.pos = geom.Vec{X: p.pos.X, Y: targetY}
	p.commit()
	return p
}

func horizDir(reverse bool) render.Direction {
	if reverse {
		return render.West
	}
	return render.East
}

func (p *path) BendForwardAbs(y int, arrowBegin, arrowEnd bool) render.Line {
	fwd := horizDir(p.reverse)
	return p.Bend(y, render.ReverseDirection(fwd), fwd, false, arrowBegin, arrowEnd)
}

func (p *path) BendBackwardAbs(y int, arrowBegin, arrowEnd bool) render.Line {
	fwd := horizDir(p.reverse)
	back := render.ReverseDirection(fwd)
	return p.Bend(y, back, back, false, arrowBegin, arrowEnd)
}

func (p *path) BendBackwardReverseAbs(y int, arrowBegin, arrowEnd bool) render.Line {
	fwd := horizDir(p.reverse)
	return p.Bend(y, fwd, fwd, false, arrowBegin, arrowEnd)
}

func (b *Backend) Node(pos geom.Vec, style render.NodeStyle, cssClass string, contentWidth, up, down, radius, padding int, text string, href, title *string) {
	g := xmltree.New("g")
	g.Attr("class", strings.TrimSpace("node " + cssClass))
	height := up + down

	rect := xmltree.Leaf("rect")
	rect.AttrF("x", "%s", fmtNum(float64(pos.X)))
	rect.AttrF("y", "%s", fmtNum(float64(pos.Y-up)))
	rect.AttrF("width", "%s", fmtNum(float64(contentWidth)))
	rect.AttrF("height", "%s", fmtNum(float64(height)))
	switch style {
	case render.StyleTerminal:
		rect.AttrF("rx", "%s", fmtNum(float64(radius)))
		rect.AttrF("ry", "%s", fmtNum(float64(radius)))
	case render.StyleComment:
		rect.Attr("class", "comment")
	}
	rect.Attr("fill", "var(--node-fill, #fff)")
	rect.Attr("stroke", "currentColor")
	g.Append(rect)

	textNode := xmltree.New("text")
	textNode.AttrF("x", "%s", fmtNum(float64(pos.X+contentWidth/2)))
	textNode.AttrF("y", "%s", fmtNum(float64(pos.Y)))
	textNode.Attr("text-anchor", "middle")
	textNode.Attr("dominant-baseline", "middle")
	appendEscapedText(textNode, text, b.settings.HiddenSymbolEscape[0], b.settings.HiddenSymbolEscape[1])
	g.Append(textNode)

	if href != nil && *href != "" {
		a := xmltree.New("a")
		a.Attr("href", *href)
		if title != nil {
			a.Attr("xlink:title", *title)
		}
		a.Append(g)
		b.current().Append(a)
		return
	}
	if title != nil && *title != "" {
		g.Append(xmltree.TextNode("title", *title))
	}
	b.current().Append(g)
}

// appendEscapedText splits text on the hidden-symbol escape markers and
// wraps the enclosed runs in <tspan class="escape">.
func appendEscapedText(parent *xmltree.Node, text, prefix, suffix string) {
	if prefix == "" {
		parent.Text = text
		return
	}
	rest := text
	for {
		i := strings.Index(rest, prefix)
		if i < 0 {
			if rest != "" {
				parent.Append(xmltree.TextNode("tspan", rest))
			}
			return
		}
		if i > 0 {
			parent.Append(xmltree.TextNode("tspan", rest[:i]))
		}
		rest = rest[i+len(prefix):]
		j := strings.Index(rest, suffix)
		if j < 0 {
			parent.Append(xmltree.TextNode("tspan", rest).Attr("class", "escape"))
			return
		}
		parent.Append(xmltree.TextNode("tspan", rest[:j]).Attr("class", "escape"))
		rest = rest[j+len(suffix):]
	}
}

func (b *Backend) Group(pos geom.Vec, width, height int, cssClass string, textWidth int, text, href, title *string) {
	g := xmltree.New("g")
	g.Attr("class", strings.TrimSpace("group " + cssClass))

	rect := xmltree.Leaf("rect")
	rect.AttrF("x", "%s", fmtNum(float64(pos.X)))
	rect.AttrF("y", "%s", fmtNum(float64(pos.Y)))
	rect.AttrF("width", "%s", fmtNum(float64(width)))
	rect.AttrF("height", "%s", fmtNum(float64(height)))
	rect.AttrF("rx", "%s", fmtNum(float64(b.settings.Group.Radius)))
	rect.Attr("fill", b.groupColor())
	rect.Attr("stroke", "currentColor")
	rect.Attr("stroke-dasharray", "4 2")
	g.Append(rect)

	if text != nil && *text != "" {
		textNode := xmltree.New("text")
		textNode.AttrF("x", "%s", fmtNum(float64(pos.X+b.settings.Group.TextHorizontalOffset)))
		textNode.AttrF("y", "%s", fmtNum(float64(pos.Y)-float64(b.settings.Group.TextVerticalOffset)))
		textNode.Text = *text
		g.Append(textNode)
	}
	if title != nil && *title != "" {
		g.Append(xmltree.TextNode("title", *title))
	}
	b.current().Append(g)
}

func (b *Backend) LeftMarker(pos geom.Vec) {
	g := xmltree.New("g").Attr("class", "end-marker")
	width := float64(b.settings.MarkerWidth)
	line := xmltree.Leaf("path")
	line.AttrF("d", "M%s %s H%s", fmtNum(float64(pos.X)), fmtNum(float64(pos.Y)), fmtNum(float64(pos.X)+width))
	line.Attr("stroke", "currentColor")
	g.Append(line)
	tick := xmltree.Leaf("path")
	tick.AttrF("d", "M%s %s V%s", fmtNum(float64(pos.X)), fmtNum(float64(pos.Y)-5), fmtNum(float64(pos.Y)+5))
	tick.Attr("stroke", "currentColor")
	g.Append(tick)
	if b.settings.EndClass == render.EndComplex {
		tick2 := xmltree.Leaf("path")
		tick2.AttrF("d", "M%s %s V%s", fmtNum(float64(pos.X)+3), fmtNum(float64(pos.Y)-5), fmtNum(float64(pos.Y)+5))
		tick2.Attr("stroke", "currentColor")
		g.Append(tick2)
	}
	b.current().Append(g)
}

func (b *Backend) RightMarker(pos geom.Vec) {
	g := xmltree.New("g").Attr("class", "end-marker")
	width := float64(b.settings.MarkerWidth)
	right := float64(pos.X) + width
	line := xmltree.Leaf("path")
	line.AttrF("d", "M%s %s H%s", fmtNum(float64(pos.X)), fmtNum(float64(pos.Y)), fmtNum(right))
	line.Attr("stroke", "currentColor")
	g.Append(line)
	tick := xmltree.Leaf("path")
	tick.AttrF("d", "M%s %s V%s", fmtNum(right), fmtNum(float64(pos.Y)-5), fmtNum(float64(pos.Y)+5))
	tick.Attr("stroke", "currentColor")
	g.Append(tick)
	if b.settings.EndClass == render.EndComplex {
		tick2 := xmltree.Leaf("path")
		tick2.AttrF("d", "M%s %s V%s", fmtNum(right-3), fmtNum(float64(pos.Y)-5), fmtNum(float64(pos.Y)+5))
		tick2.Attr("stroke", "currentColor")
		g.Append(tick2)
	}
	b.current().Append(g)
}

func (b *Backend) DebugPos(pos geom.Vec, cssClass string) {
	c := xmltree.Leaf("circle")
	c.AttrF("cx", "%s", fmtNum(float64(pos.X)))
	c.AttrF("cy", "%s", fmtNum(float64(pos.Y)))
	c.Attr("r", "2")
	c.Attr("class", strings.TrimSpace("debug "+cssClass))
	b.current().Append(c)
}
