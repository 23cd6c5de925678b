// Package textrender implements the Render port as a Unicode character
// grid: every line operation marks a bitmask of box-drawing directions
// into the cells it passes through, and cells are looked up in a static
// glyph table once the whole diagram has been drawn.
package textrender

import (
	"strings"

	"github.com/muesli/termenv"

	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

type dir uint8

const (
	dirN dir = 1 << iota
	dirE
	dirS
	dirW
)

var glyphs = map[dir]rune{
	0:                          ' ',
	dirE:                       '─',
	dirW:                       '─',
	dirE | dirW:                '─',
	dirN:                       '│',
	dirS:                       '│',
	dirN | dirS:                '│',
	dirN | dirE:                '└',
	dirN | dirW:                '┘',
	dirS | dirE:                '┌',
	dirS | dirW:                '┐',
	dirN | dirE | dirS:         '├',
	dirN | dirW | dirS:         '┤',
	dirE | dirS | dirW:         '┬',
	dirN | dirE | dirW:         '┴',
	dirN | dirE | dirS | dirW:  '┼',
}

func dirOf(d render.Direction) dir {
	switch d {
	case render.North:
		return dirN
	case render.South:
		return dirS
	case render.East:
		return dirE
	case render.West:
		return dirW
	}
	return 0
}

func horizDir(reverse bool) render.Direction {
	if reverse {
		return render.West
	}
	return render.East
}

// cell holds either an accumulated direction bitmask (rendered through
// glyphs) or a literal rune override (arrowheads, label text, markers),
// which always wins once set. style/hasStyle is a side channel purely for
// StringColor: it never affects which glyph a cell renders as.
type cell struct {
	dirs    dir
	literal rune
	hasLit  bool

	style    render.NodeStyle
	hasStyle bool
}

// Backend is a text/Render implementation sized to a known grid in advance.
type Backend struct {
	settings *render.TextRenderSettings
	grid     [][]cell
	width    int
	height   int
}

// New allocates a width x height grid of blank cells.
func New(settings *render.TextRenderSettings, width, height int) *Backend {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	return &Backend{settings: settings, grid: grid, width: width, height: height}
}

func (b *Backend) Settings() *render.LayoutSettings { return &b.settings.LayoutSettings }

func (b *Backend) Enter(elementName string) {}
func (b *Backend) Exit()                     {}

func (b *Backend) inBounds(x, y int) bool {
	return y >= 0 && y < b.height && x >= 0 && x < b.width
}

func (b *Backend) mergeDir(x, y int, d dir) {
	if d == 0 || !b.inBounds(x, y) {
		return
	}
	c := &b.grid[y][x]
	if c.hasLit {
		return
	}
	c.dirs |= d
}

func (b *Backend) setLiteral(x, y int, r rune) {
	if !b.inBounds(x, y) {
		return
	}
	b.grid[y][x] = cell{literal: r, hasLit: true}
}

func (b *Backend) setText(x, y int, s string) {
	for _, r := range s {
		b.setLiteral(x, y, r)
		x++
	}
}

// markStyle tags a cell with the node style whose box covers it, for
// StringColor to key off; it never touches dirs/literal.
func (b *Backend) markStyle(x, y int, style render.NodeStyle) {
	if !b.inBounds(x, y) {
		return
	}
	c := &b.grid[y][x]
	c.style = style
	c.hasStyle = true
}

func (b *Backend) markStyleRect(left, top, right, bottom int, style render.NodeStyle) {
	for y := top; y <= bottom; y++ {
		for x := left; x <= right; x++ {
			b.markStyle(x, y, style)
		}
	}
}

func glyphOf(c cell) rune {
	if c.hasLit {
		return c.literal
	}
	return glyphs[c.dirs]
}

// String renders the grid row by row, trailing spaces trimmed.
func (b *Backend) String() string {
	var out strings.Builder
	for y, row := range b.grid {
		var line strings.Builder
		for _, c := range row {
			line.WriteRune(glyphOf(c))
		}
		out.WriteString(strings.TrimRight(line.String(), " "))
		if y < len(b.grid)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// styleColor maps a node style to the hex color StringColor paints it with.
var styleColor = map[render.NodeStyle]string{
	render.StyleTerminal:    "#e06c75",
	render.StyleNonTerminal: "#61afef",
	render.StyleComment:     "#888888",
}

// StringColor renders the same grid as String, wrapping each run of cells
// that share a node style in the profile's closest-matching ANSI color.
// Passing termenv.Ascii returns plain text, exactly like String.
func (b *Backend) StringColor(p termenv.Profile) string {
	var out strings.Builder
	for y, row := range b.grid {
		var line strings.Builder
		x := 0
		for x < len(row) {
			if !row[x].hasStyle {
				line.WriteRune(glyphOf(row[x]))
				x++
				continue
			}
			style := row[x].style
			start := x
			for x < len(row) && row[x].hasStyle && row[x].style == style {
				x++
			}
			var seg strings.Builder
			for _, c := range row[start:x] {
				seg.WriteRune(glyphOf(c))
			}
			line.WriteString(termenv.String(seg.String()).Foreground(p.Color(styleColor[style])).String())
		}
		out.WriteString(strings.TrimRight(line.String(), " "))
		if y < len(b.grid)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

type line struct {
	b       *Backend
	pos     geom.Vec
	reverse bool
}

func (b *Backend) Line(pos geom.Vec, reverse bool, cssClass string) render.Line {
	return &line{b: b, pos: pos, reverse: reverse}
}

func (l *line) hLine(y, fromX, toX int) {
	if fromX == toX {
		return
	}
	lo, hi := fromX, toX
	if lo > hi {
		lo, hi = hi, lo
	}
	for x := lo; x <= hi; x++ {
		d := dir(0)
		if x > lo {
			d |= dirW
		}
		if x < hi {
			d |= dirE
		}
		l.b.mergeDir(x, y, d)
	}
}

func (l *line) vLine(x, fromY, toY int) {
	if fromY == toY {
		return
	}
	lo, hi := fromY, toY
	if lo > hi {
		lo, hi = hi, lo
	}
	for y := lo; y <= hi; y++ {
		d := dir(0)
		if y > lo {
			d |= dirN
		}
		if y < hi {
			d |= dirS
		}
		l.b.mergeDir(x, y, d)
	}
}

func (l *line) SegmentAbs(x int, arrowBegin, arrowEnd bool) render.Line {
	from := l.pos.X
	l.hLine(l.pos.Y, from, x)
	if arrowBegin {
		l.b.setLiteral(from, l.pos.Y, arrowRune(from > x))
	}
	if arrowEnd {
		l.b.setLiteral(x, l.pos.Y, arrowRune(from > x))
	}
	l.pos = geom.Vec{X: x, Y: l.pos.Y}
	return l
}

func arrowRune(pointingLeft bool) rune {
	if pointingLeft {
		return '◄'
	}
	return '►'
}

// Bend implements the general cardinal-aware turn: comingFrom marks the
// horizontal stub at the starting cell, the vertical run fills the column
// between the current row and targetY, and comingTo (when hasComingTo is
// set) marks the stub at the landing cell. Where a caller follows the Bend
// with a SegmentAbs, that segment derives the outgoing stub from real
// coordinates; Choice's opt-enter line ends on a Bend and relies on
// comingTo for the landing stub.
func (l *line) Bend(targetY int, comingFrom, comingTo render.Direction, hasComingTo bool, arrowBegin, arrowEnd bool) render.Line {
	x, y0 := l.pos.X, l.pos.Y
	l.b.mergeDir(x, y0, dirOf(comingFrom))
	l.vLine(x, y0, targetY)
	if hasComingTo {
		l.b.mergeDir(x, targetY, dirOf(comingTo))
	}
	l.pos = geom.Vec{X: x, Y: targetY}
	return l
}

func (l *line) BendForwardAbs(y int, arrowBegin, arrowEnd bool) render.Line {
	fwd := horizDir(l.reverse)
	return l.Bend(y, render.ReverseDirection(fwd), fwd, false, arrowBegin, arrowEnd)
}

func (l *line) BendBackwardAbs(y int, arrowBegin, arrowEnd bool) render.Line {
	fwd := horizDir(l.reverse)
	back := render.ReverseDirection(fwd)
	return l.Bend(y, back, back, false, arrowBegin, arrowEnd)
}

func (l *line) BendBackwardReverseAbs(y int, arrowBegin, arrowEnd bool) render.Line {
	fwd := horizDir(l.reverse)
	return l.Bend(y, fwd, fwd, false, arrowBegin, arrowEnd)
}

// nodeGlyphs mirrors the upstream project's per-style character set for the
// box built around a Node's text: cap-left, cap-right (the connection-row
// wall, carrying the stub for the line passing through), corners, the
// horizontal rule, and the side wall used on every other text row.
func nodeGlyphs(style render.NodeStyle) (capL, capR, tl, tr, bl, br, h, side rune) {
	switch style {
	case render.StyleTerminal:
		return '┤', '├', '┌', '┐', '└', '┘', '─', '│'
	case render.StyleNonTerminal:
		return '╢', '╟', '╔', '╗', '╚', '╝', '═', '║'
	default:
		return '╴', '╶', ' ', ' ', ' ', ' ', ' ', ' '
	}
}

func (b *Backend) Node(pos geom.Vec, style render.NodeStyle, cssClass string, contentWidth, up, down, radius, padding int, text string, href, title *string) {
	left := pos.X
	right := left + contentWidth - 1
	if right < left {
		right = left
	}
	capL, capR, tl, tr, bl, br, h, side := nodeGlyphs(style)

	lines := strings.Split(text, "\n")
	offsetTop := len(lines) / 2

	for j, ln := range lines {
		y := pos.Y - offsetTop + j
		b.setLiteral(left, y, side)
		b.setLiteral(right, y, side)
		b.setText(left+padding, y, ln)
	}

	topY := pos.Y - offsetTop - 1
	bottomY := pos.Y + (len(lines) - offsetTop)
	b.setLiteral(left, topY, tl)
	b.setLiteral(left, bottomY, bl)
	for x := left + 1; x < right; x++ {
		b.setLiteral(x, topY, h)
		b.setLiteral(x, bottomY, h)
	}
	b.setLiteral(right, topY, tr)
	b.setLiteral(right, bottomY, br)

	b.setLiteral(left, pos.Y, capL)
	b.setLiteral(right, pos.Y, capR)

	b.markStyleRect(left, topY, right, bottomY, style)
}

func (b *Backend) Group(pos geom.Vec, width, height int, cssClass string, textWidth int, text, href, title *string) {
	left, top := pos.X, pos.Y
	right := left + width - 1
	bottom := top + height - 1
	for x := left + 1; x < right; x++ {
		b.mergeDir(x, top, dirE|dirW)
		b.mergeDir(x, bottom, dirE|dirW)
	}
	for y := top + 1; y < bottom; y++ {
		b.mergeDir(left, y, dirN|dirS)
		b.mergeDir(right, y, dirN|dirS)
	}
	b.setLiteral(left, top, '┌')
	b.setLiteral(right, top, '┐')
	b.setLiteral(left, bottom, '└')
	b.setLiteral(right, bottom, '┘')
	if text != nil && *text != "" {
		b.setText(left+1, top-1, *text)
	}
}

func (b *Backend) LeftMarker(pos geom.Vec) {
	b.setLiteral(pos.X, pos.Y, '├')
	if b.settings.EndClass == render.EndComplex {
		b.setLiteral(pos.X+1, pos.Y, '┼')
	}
}

func (b *Backend) RightMarker(pos geom.Vec) {
	right := pos.X + b.settings.MarkerWidth - 1
	if right < pos.X {
		right = pos.X
	}
	b.setLiteral(right, pos.Y, '┤')
	if b.settings.EndClass == render.EndComplex && right-1 >= pos.X {
		b.setLiteral(right-1, pos.Y, '┼')
	}
}

func (b *Backend) DebugPos(pos geom.Vec, cssClass string) {
	b.setLiteral(pos.X, pos.Y, '•')
}
