// Package render defines the ports the layout engine renders through: the
// Render/Line sink interface implemented by the text and SVG backends, the
// settings and context records that parameterise layout, and the small
// value interfaces (TextMeasure, HrefResolver) that let a caller plug in
// font metrics and link rewriting without the core ever touching global
// state.
package render

import (
	"math"

	"github.com/0x4d5352/railroad/internal/geom"
)

// TextMeasure measures the rendered dimensions of a Node's text. Must be
// cheap to call repeatedly and must not retain references to the tree.
type TextMeasure interface {
	Measure(text string) (width, height int)
}

// HrefResolver rewrites a node's text/href/title triple before render.
// ResolverData is whatever opaque value the Node was constructed with.
type HrefResolver interface {
	Resolve(text string, href, title *string, resolverData any) (string, *string, *string)
}

// NodeStyle selects which of the three node skins to draw.
type NodeStyle int

const (
	StyleTerminal NodeStyle = iota
	StyleNonTerminal
	StyleComment
)

// EndClass selects the visual style of the diagram's two outer caps.
type EndClass int

const (
	EndSimple EndClass = iota
	EndComplex
)

// ConnectionType describes how a line reaches an element from its
// neighbour.
type ConnectionType int

const (
	ConnNull ConnectionType = iota
	ConnNormal
	ConnStackBound
	ConnStack
	ConnSplit
)

// ArcSize returns the horizontal space this connection reserves for its
// curve, given the current style settings.
func (c ConnectionType) ArcSize(s *LayoutSettings) int {
	switch c {
	case ConnNormal, ConnNull:
		return 0
	case ConnStack, ConnStackBound:
		return int(math.Ceil(s.ArcRadius)) + s.ArcMargin
	case ConnSplit:
		return int(math.Ceil(2*s.ArcRadius)) + s.ArcMargin
	default:
		return 0
	}
}

// ConnectionDirection says where a connection turns before/after an
// element.
type ConnectionDirection int

const (
	DirUp ConnectionDirection = iota
	DirDown
	DirStraight
)

// NodeStyleSettings bundles the per-style knobs that Node layout consults:
// padding, corner radius, and the text measure used for that style.
// Horizontal and vertical padding are tracked separately because the text
// backend draws its box border flush against the text's own line count
// (zero vertical padding) while still wanting a blank column on each side.
type NodeStyleSettings struct {
	HorizontalPadding int
	VerticalPadding   int
	Height            int
	Radius            int
	Measure           TextMeasure
}

// GroupSettings bundles the knobs Group layout consults.
type GroupSettings struct {
	VerticalPadding     int
	HorizontalPadding   int
	VerticalMargin      int
	HorizontalMargin    int
	Thickness           int
	Radius              int
	TextVerticalOffset  int
	TextHorizontalOffset int
	TextMeasure         TextMeasure
}

// LayoutSettings are the global style knobs shared by every element in one
// render_text/render_svg call.
type LayoutSettings struct {
	HorizontalSeqSeparation int

	VerticalChoiceSeparationOuter int
	VerticalChoiceSeparation      int
	VerticalSeqSeparationOuter    int
	VerticalSeqSeparation         int

	ArcRadius float64
	ArcMargin int

	Terminal    NodeStyleSettings
	NonTerminal NodeStyleSettings
	Comment     NodeStyleSettings

	Group GroupSettings

	MarkerWidth           int
	MarkerProjectedHeight int

	EndClass EndClass

	// HiddenSymbolEscape is the (prefix, suffix) pair flanking an escaped
	// hidden symbol in a Node's text. The SVG backend uses this to find
	// escape boundaries and wrap them in a <tspan class="escape">; the text
	// backend typically leaves it empty.
	HiddenSymbolEscape [2]string

	HrefResolver HrefResolver
}

func (s *NodeStyleSettings) forStyle() *NodeStyleSettings { return s }

// StyleSettings returns the NodeStyleSettings for a given NodeStyle.
func (s *LayoutSettings) StyleSettings(style NodeStyle) *NodeStyleSettings {
	switch style {
	case StyleTerminal:
		return &s.Terminal
	case StyleNonTerminal:
		return &s.NonTerminal
	default:
		return &s.Comment
	}
}

// LayoutContext is handed down from a parent to a child during
// calculate_layout.
type LayoutContext struct {
	Width int

	// IsOuter is false for anything nested directly inside a Choice branch;
	// it selects which of the two (inner/outer) vertical separation
	// constants applies.
	IsOuter bool

	StartConnection  ConnectionType
	StartTopIsClear  bool
	StartBottomIsClear bool
	StartDirection   ConnectionDirection

	EndConnection  ConnectionType
	EndTopIsClear  bool
	EndBottomIsClear bool
	EndDirection   ConnectionDirection

	AllowShrinkingStacks bool

	OptEnterTop    bool
	OptEnterBottom bool
	OptExitTop     bool
	OptExitBottom  bool
}

// Direction is the two-letter cardinal code used by Line.Bend to describe
// which side of an arc a line enters/leaves: "w", "e", "n" or "s".
type Direction string

const (
	West  Direction = "w"
	East  Direction = "e"
	North Direction = "n"
	South Direction = "s"
)

func ReverseDirection(d Direction) Direction {
	if d == West {
		return East
	}
	return West
}

// OptLine describes a bypass line a parent offers to a child for opt_enter_*.
type OptLine struct {
	Dir Direction
	Pos geom.Vec
}

// OptExit additionally carries an alternative position the child may prefer
// (the "stack skipping" secondary coordinate Choice offers).
type OptExit struct {
	Dir         Direction
	Pos         geom.Vec
	Alternative *geom.Vec
}

// RenderContext is handed down from a parent to a child during render.
type RenderContext struct {
	Pos geom.Vec

	StartConnectionPos geom.Vec
	EndConnectionPos   geom.Vec

	Reverse bool

	OptEnterTop    *OptLine
	OptEnterBottom *OptLine
	OptExitTop     *OptExit
	OptExitBottom  *OptExit
}

// Dir is +1 for left-to-right rendering, -1 when Reverse flips the diagram.
func (c RenderContext) Dir() int {
	if c.Reverse {
		return -1
	}
	return 1
}

// Line is an in-progress path being drawn by a backend.
type Line interface {
	SegmentAbs(x int, arrowBegin, arrowEnd bool) Line
	Bend(y int, comingFrom, comingTo Direction, hasComingTo bool, arrowBegin, arrowEnd bool) Line
	BendForwardAbs(y int, arrowBegin, arrowEnd bool) Line
	BendBackwardAbs(y int, arrowBegin, arrowEnd bool) Line
	BendBackwardReverseAbs(y int, arrowBegin, arrowEnd bool) Line
}

// Render is the sink the layout engine's render pass draws through.
type Render interface {
	Settings() *LayoutSettings

	Enter(elementName string)
	Exit()

	Line(pos geom.Vec, reverse bool, cssClass string) Line

	Node(pos geom.Vec, style NodeStyle, cssClass string, contentWidth, up, down, radius, padding int, text string, href, title *string)

	Group(pos geom.Vec, width, height int, cssClass string, textWidth int, text, href, title *string)

	LeftMarker(pos geom.Vec)
	RightMarker(pos geom.Vec)

	DebugPos(pos geom.Vec, cssClass string)
}
