package render

import "github.com/0x4d5352/railroad/internal/measure"

// EscapeMarkerPrefix/EscapeMarkerSuffix delimit an escaped hidden symbol
// inside a Node's resolved text. They use the Unicode private-use area so
// they can never collide with real input text; the SVG backend splits on
// them to wrap the enclosed run in <tspan class="escape">.
const (
	EscapeMarkerPrefix = "\uE000"
	EscapeMarkerSuffix = "\uE001"
)

// DefaultLayoutSettings mirrors the upstream project's reference metrics:
// an arc radius of 10, comfortable horizontal/vertical separations, and
// rounded node corners. Both backends' Default*Settings start from this.
func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		HorizontalSeqSeparation: 10,

		VerticalChoiceSeparationOuter: 18,
		VerticalChoiceSeparation:      12,
		VerticalSeqSeparationOuter:    10,
		VerticalSeqSeparation:         8,

		ArcRadius: 10,
		ArcMargin: 5,

		Terminal: NodeStyleSettings{
			HorizontalPadding: 10,
			VerticalPadding:   4,
			Height:            0,
			Radius:            10,
		},
		NonTerminal: NodeStyleSettings{
			HorizontalPadding: 10,
			VerticalPadding:   4,
			Height:            0,
			Radius:            0,
		},
		Comment: NodeStyleSettings{
			HorizontalPadding: 6,
			VerticalPadding:   2,
			Height:            0,
			Radius:            0,
		},

		Group: GroupSettings{
			VerticalPadding:      8,
			HorizontalPadding:    10,
			VerticalMargin:       4,
			HorizontalMargin:     4,
			Thickness:            1,
			Radius:               4,
			TextVerticalOffset:   4,
			TextHorizontalOffset: 4,
		},

		MarkerWidth:           20,
		MarkerProjectedHeight: 10,

		EndClass: EndSimple,
	}
}

// TextRenderSettings parameterises the Unicode-grid backend. Padding is the
// margin of blank cells surrounding the whole diagram; character widths come
// from the per-style measure.Simple values (DefaultTextRenderSettings uses
// one column for a narrow character and two for East-Asian-wide text).
type TextRenderSettings struct {
	LayoutSettings

	Padding  int
	MaxWidth int
}

// DefaultTextRenderSettings scales the shared metrics down to single-column
// grid units: one cell per horizontal unit, one row per vertical unit.
func DefaultTextRenderSettings() *TextRenderSettings {
	ls := DefaultLayoutSettings()
	ls.HorizontalSeqSeparation = 1
	ls.VerticalChoiceSeparationOuter = 2
	ls.VerticalChoiceSeparation = 1
	ls.VerticalSeqSeparationOuter = 1
	ls.VerticalSeqSeparation = 1
	ls.ArcRadius = 1
	ls.ArcMargin = 1
	ls.MarkerWidth = 2
	ls.MarkerProjectedHeight = 0

	textMeasure := measure.Simple{CharacterAdvance: 1, WideCharacterAdvance: 2, LineHeight: 1}
	ls.Terminal = NodeStyleSettings{HorizontalPadding: 1, VerticalPadding: 0, Measure: textMeasure}
	ls.NonTerminal = NodeStyleSettings{HorizontalPadding: 1, VerticalPadding: 0, Measure: textMeasure}
	ls.Comment = NodeStyleSettings{HorizontalPadding: 1, VerticalPadding: 0, Measure: textMeasure}
	ls.Group.TextMeasure = measure.Simple{CharacterAdvance: 1, WideCharacterAdvance: 2, LineHeight: 1}
	ls.Group.HorizontalPadding = 1
	ls.Group.VerticalPadding = 0
	ls.Group.HorizontalMargin = 1
	ls.Group.VerticalMargin = 0
	ls.Group.Thickness = 0
	ls.Group.TextVerticalOffset = 1

	return &TextRenderSettings{LayoutSettings: ls, Padding: 1, MaxWidth: 120}
}

// SvgRenderSettings parameterises the XML backend. CSS is inlined verbatim
// into a <style> element; Colors drives the group fill cycle.
type SvgRenderSettings struct {
	LayoutSettings

	Padding    int
	MaxWidth   int
	StrokeWidth float64
	CSS        string
	Colors     []string
	ArrowStyle string
}

// DefaultSvgRenderSettings uses a 14px monospace metric, matching the scale
// the upstream project ships its reference stylesheet at.
func DefaultSvgRenderSettings() *SvgRenderSettings {
	ls := DefaultLayoutSettings()
	charMeasure := measure.Simple{CharacterAdvance: 8.4, WideCharacterAdvance: 14, LineHeight: 16}

	ls.Terminal.Measure = charMeasure
	ls.NonTerminal.Measure = charMeasure
	ls.Comment.Measure = charMeasure
	ls.Group.TextMeasure = charMeasure
	ls.HiddenSymbolEscape = [2]string{EscapeMarkerPrefix, EscapeMarkerSuffix}

	return &SvgRenderSettings{
		LayoutSettings: ls,
		Padding:        20,
		MaxWidth:       960,
		StrokeWidth:    2,
		ArrowStyle:     "triangle",
		// Colors is left unset: the backend falls back to a go-colorful HSV
		// cycle whose hue advances with each group drawn, so grouping never runs out of
		// distinguishable shades the way a fixed palette would.
	}
}
