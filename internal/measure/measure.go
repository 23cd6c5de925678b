// Package measure implements the TextMeasure port: measuring the rendered
// width/height of a Node's label.
package measure

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"
)

// Simple is a monospace-oriented text measure: width is the sum of each
// grapheme cluster's advance (wide for East-Asian-width clusters, narrow
// otherwise), height is line count times line height. Grapheme clustering
// means a skin-tone-modified emoji or a combining accent sequence counts as
// a single column, matching what a terminal or a monospace font actually
// renders it as.
type Simple struct {
	CharacterAdvance     float64
	WideCharacterAdvance float64
	LineHeight           float64
}

func (m Simple) Measure(text string) (width, height int) {
	if text == "" {
		return 0, int(math.Ceil(m.LineHeight))
	}
	lines := strings.Split(text, "\n")
	maxW := 0.0
	for _, line := range lines {
		w := 0.0
		gr := uniseg.NewGraphemes(line)
		for gr.Next() {
			runes := gr.Runes()
			if uniseg.StringWidth(string(runes)) > 1 {
				w += m.WideCharacterAdvance
			} else {
				w += m.CharacterAdvance
			}
		}
		if w > maxW {
			maxW = w
		}
	}
	return int(math.Ceil(maxW)), int(math.Ceil(float64(len(lines)) * m.LineHeight))
}
