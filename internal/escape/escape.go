// Package escape spells out hidden or hard-to-see Unicode code points
// inside Node labels (control characters, combining marks, separators) so
// they remain visible in a rendered diagram instead of vanishing into
// whitespace.
package escape

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// charNames mirrors the canonical short names for C0/C1 controls plus
// NBSP/SHY, exactly as a terminal or a text editor's "show invisibles" mode
// would label them.
var charNames = map[rune]string{
	0x00: "<NUL>", 0x01: "<SOH>", 0x02: "<STX>", 0x03: "<ETX>",
	0x04: "<EOT>", 0x05: "<ENQ>", 0x06: "<ACK>", 0x07: `\a`,
	0x08: `\b`, 0x09: `\t`, 0x0A: `\n`, 0x0B: `\v`,
	0x0C: `\f`, 0x0D: `\r`, 0x0E: "<SO>", 0x0F: "<SI>",
	0x10: "<DLE>", 0x11: "<DC1>", 0x12: "<DC2>", 0x13: "<DC3>",
	0x14: "<DC4>", 0x15: "<NAK>", 0x16: "<SYN>", 0x17: "<ETB>",
	0x18: "<CAN>", 0x19: "<EM>", 0x1A: "<SUB>", 0x1B: "<ESC>",
	0x1C: "<FS>", 0x1D: "<GS>", 0x1E: "<RS>", 0x1F: "<US>",
	0x7F: "<DEL>",
	0x80: "<PAD>", 0x81: "<HOP>", 0x82: "<BPH>", 0x83: "<NBH>",
	0x84: "<IND>", 0x85: "<NEL>", 0x86: "<SSA>", 0x87: "<ESA>",
	0x88: "<HTS>", 0x89: "<HTJ>", 0x8A: "<VTS>", 0x8B: "<PLD>",
	0x8C: "<PLU>", 0x8D: "<RI>", 0x8E: "<SS2>", 0x8F: "<SS3>",
	0x90: "<DCS>", 0x91: "<PU1>", 0x92: "<PU2>", 0x93: "<STS>",
	0x94: "<CCH>", 0x95: "<MW>", 0x96: "<SPA>", 0x97: "<EPA>",
	0x98: "<SOS>", 0x99: "<SGC>", 0x9A: "<SCI>", 0x9B: "<CSI>",
	0x9C: "<ST>", 0x9D: "<OSC>", 0x9E: "<PM>", 0x9F: "<APC>",
	0xA0: "<NBSP>", 0xAD: "<SHY>",
}

// Reveal walks s grapheme by grapheme, leaving multi-codepoint clusters and
// the ASCII space untouched, and wrapping any other hidden codepoint
// (marks, separators, controls including tab and newline) in prefix/suffix. Single codepoints
// with a canonical name use it; otherwise falls back to a <Uxxxx>/<Uxxxxxxxx>
// hex escape.
func Reveal(s, prefix, suffix string) string {
	var out strings.Builder
	state := -1
	remaining := s
	for len(remaining) > 0 {
		cluster, rest, _, newState := uniseg.FirstGraphemeClusterInString(remaining, state)
		state = newState
		remaining = rest

		runes := []rune(cluster)
		if len(runes) != 1 || cluster == " " {
			out.WriteString(cluster)
			continue
		}
		r := runes[0]
		if name, ok := charNames[r]; ok {
			out.WriteString(prefix)
			out.WriteString(name)
			out.WriteString(suffix)
			continue
		}
		if needsEscape(r) {
			out.WriteString(prefix)
			out.WriteString(hexEscape(r))
			out.WriteString(suffix)
			continue
		}
		out.WriteString(cluster)
	}
	return out.String()
}

func needsEscape(r rune) bool {
	return unicode.Is(unicode.M, r) || unicode.Is(unicode.C, r) || unicode.Is(unicode.Z, r)
}

func hexEscape(r rune) string {
	if r > 0xFFFF {
		return fmt.Sprintf("<U%08X>", r)
	}
	return fmt.Sprintf("<U%04X>", r)
}
