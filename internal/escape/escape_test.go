package escape

import (
	"strings"
	"testing"
)

func TestRevealPlainText(t *testing.T) {
	got := Reveal("hello world", "[", "]")
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestRevealKnownControl(t *testing.T) {
	got := Reveal("a\tb", "[", "]")
	want := "a[\\t]b"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestRevealNUL(t *testing.T) {
	got := Reveal("x\x00y", "<", ">")
	want := "x<<NUL>>y"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestRevealUnnamedControl(t *testing.T) {
	// U+200B (zero width space) is category Cf with no entry in charNames,
	// so it must fall back to the hex escape form.
	got := Reveal("a​b", "[", "]")
	if !strings.Contains(got, "U200B") {
		t.Errorf("expected hex escape for U+200B, got %q", got)
	}
}

func TestRevealPreservesSpace(t *testing.T) {
	got := Reveal("a b", "[", "]")
	if got != "a b" {
		t.Errorf("got %q", got)
	}
}

func TestRevealPreservesMultiCodepointCluster(t *testing.T) {
	// "e" + combining acute accent (U+0301) forms one grapheme cluster out of
	// two codepoints; it must pass through untouched even though the second
	// codepoint alone would need escaping.
	cluster := "é"
	got := Reveal("x"+cluster+"y", "[", "]")
	if got != "x"+cluster+"y" {
		t.Errorf("got %q", got)
	}
}

func TestRevealAstralEscape(t *testing.T) {
	// U+1F600 (grinning face emoji) is not in the M/C/Z escape categories, so
	// it passes through; Co/astral control-like codepoints above 0xFFFF use
	// the 8-digit hex form. U+E0001 (language tag, category Cf) exercises it.
	got := Reveal("x\U000E0001y", "<", ">")
	if !strings.Contains(got, "U000E0001") {
		t.Errorf("expected 8-digit hex escape, got %q", got)
	}
}
