package diagram

import (
	"testing"

	"github.com/0x4d5352/railroad/internal/render"
)

// countingMeasure counts how many times Measure is actually invoked, so
// tests can observe whether CalculateLayout recomputed or hit its cache.
type countingMeasure struct{ calls int }

func (m *countingMeasure) Measure(text string) (int, int) {
	m.calls++
	return len(text), 1
}

func straightCtx(width int) render.LayoutContext {
	return render.LayoutContext{
		Width:              width,
		StartConnection:    render.ConnNormal,
		StartTopIsClear:    true,
		StartBottomIsClear: true,
		StartDirection:     render.DirStraight,
		EndConnection:      render.ConnNormal,
		EndTopIsClear:      true,
		EndBottomIsClear:   true,
		EndDirection:       render.DirStraight,
	}
}

func testSettings(measure render.TextMeasure) *render.LayoutSettings {
	return &render.LayoutSettings{
		HorizontalSeqSeparation:       2,
		VerticalSeqSeparation:         1,
		VerticalSeqSeparationOuter:    1,
		VerticalChoiceSeparation:      1,
		VerticalChoiceSeparationOuter: 1,
		ArcRadius:                     1,
		ArcMargin:                     1,
		Terminal: render.NodeStyleSettings{
			HorizontalPadding: 1,
			Measure:           measure,
		},
		NonTerminal: render.NodeStyleSettings{
			HorizontalPadding: 1,
			Measure:           measure,
		},
		Comment: render.NodeStyleSettings{
			HorizontalPadding: 1,
			Measure:           measure,
		},
		Group: render.GroupSettings{
			TextMeasure: measure,
		},
	}
}

// TestCalculateLayoutIsIdempotent exercises the testable property that
// calling CalculateLayout twice with an identical (settings, context) pair
// is a cache hit: the Measure port, which contentLayout would otherwise
// call again, is observed not to run a second time.
func TestCalculateLayoutIsIdempotent(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)
	n := NewNode(render.StyleTerminal, "abc")
	ctx := straightCtx(100)

	CalculateLayout(n, settings, ctx)
	if cm.calls != 1 {
		t.Fatalf("expected 1 Measure call after first layout, got %d", cm.calls)
	}
	widthAfterFirst := n.DisplayWidth

	CalculateLayout(n, settings, ctx)
	if cm.calls != 1 {
		t.Fatalf("expected CalculateLayout to be a cache hit on an unchanged context, but Measure ran again (%d calls)", cm.calls)
	}
	if n.DisplayWidth != widthAfterFirst {
		t.Fatalf("cache hit changed DisplayWidth: %d -> %d", widthAfterFirst, n.DisplayWidth)
	}

	ctx2 := straightCtx(50)
	CalculateLayout(n, settings, ctx2)
	if cm.calls != 2 {
		t.Fatalf("expected a changed context to trigger recomputation, got %d calls", cm.calls)
	}
}

// TestSequenceWrapsWhenNarrow checks that a Sequence with Soft breaks lays
// out as a single row when the width comfortably fits every child, and
// wraps into multiple rows once the width can't.
func TestSequenceWrapsWhenNarrow(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	mk := func() Element {
		return MustSequence([]Element{
			NewNode(render.StyleTerminal, "A"),
			NewNode(render.StyleTerminal, "B"),
			NewNode(render.StyleTerminal, "C"),
			NewNode(render.StyleTerminal, "D"),
		}, []LineBreak{BreakSoft, BreakSoft, BreakSoft})
	}

	wide := mk()
	CalculateLayout(wide, settings, straightCtx(200))
	seq := wide.(*Sequence)
	if len(seq.rows) != 1 {
		t.Fatalf("expected a single row at generous width, got %d rows", len(seq.rows))
	}
	if seq.Height != 0 {
		t.Fatalf("expected zero Height for a single-row sequence, got %d", seq.Height)
	}

	narrow := mk()
	CalculateLayout(narrow, settings, straightCtx(8))
	seqNarrow := narrow.(*Sequence)
	if len(seqNarrow.rows) <= 1 {
		t.Fatalf("expected wrapping into multiple rows at narrow width, got %d rows", len(seqNarrow.rows))
	}
	if seqNarrow.Height <= 0 {
		t.Fatalf("expected positive Height once wrapped, got %d", seqNarrow.Height)
	}
}

// TestSequenceWidthMonotonicity exercises property 7: for fixed settings,
// increasing max_width never increases total height.
func TestSequenceWidthMonotonicity(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	mk := func() Element {
		return MustSequence([]Element{
			NewNode(render.StyleTerminal, "A"),
			NewNode(render.StyleTerminal, "B"),
			NewNode(render.StyleTerminal, "C"),
			NewNode(render.StyleTerminal, "D"),
			NewNode(render.StyleTerminal, "E"),
		}, []LineBreak{BreakSoft, BreakSoft, BreakSoft, BreakSoft})
	}

	widths := []int{6, 10, 20, 40, 80, 200}
	prevHeight := -1
	for _, w := range widths {
		e := mk()
		CalculateLayout(e, settings, straightCtx(w))
		h := e.base().Up + e.base().Height + e.base().Down
		if prevHeight >= 0 && h > prevHeight {
			t.Fatalf("width %d: total height %d exceeds the narrower width's %d", w, h, prevHeight)
		}
		prevHeight = h
	}
}

// TestSequenceSingleRowContainsChildren is a narrow instance of the
// bounding-box-contains-children property: a single-row Sequence's display
// width accounts for every child's width plus the gaps the engine inserted
// between them, and its Up/Down envelope each child's.
func TestSequenceSingleRowContainsChildren(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	a := NewNode(render.StyleTerminal, "A")
	b := NewNode(render.StyleTerminal, "looooong")
	seq := MustSequence([]Element{a, b}, []LineBreak{BreakSoft}).(*Sequence)
	CalculateLayout(seq, settings, straightCtx(500))

	if len(seq.rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(seq.rows))
	}
	childSum := a.base().Width() + b.base().Width()
	if seq.DisplayWidth < childSum {
		t.Fatalf("sequence display width %d is narrower than its children's combined width %d", seq.DisplayWidth, childSum)
	}
	if seq.Up < a.base().Up || seq.Up < b.base().Up {
		t.Fatalf("sequence Up %d doesn't envelope both children (%d, %d)", seq.Up, a.base().Up, b.base().Up)
	}
}

// TestSequenceLineShiftWhenFirstItemIsChoice checks that a wrapped Sequence
// whose first element is a Choice records a nonzero lineShift, that every
// row after the first is narrower by that amount, and that the rows'
// display widths still respect the available width once the shift is
// folded in.
func TestSequenceLineShiftWhenFirstItemIsChoice(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	mk := func() Element {
		choice := MustChoice([]Element{
			NewNode(render.StyleTerminal, "A"),
			NewNode(render.StyleTerminal, "B"),
		}, 0)
		return MustSequence([]Element{
			choice,
			NewNode(render.StyleTerminal, "C"),
			NewNode(render.StyleTerminal, "D"),
			NewNode(render.StyleTerminal, "E"),
		}, []LineBreak{BreakSoft, BreakSoft, BreakSoft})
	}

	narrow := mk()
	CalculateLayout(narrow, settings, straightCtx(16))
	seq := narrow.(*Sequence)
	if len(seq.rows) <= 1 {
		t.Fatalf("expected wrapping into multiple rows, got %d rows", len(seq.rows))
	}
	wantShift := int(settings.ArcRadius)
	if seq.lineShift != wantShift {
		t.Fatalf("expected lineShift %d when the first item is a Choice, got %d", wantShift, seq.lineShift)
	}
	for i, row := range seq.rows[1:] {
		if row.displayWidth > 16 {
			t.Fatalf("row %d display width %d (shift %d already folded in) exceeds the available width 16", i+1, row.displayWidth, seq.lineShift)
		}
	}

	// A plain (non-Choice-leading) sequence under the same width never
	// shifts its wrapped rows.
	plain := MustSequence([]Element{
		NewNode(render.StyleTerminal, "A"),
		NewNode(render.StyleTerminal, "B"),
		NewNode(render.StyleTerminal, "C"),
		NewNode(render.StyleTerminal, "D"),
	}, []LineBreak{BreakSoft, BreakSoft, BreakSoft})
	CalculateLayout(plain, settings, straightCtx(16))
	plainSeq := plain.(*Sequence)
	if plainSeq.lineShift != 0 {
		t.Fatalf("expected zero lineShift for a sequence not led by a Choice, got %d", plainSeq.lineShift)
	}
}

// TestChoiceBranchesAreOrderedAroundDefault checks that non-default
// branches are placed above/below the default branch in declaration order,
// matching the layout's up/down cursor walk.
func TestChoiceBranchesAreOrderedAroundDefault(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	a := NewNode(render.StyleTerminal, "A")
	b := NewNode(render.StyleTerminal, "B")
	c := NewNode(render.StyleTerminal, "C")
	choice := MustChoice([]Element{a, b, c}, 1).(*Choice)
	CalculateLayout(choice, settings, straightCtx(100))

	if choice.branchY[1] != 0 {
		t.Fatalf("expected the default branch to sit on the through line (y=0), got %d", choice.branchY[1])
	}
	if choice.branchY[0] >= choice.branchY[1] {
		t.Fatalf("expected the branch before default to sit above it: y[0]=%d, y[1]=%d", choice.branchY[0], choice.branchY[1])
	}
	if choice.branchY[2] <= choice.branchY[1] {
		t.Fatalf("expected the branch after default to sit below it: y[2]=%d, y[1]=%d", choice.branchY[2], choice.branchY[1])
	}
	if choice.Up <= 0 || choice.Down <= 0 {
		t.Fatalf("expected a 3-branch choice to have positive Up and Down, got Up=%d Down=%d", choice.Up, choice.Down)
	}
}

// TestChoiceCanUseOptEntersExitsMatchesOptional checks that only an
// optional Choice (one with a Skip branch) advertises itself as able to
// absorb a parent's opt line.
func TestChoiceCanUseOptEntersExitsMatchesOptional(t *testing.T) {
	a := NewNode(render.StyleTerminal, "A")
	b := NewNode(render.StyleTerminal, "B")

	plain := MustChoice([]Element{a, b}, 0).(*Choice)
	if plain.canUseOptEnters() || plain.canUseOptExits() {
		t.Fatalf("expected a non-optional Choice to never claim opt-line use")
	}

	opt := NewOptional(NewNode(render.StyleTerminal, "C")).(*Choice)
	if !opt.canUseOptEnters() || !opt.canUseOptExits() {
		t.Fatalf("expected an optional Choice to claim both opt-line sides")
	}
}

// TestChoiceAbsorbsParentOptLine checks that when a parent offers an opt
// line on a Choice's entry side, an optional Choice strips its own Skip
// branch out of layout (items shorter than Branches) and records
// connectOptEnter, instead of drawing its own redundant split/rejoin arc.
func TestChoiceAbsorbsParentOptLine(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	opt := NewOptional(NewNode(render.StyleTerminal, "C")).(*Choice)
	ctx := straightCtx(100)
	ctx.OptEnterTop = true
	CalculateLayout(opt, settings, ctx)

	if !opt.connectOptEnter {
		t.Fatalf("expected connectOptEnter when the parent offers OptEnterTop")
	}
	if len(opt.items) != len(opt.Branches)-1 {
		t.Fatalf("expected the Skip branch folded out of items: %d Branches, %d items", len(opt.Branches), len(opt.items))
	}
	for _, it := range opt.items {
		if IsSkip(it) {
			t.Fatalf("expected no Skip branch left in items once the opt line is absorbed")
		}
	}

	// Without an offered opt line, the Skip branch stays and both layout
	// paths are drawn.
	opt2 := NewOptional(NewNode(render.StyleTerminal, "C")).(*Choice)
	CalculateLayout(opt2, settings, straightCtx(100))
	if opt2.connectOptEnter || opt2.connectOptExit {
		t.Fatalf("expected no absorption without a parent opt line")
	}
	if len(opt2.items) != len(opt2.Branches) {
		t.Fatalf("expected items to equal Branches without absorption")
	}
}

// TestOneOrMoreStacksRepeatBelowItem checks the vertical stacking formula:
// Down grows with the repeat arm's own footprint plus the separation gap.
func TestOneOrMoreStacksRepeatBelowItem(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	item := NewNode(render.StyleTerminal, "item")
	repeat := NewNode(render.StyleTerminal, "repeat")
	oom := MustOneOrMore(item, repeat, false).(*OneOrMore)
	CalculateLayout(oom, settings, straightCtx(100))

	if oom.Down <= item.base().Down {
		t.Fatalf("expected OneOrMore.Down (%d) to exceed the bare item's Down (%d)", oom.Down, item.base().Down)
	}
	if oom.Up != item.base().Up {
		t.Fatalf("expected OneOrMore.Up to equal the item's Up (the repeat arm never affects Up), got %d vs %d", oom.Up, item.base().Up)
	}
}

// TestGroupReservesPaddingAroundChild checks that a Group's box is always
// strictly larger than its bare child on every side once group padding and
// border thickness are non-zero.
func TestGroupReservesPaddingAroundChild(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)
	settings.Group = render.GroupSettings{
		HorizontalPadding: 3,
		VerticalPadding:   2,
		HorizontalMargin:  1,
		VerticalMargin:    1,
		Thickness:         1,
		TextMeasure:       cm,
	}

	item := NewNode(render.StyleTerminal, "A")
	g := NewGroup(item, "")
	CalculateLayout(g, settings, straightCtx(100))

	inner := g.Item.base()
	if g.ContentWidth <= inner.Width() {
		t.Fatalf("expected group content width (%d) to exceed its child's width (%d)", g.ContentWidth, inner.Width())
	}
	if g.Up <= inner.Up || g.Down <= inner.Down {
		t.Fatalf("expected group Up/Down (%d/%d) to exceed the child's (%d/%d)", g.Up, g.Down, inner.Up, inner.Down)
	}
}

// TestBarrierPassesThroughMetricsUnchanged checks that Barrier is a pure
// pass-through of its child's box record.
func TestBarrierPassesThroughMetricsUnchanged(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	item := NewNode(render.StyleTerminal, "A")
	barrier := &Barrier{Item: item}
	CalculateLayout(barrier, settings, straightCtx(100))

	ib := item.base()
	if barrier.DisplayWidth != ib.DisplayWidth || barrier.Up != ib.Up || barrier.Down != ib.Down {
		t.Fatalf("expected Barrier's box to mirror its child exactly: barrier=%+v child=%+v", barrier.Base, ib)
	}
}

// TestCalculateLayoutPanicsOnHandBuiltSequenceArityMismatch exercises the
// InvariantError path: a Sequence assembled by struct literal (bypassing
// NewSequence) with a breaks/items arity mismatch must not silently lay out.
func TestCalculateLayoutPanicsOnHandBuiltSequenceArityMismatch(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	seq := &Sequence{
		Items:  []Element{NewNode(render.StyleTerminal, "A"), NewNode(render.StyleTerminal, "B")},
		Breaks: []LineBreak{BreakSoft, BreakSoft},
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for a hand-built Sequence with mismatched break arity")
		}
		if _, ok := r.(*InvariantError); !ok {
			t.Fatalf("expected an *InvariantError, got %T: %v", r, r)
		}
	}()
	CalculateLayout(seq, settings, straightCtx(100))
}

// TestCalculateLayoutPanicsOnHandBuiltChoiceBadDefault mirrors the above for
// a Choice whose Default index a caller set out of range by hand.
func TestCalculateLayoutPanicsOnHandBuiltChoiceBadDefault(t *testing.T) {
	cm := &countingMeasure{}
	settings := testSettings(cm)

	ch := &Choice{
		Branches: []Element{NewNode(render.StyleTerminal, "A"), NewNode(render.StyleTerminal, "B")},
		Default:  5,
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for a hand-built Choice with an out-of-range default")
		}
		if _, ok := r.(*InvariantError); !ok {
			t.Fatalf("expected an *InvariantError, got %T: %v", r, r)
		}
	}()
	CalculateLayout(ch, settings, straightCtx(100))
}
