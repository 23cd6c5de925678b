package diagram

import (
	"fmt"
	"math"

	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// LineBreak is the join kind between two adjacent Sequence children.
type LineBreak int

const (
	BreakDefault LineBreak = iota
	BreakSoft
	BreakHard
	BreakNoBreak
)

// Sequence is horizontal concatenation of children, wrapping into stacked
// rows when it doesn't fit the available width.
type Sequence struct {
	Base

	Items  []Element
	Breaks []LineBreak

	rows []seqRow

	// lineShift is how far every row after the first is offset so its arc
	// lines up with the first row's: nonzero only when the first item is
	// itself a Choice (whose split arc already eats into the row) or the
	// wrap isolates our start into a Split connection.
	lineShift int
}

type seqRow struct {
	items        []Element
	gaps         []int // gap before items[i], for i>0
	y            int   // row's through-line y, relative to the first row's through line (rows[0].y == 0)
	displayWidth int
	up, down     int
}

// NewSequence applies the tree's smart-constructor invariants: empty and
// all-Skip sequences reduce to Skip, singletons reduce to their one child,
// nested Sequences of a uniform break kind splice into the parent when
// both of their surrounding breaks (if any) share that kind, and otherwise
// the item/linebreak arity is validated.
func NewSequence(items []Element, breaks []LineBreak) (Element, error) {
	if len(items) == 0 {
		return NewSkip(), nil
	}
	if len(items) == 1 {
		return items[0], nil
	}
	if len(breaks) != len(items)-1 {
		return nil, &LoadingError{Path: "sequence.linebreaks", Message: fmt.Sprintf("expected %d linebreaks for %d children, got %d", len(items)-1, len(items), len(breaks))}
	}

	items, breaks = flattenSequenceItems(items, breaks)

	allSkip := true
	for _, it := range items {
		if !IsSkip(it) {
			allSkip = false
			break
		}
	}
	if allSkip {
		return NewSkip(), nil
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &Sequence{Items: items, Breaks: breaks}, nil
}

// flattenSequenceItems splices a child *Sequence into the parent list when
// the child's own breaks are all one kind and every break adjoining it in
// the parent (the one before it, the one after it) is that same kind —
// splicing under any other condition would change which gaps get which
// break kind.
func flattenSequenceItems(items []Element, breaks []LineBreak) ([]Element, []LineBreak) {
	const none = LineBreak(-1)

	out := make([]Element, 0, len(items))
	outBreaks := make([]LineBreak, 0, len(breaks))

	for i, it := range items {
		before, after := none, none
		if i > 0 {
			before = breaks[i-1]
		}
		if i < len(breaks) {
			after = breaks[i]
		}

		if child, ok := it.(*Sequence); ok && sequenceIsUniform(child, before, after) {
			out = append(out, child.Items...)
			outBreaks = append(outBreaks, child.Breaks...)
			if i < len(breaks) {
				outBreaks = append(outBreaks, breaks[i])
			}
			continue
		}

		out = append(out, it)
		if i < len(breaks) {
			outBreaks = append(outBreaks, breaks[i])
		}
	}
	return out, outBreaks
}

// sequenceIsUniform reports whether every break inside seq is the same
// kind, and whether that kind also matches whichever of the parent's
// surrounding breaks exist (a sentinel of -1 means "no constraint on this
// side", used when the child sits at an end of the parent's item list).
func sequenceIsUniform(seq *Sequence, before, after LineBreak) bool {
	if len(seq.Breaks) == 0 {
		return true
	}
	kind := seq.Breaks[0]
	for _, b := range seq.Breaks {
		if b != kind {
			return false
		}
	}
	if before != LineBreak(-1) && before != kind {
		return false
	}
	if after != LineBreak(-1) && after != kind {
		return false
	}
	return true
}

// MustSequence panics on a validation failure; for tests and call sites
// that already know their arguments are well formed.
func MustSequence(items []Element, breaks []LineBreak) Element {
	e, err := NewSequence(items, breaks)
	if err != nil {
		panic(err)
	}
	return e
}

func (s *Sequence) allNoBreak() bool {
	for _, b := range s.Breaks {
		if b != BreakNoBreak {
			return false
		}
	}
	return true
}

func (s *Sequence) hasHardBreak() bool {
	for _, b := range s.Breaks {
		if b == BreakHard {
			return true
		}
	}
	return false
}

func calculateGap(prev, next *Base, arcMargin int) int {
	gap := 0
	if arcMargin > gap {
		gap = arcMargin
	}
	if v := prev.EndMargin - prev.EndPadding - next.StartPadding; v > gap {
		gap = v
	}
	if v := next.StartMargin - next.StartPadding - prev.EndPadding; v > gap {
		gap = v
	}
	return gap
}

func interiorContext(width int, isOuter bool) render.LayoutContext {
	return render.LayoutContext{
		Width:              width,
		IsOuter:            isOuter,
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

func (s *Sequence) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	if len(s.Breaks) != len(s.Items)-1 {
		panic(&InvariantError{Where: "Sequence.contentLayout", Message: fmt.Sprintf("%d items requires %d breaks, got %d", len(s.Items), len(s.Items)-1, len(s.Breaks))})
	}
	if width, ok := s.tryLayoutSingleLine(settings, ctx, 1.0); ok {
		s.commitSingleRow(width)
		return
	}
	if s.allNoBreak() && !s.hasHardBreak() {
		total, _ := s.measureSingleLine(settings, ctx, 1.0)
		scale := 1.0
		if total > 0 && ctx.Width > 0 {
			scale = float64(ctx.Width) / float64(total)
		}
		width, _ := s.tryLayoutSingleLine(settings, ctx, scale)
		s.commitSingleRow(width)
		return
	}
	s.layoutMultiLine(settings, ctx)
}

// measureSingleLine lays every child out against ctx.Width*scale and
// returns the total display width without committing row state.
func (s *Sequence) measureSingleLine(settings *render.LayoutSettings, ctx render.LayoutContext, scale float64) (int, []int) {
	total := 0
	gaps := make([]int, len(s.Items))
	for i, item := range s.Items {
		ic := interiorContext(int(float64(ctx.Width)*scale), ctx.IsOuter)
		if i == 0 {
			ic.StartConnection = ctx.StartConnection
			ic.StartTopIsClear = ctx.StartTopIsClear
			ic.StartBottomIsClear = ctx.StartBottomIsClear
			ic.StartDirection = ctx.StartDirection
			ic.OptEnterTop = ctx.OptEnterTop
			ic.OptEnterBottom = ctx.OptEnterBottom
		}
		if i == len(s.Items)-1 {
			ic.EndConnection = ctx.EndConnection
			ic.EndTopIsClear = ctx.EndTopIsClear
			ic.EndBottomIsClear = ctx.EndBottomIsClear
			ic.EndDirection = ctx.EndDirection
			ic.OptExitTop = ctx.OptExitTop
			ic.OptExitBottom = ctx.OptExitBottom
		}
		CalculateLayout(item, settings, ic)
		gap := 0
		if i > 0 {
			gap = calculateGap(s.Items[i-1].base(), item.base(), settings.ArcMargin)
		}
		gaps[i] = gap
		total += gap + item.base().Width()
	}
	return total, gaps
}

func (s *Sequence) tryLayoutSingleLine(settings *render.LayoutSettings, ctx render.LayoutContext, scale float64) (int, bool) {
	total, _ := s.measureSingleLine(settings, ctx, scale)
	return total, total <= ctx.Width || scale != 1.0
}

func (s *Sequence) commitSingleRow(totalWidth int) {
	s.lineShift = 0
	_, gaps := s.recomputeGaps()
	row := seqRow{items: s.Items, gaps: gaps, y: 0}
	for _, it := range s.Items {
		b := it.base()
		if b.Up > row.up {
			row.up = b.Up
		}
		if d := b.Height + b.Down; d > row.down {
			row.down = d
		}
	}
	row.displayWidth = totalWidth
	s.rows = []seqRow{row}
	s.finishRows(s.Items[0].base().settings)
}

func (s *Sequence) recomputeGaps() (int, []int) {
	total := 0
	gaps := make([]int, len(s.Items))
	for i, item := range s.Items {
		gap := 0
		if i > 0 {
			gap = calculateGap(s.Items[i-1].base(), item.base(), s.Base.settings.ArcMargin)
		}
		gaps[i] = gap
		total += gap + item.base().Width()
	}
	return total, gaps
}

// layoutMultiLine wraps children into stacked rows, per the wrap state
// machine in the engine design: maintain a current row, and on overflow
// either rewind to the last recorded Soft break or close the row at the
// current item.
func (s *Sequence) layoutMultiLine(settings *render.LayoutSettings, ctx render.LayoutContext) {
	// A row whose first element is a Choice (or that starts with a Split
	// connection) reserves a split arc's worth of width on its left before
	// it draws anything; every later row must be shifted right by the same
	// amount so its own arcs line up underneath the first row's.
	shiftFirstLine := ctx.StartConnection == render.ConnSplit
	if !shiftFirstLine {
		if _, ok := s.Items[0].(*Choice); ok {
			shiftFirstLine = true
		}
	}
	s.lineShift = 0
	if shiftFirstLine {
		s.lineShift = int(math.Floor(settings.ArcRadius))
	}

	childCtx := s.Isolate(settings, ctx, true, true)

	var rows []seqRow
	var curItems []Element
	var curGaps []int
	curWidth := 0
	curRowWidth := childCtx.Width

	lastSoftBreak := -1

	startNewRow := func(startIdx int) {
		if len(curItems) > 0 {
			rows = append(rows, seqRow{items: curItems, gaps: curGaps})
		}
		curItems = nil
		curGaps = nil
		curWidth = 0
		lastSoftBreak = -1
		curRowWidth = childCtx.Width - s.lineShift
		_ = startIdx
	}

	for i, item := range s.Items {
		isFirstOverall := i == 0
		isLastOverall := i == len(s.Items)-1
		isFirstOfRow := len(curItems) == 0

		ic := interiorContext(curRowWidth, false)
		if isFirstOfRow && !isFirstOverall {
			ic.StartConnection = render.ConnStack
			ic.StartDirection = render.DirUp
			ic.StartTopIsClear = true
		}
		if isFirstOverall {
			ic.StartConnection = childCtx.StartConnection
			ic.StartTopIsClear = childCtx.StartTopIsClear
			ic.StartBottomIsClear = childCtx.StartBottomIsClear
			ic.StartDirection = childCtx.StartDirection
		}
		if isLastOverall {
			ic.EndConnection = childCtx.EndConnection
			ic.EndTopIsClear = childCtx.EndTopIsClear
			ic.EndBottomIsClear = childCtx.EndBottomIsClear
			ic.EndDirection = childCtx.EndDirection
		}

		CalculateLayout(item, settings, ic)

		gap := 0
		if !isFirstOfRow {
			gap = calculateGap(curItems[len(curItems)-1].base(), item.base(), settings.ArcMargin)
		}
		itemWidth := item.base().Width()

		overflow := !isFirstOfRow && curWidth+gap+itemWidth > curRowWidth
		breakHere := !isFirstOfRow && i > 0 && s.Breaks[i-1] == BreakHard

		if overflow && !breakHere {
			if lastSoftBreak >= 0 {
				tail := append([]Element{}, curItems[lastSoftBreak+1:]...)
				curItems = curItems[:lastSoftBreak+1]
				curGaps = curGaps[:lastSoftBreak+1]
				rows = append(rows, seqRow{items: curItems, gaps: curGaps})
				curItems = nil
				curGaps = nil
				curWidth = 0
				lastSoftBreak = -1
				curRowWidth = childCtx.Width - s.lineShift
				for _, tailItem := range tail {
					tic := interiorContext(curRowWidth, false)
					if len(curItems) == 0 {
						tic.StartConnection = render.ConnStack
						tic.StartDirection = render.DirUp
						tic.StartTopIsClear = true
					}
					if tailItem == s.Items[len(s.Items)-1] {
						tic.EndConnection = childCtx.EndConnection
					}
					CalculateLayout(tailItem, settings, tic)
					g := 0
					if len(curItems) > 0 {
						g = calculateGap(curItems[len(curItems)-1].base(), tailItem.base(), settings.ArcMargin)
					}
					curItems = append(curItems, tailItem)
					curGaps = append(curGaps, g)
					curWidth += g + tailItem.base().Width()
				}
				if len(curItems) == 0 {
					ic.StartConnection = render.ConnStack
					ic.StartDirection = render.DirUp
					ic.StartTopIsClear = true
					ic.Width = curRowWidth
					CalculateLayout(item, settings, ic)
					gap = 0
				}
			} else {
				startNewRow(i)
				ic.StartConnection = render.ConnStack
				ic.StartDirection = render.DirUp
				ic.StartTopIsClear = true
				ic.Width = curRowWidth
				CalculateLayout(item, settings, ic)
				gap = 0
			}
			itemWidth = item.base().Width()
		}

		curItems = append(curItems, item)
		curGaps = append(curGaps, gap)
		curWidth += gap + itemWidth

		if !isLastOverall && s.Breaks[i] == BreakSoft {
			lastSoftBreak = len(curItems) - 1
		}
		if !isLastOverall && s.Breaks[i] == BreakHard {
			rows = append(rows, seqRow{items: curItems, gaps: curGaps})
			curItems = nil
			curGaps = nil
			curWidth = 0
			lastSoftBreak = -1
			curRowWidth = childCtx.Width - s.lineShift
		}
	}
	if len(curItems) > 0 {
		rows = append(rows, seqRow{items: curItems, gaps: curGaps})
	}

	// Re-layout every non-final row's last item so it can reuse the row's
	// turn-around line as its own optional exit.
	for ri := range rows {
		if ri == len(rows)-1 {
			continue
		}
		row := &rows[ri]
		last := row.items[len(row.items)-1]
		rowWidth := childCtx.Width
		if ri > 0 {
			rowWidth -= s.lineShift
		}
		lc := interiorContext(rowWidth, false)
		lc.StartConnection = render.ConnNormal
		if len(row.items) == 1 {
			lc.StartConnection = render.ConnStack
		}
		lc.EndConnection = render.ConnStack
		lc.EndDirection = render.DirDown
		lc.EndTopIsClear = true
		lc.OptExitBottom = true
		lc.AllowShrinkingStacks = true
		CalculateLayout(last, settings, lc)
	}

	for i := range rows {
		row := &rows[i]
		row.up, row.down = 0, 0
		width := 0
		if i > 0 {
			width = s.lineShift
		}
		for j, it := range row.items {
			b := it.base()
			if b.Up > row.up {
				row.up = b.Up
			}
			if d := b.Height + b.Down; d > row.down {
				row.down = d
			}
			width += row.gaps[j] + b.Width()
		}
		row.displayWidth = width
	}

	y := 0
	for i := range rows {
		if i == 0 {
			rows[i].y = 0
			continue
		}
		sep := settings.VerticalSeqSeparation
		if ctx.IsOuter {
			sep = settings.VerticalSeqSeparationOuter
		}
		prevRow := rows[i-1]
		dist := geom.Distance(rowBottomRidge(prevRow), rowTopRidge(rows[i]))
		if dist > sep {
			sep = dist
		}
		y = rows[i-1].y + prevRow.down + sep + rows[i].up
		rows[i].y = y
	}

	s.rows = rows
	s.finishRows(settings)
}

func rowTopRidge(r seqRow) geom.RidgeLine {
	var merged geom.RidgeLine
	pos := 0
	for i, it := range r.items {
		rl := TopRidgeLine(it).Shift(geom.Vec{X: pos + r.gaps[i]})
		if i == 0 {
			merged = rl
		} else {
			merged = geom.Merge(merged, rl, geom.Max)
		}
		pos += r.gaps[i] + it.base().Width()
	}
	return merged
}

func rowBottomRidge(r seqRow) geom.RidgeLine {
	var merged geom.RidgeLine
	pos := 0
	for i, it := range r.items {
		rl := BottomRidgeLine(it).Shift(geom.Vec{X: pos + r.gaps[i]})
		if i == 0 {
			merged = rl
		} else {
			merged = geom.Merge(merged, rl, geom.Max)
		}
		pos += r.gaps[i] + it.base().Width()
	}
	return merged
}

func (s *Sequence) finishRows(settings *render.LayoutSettings) {
	maxWidth := 0
	for _, r := range s.rows {
		if r.displayWidth > maxWidth {
			maxWidth = r.displayWidth
		}
	}

	// start_padding/start_margin_offset take the smallest across every row's
	// first item, end_padding_offset/end_margin_offset the largest across
	// every row's last item, each corrected for that row's own line shift:
	// a shifted row's first item sits lineShift further right than row 0's.
	var startPadding, startMarginOffset, endPaddingOffset, endMarginOffset int
	haveStart, haveEnd := false, false
	for i, r := range s.rows {
		lineShift := 0
		if i > 0 {
			lineShift = s.lineShift
		}
		first := r.items[0].base()
		sp := first.StartPadding + lineShift
		smo := lineShift - first.StartMargin + first.StartPadding
		if !haveStart || sp < startPadding {
			startPadding = sp
		}
		if !haveStart || smo < startMarginOffset {
			startMarginOffset = smo
		}
		haveStart = true

		last := r.items[len(r.items)-1].base()
		epo := r.displayWidth - last.EndPadding
		emo := r.displayWidth + last.EndMargin - last.EndPadding
		if !haveEnd || epo > endPaddingOffset {
			endPaddingOffset = epo
		}
		if !haveEnd || emo > endMarginOffset {
			endMarginOffset = emo
		}
		haveEnd = true
	}

	endPadding := maxWidth - endPaddingOffset
	if endPadding < 0 {
		endPadding = 0
	}

	s.DisplayWidth = maxWidth
	s.ContentWidth = maxWidth - startPadding - endPadding
	if s.ContentWidth < 0 {
		s.ContentWidth = 0
	}
	s.StartPadding = startPadding
	s.EndPadding = endPadding
	s.StartMargin = -startMarginOffset + startPadding
	if s.StartMargin < 0 {
		s.StartMargin = 0
	}
	s.EndMargin = (endMarginOffset - maxWidth) + endPadding
	if s.EndMargin < 0 {
		s.EndMargin = 0
	}

	first := s.rows[0]
	last := s.rows[len(s.rows)-1]
	s.Up = first.up
	s.Down = last.y + last.down
	s.Height = 0
	if len(s.rows) > 1 {
		s.Height = last.y
	}

	if settings != nil {
		s.FinishIsolate(settings)
	}
}

func (s *Sequence) contentRender(r render.Render, ctx render.RenderContext) {
	d := ctx.Dir()
	if len(s.rows) > 1 {
		ctx = s.RenderIsolation(r, ctx)
	}

	for ri, row := range s.rows {
		rowCtx := ctx
		shift := 0
		if ri > 0 {
			shift = s.lineShift
		}
		rowCtx.Pos = ctx.Pos.Add(geom.Vec{X: d * shift, Y: row.y})

		pos := rowCtx.Pos
		for ii, item := range row.items {
			pos = pos.Add(geom.Vec{X: d * row.gaps[ii]})
			ic := render.RenderContext{
				Pos:     pos,
				Reverse: ctx.Reverse,
			}
			ic.StartConnectionPos = pos
			ib := item.base()
			ic.EndConnectionPos = pos.Add(geom.Vec{X: d * ib.Width()})
			if ii == 0 && ri == 0 {
				ic.StartConnectionPos = ctx.StartConnectionPos
			}
			if ii == len(row.items)-1 && ri == len(s.rows)-1 {
				ic.EndConnectionPos = ctx.EndConnectionPos
			}
			Render(item, r, ic)
			pos = ic.EndConnectionPos
		}

		if ri < len(s.rows)-1 {
			next := s.rows[ri+1]
			line := r.Line(pos, ctx.Reverse, "")
			line.BendBackwardAbs(ctx.Pos.Y+next.y, false, false)
			line.SegmentAbs(ctx.Pos.X+d*s.lineShift, false, false)
		}
	}
}

func (s *Sequence) topRidgeLine() geom.RidgeLine {
	seen := 0
	var merged geom.RidgeLine
	started := false
	for i, row := range s.rows {
		if row.displayWidth <= seen {
			continue
		}
		shift := 0
		if i > 0 {
			shift = s.lineShift
		}
		rl := rowTopRidge(row).Shift(geom.Vec{X: shift, Y: row.y})
		clip := geom.RidgeLine{Before: rl.Before, Ridge: []geom.Vec{{X: row.displayWidth + shift, Y: 1 << 30}}}
		rl = geom.Merge(rl, clip, geom.Min)
		if !started {
			merged = rl
			started = true
		} else {
			merged = geom.Merge(merged, rl, geom.Max)
		}
		seen = row.displayWidth
	}
	return merged
}

func (s *Sequence) bottomRidgeLine() geom.RidgeLine {
	last := s.rows[len(s.rows)-1]
	shift := 0
	if len(s.rows) > 1 {
		shift = s.lineShift
	}
	rl := rowBottomRidge(last)
	rl.Before = last.down
	edge := geom.RidgeLine{Before: rl.Before, Ridge: []geom.Vec{{X: last.displayWidth + shift, Y: -(1 << 30)}}}
	return geom.Merge(rl, edge, geom.Min).Shift(geom.Vec{X: shift, Y: last.y - s.Height})
}

func (s *Sequence) precedence() int { return 0 }
func (s *Sequence) containsChoices() bool {
	for _, it := range s.Items {
		if it.containsChoices() {
			return true
		}
	}
	return false
}
func (s *Sequence) canUseOptEnters() bool { return s.Items[0].canUseOptEnters() }
func (s *Sequence) canUseOptExits() bool  { return s.Items[len(s.Items)-1].canUseOptExits() }
func (s *Sequence) debugName() string     { return "sequence" }
