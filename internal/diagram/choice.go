package diagram

import (
	"fmt"
	"math"

	"github.com/0x4d5352/railroad/internal/geom"
	"github.com/0x4d5352/railroad/internal/render"
)

// Choice is a vertical stack of alternatives. Exactly one branch, chosen
// by Default, sits on the main through line; every other branch forks
// away via a pair of split arcs and rejoins before the choice's exit.
type Choice struct {
	Base

	Branches []Element
	Default  int

	branchY        []int
	maxBranchWidth int
	splitArc       int

	// items/itemDef are the branches (and default index among them) actually
	// laid out and rendered: equal to Branches/Default unless a parent
	// offers an opt line and we fold our own Skip branch into it.
	items   []Element
	itemDef int

	connectOptEnter bool
	connectOptExit  bool

	upperCanUseAddedOptEnters bool
	upperCanUseAddedOptExits  bool
	lowerCanUseAddedOptEnters bool
	lowerCanUseAddedOptExits  bool
}

// flattenChoiceBranches splices any branch that is itself a *Choice into
// the parent list in place, remapping def to follow whichever branch it
// used to point at.
func flattenChoiceBranches(branches []Element, def int) ([]Element, int) {
	out := make([]Element, 0, len(branches))
	newDef := 0
	for i, b := range branches {
		if cb, ok := b.(*Choice); ok {
			start := len(out)
			out = append(out, cb.Branches...)
			if i == def {
				newDef = start + cb.Default
			}
			continue
		}
		if i == def {
			newDef = len(out)
		}
		out = append(out, b)
	}
	return out, newDef
}

// dedupSkipBranches keeps only the first Skip branch encountered,
// dropping any later ones (they are interchangeable), and remaps def.
func dedupSkipBranches(branches []Element, def int) ([]Element, int) {
	out := make([]Element, 0, len(branches))
	newDef := 0
	keptSkip := -1
	for i, b := range branches {
		if IsSkip(b) {
			if keptSkip >= 0 {
				if i == def {
					newDef = keptSkip
				}
				continue
			}
			keptSkip = len(out)
		}
		if i == def {
			newDef = len(out)
		}
		out = append(out, b)
	}
	return out, newDef
}

// NewChoice applies the tree's smart-constructor invariants: nested
// Choices flatten into the parent, duplicate Skip branches collapse to
// one, and a Choice that reduces to a single branch returns that branch
// directly instead of wrapping it.
func NewChoice(branches []Element, def int) (Element, error) {
	if len(branches) < 2 {
		return nil, &LoadingError{Path: "choice.children", Message: fmt.Sprintf("expected at least 2 children, got %d", len(branches))}
	}
	if def < 0 || def >= len(branches) {
		return nil, &LoadingError{Path: "choice.default", Message: fmt.Sprintf("default %d out of range for %d children", def, len(branches))}
	}

	flat, def := flattenChoiceBranches(branches, def)
	flat, def = dedupSkipBranches(flat, def)

	if len(flat) == 1 {
		return flat[0], nil
	}
	return &Choice{Branches: flat, Default: def}, nil
}

// MustChoice panics on a validation failure; for call sites that already
// know their arguments are well formed.
func MustChoice(branches []Element, def int) Element {
	e, err := NewChoice(branches, def)
	if err != nil {
		panic(err)
	}
	return e
}

// NewOptional builds a Choice between item and an implicit Skip, the
// loader's "optional" shorthand.
func NewOptional(item Element) Element {
	e, err := NewChoice([]Element{NewSkip(), item}, 1)
	if err != nil {
		panic(err)
	}
	return e
}

// optEnterDir is the direction a line travels when it arrives at a point
// offered as an opt-enter bypass (west-bound unless the diagram is
// mirrored).
func optEnterDir(reverse bool) render.Direction {
	if reverse {
		return render.East
	}
	return render.West
}

// optExitDir is the direction a line travels when it leaves toward a
// point offered as an opt-exit bypass.
func optExitDir(reverse bool) render.Direction {
	if reverse {
		return render.West
	}
	return render.East
}

func (c *Choice) contentLayout(settings *render.LayoutSettings, ctx render.LayoutContext) {
	if len(c.Branches) < 2 || c.Default < 0 || c.Default >= len(c.Branches) {
		panic(&InvariantError{Where: "Choice.contentLayout", Message: fmt.Sprintf("%d branches, default index %d", len(c.Branches), c.Default)})
	}

	// If we're optional and our parent offers an opt line on our entry or
	// exit side, fold our own Skip branch away and ride the parent's line
	// instead of drawing a redundant split/rejoin around it.
	skipSkips := false
	c.connectOptEnter = false
	c.connectOptExit = false
	if IsOptional(c) {
		if (ctx.OptEnterTop && ctx.OptExitTop) || (ctx.OptEnterBottom && ctx.OptExitBottom) {
			// Enter and exit are already the same line as far as our
			// parent is concerned; bypassing needs no new connection.
			skipSkips = true
		} else {
			if ctx.OptEnterTop || ctx.OptEnterBottom {
				skipSkips = true
				c.connectOptEnter = true
			}
			if ctx.OptExitTop || ctx.OptExitBottom {
				skipSkips = true
				c.connectOptExit = true
			}
		}
	}

	items := c.Branches
	def := c.Default
	if skipSkips {
		filtered := make([]Element, 0, len(c.Branches))
		newDef := 0
		for i, b := range c.Branches {
			if i == c.Default {
				newDef = len(filtered)
			}
			if !IsSkip(b) {
				filtered = append(filtered, b)
			}
		}
		if newDef >= len(filtered) {
			newDef = len(filtered) - 1
		}
		items, def = filtered, newDef
	}
	c.items = items
	c.itemDef = def

	c.upperCanUseAddedOptEnters = false
	c.upperCanUseAddedOptExits = false
	c.lowerCanUseAddedOptEnters = false
	c.lowerCanUseAddedOptExits = false
	if len(items) > 1 {
		for i, item := range items {
			if IsSkip(item) {
				if i > 0 {
					upper := items[i-1]
					c.upperCanUseAddedOptEnters = upper.canUseOptEnters()
					c.upperCanUseAddedOptExits = upper.canUseOptExits()
				}
				if i < len(items)-1 {
					lower := items[i+1]
					c.lowerCanUseAddedOptEnters = lower.canUseOptEnters()
					c.lowerCanUseAddedOptExits = lower.canUseOptExits()
				}
				break
			}
		}
		// Mutual safety exclusion: if one rail claims the freed line for
		// an enter, the opposite rail must not also claim it for an exit
		// (and vice versa), or the two could be entered/exited
		// independently through the same line, silently allowing input
		// that isn't actually representable by either alternative alone.
		if c.upperCanUseAddedOptEnters {
			c.lowerCanUseAddedOptExits = false
		}
		if c.lowerCanUseAddedOptEnters {
			c.upperCanUseAddedOptExits = false
		}
		if c.upperCanUseAddedOptExits {
			c.lowerCanUseAddedOptEnters = false
		}
		if c.lowerCanUseAddedOptExits {
			c.upperCanUseAddedOptEnters = false
		}
	}

	childCtx := c.Isolate(settings, ctx, true, true)

	c.splitArc = render.ConnSplit.ArcSize(settings)
	innerWidth := childCtx.Width - 2*c.splitArc
	if innerWidth < 0 {
		innerWidth = 0
	}

	n := len(items)
	c.branchY = make([]int, n)

	c.maxBranchWidth = 0
	for i, br := range items {
		bc := interiorContext(innerWidth, false)
		bc.AllowShrinkingStacks = true

		if i == 0 {
			bc.OptEnterTop = ctx.OptEnterTop
			bc.OptExitTop = ctx.OptExitTop
		} else if IsSkip(items[i-1]) {
			if c.lowerCanUseAddedOptEnters {
				bc.OptEnterTop = true
			}
			if c.lowerCanUseAddedOptExits {
				bc.OptExitTop = true
			}
		}
		if i == n-1 {
			bc.OptEnterBottom = ctx.OptEnterBottom
			bc.OptExitBottom = ctx.OptExitBottom
		} else if IsSkip(items[i+1]) {
			if c.upperCanUseAddedOptEnters {
				bc.OptEnterBottom = true
			}
			if c.upperCanUseAddedOptExits {
				bc.OptExitBottom = true
			}
		}

		CalculateLayout(br, settings, bc)
		if w := br.base().Width(); w > c.maxBranchWidth {
			c.maxBranchWidth = w
		}
	}

	sep := settings.VerticalChoiceSeparation
	if ctx.IsOuter {
		sep = settings.VerticalChoiceSeparationOuter
	}

	cursor := 0
	for i := def - 1; i >= 0; i-- {
		d := geom.Distance(BottomRidgeLine(items[i]), TopRidgeLine(items[i+1]))
		if d < sep {
			d = sep
		}
		cursor -= d
		c.branchY[i] = cursor
	}
	cursor = 0
	for i := def + 1; i < n; i++ {
		d := geom.Distance(BottomRidgeLine(items[i-1]), TopRidgeLine(items[i]))
		if d < sep {
			d = sep
		}
		cursor += d
		c.branchY[i] = cursor
	}
	c.branchY[def] = 0

	c.ContentWidth = c.maxBranchWidth + 2*c.splitArc
	c.StartPadding = 0
	c.EndPadding = 0
	c.DisplayWidth = c.ContentWidth
	c.Height = 0
	c.Up = -c.branchY[0] + items[0].base().Up
	c.Down = c.branchY[n-1] + items[n-1].base().Down
	c.StartMargin = settings.ArcMargin
	c.EndMargin = settings.ArcMargin

	c.FinishIsolate(settings)

	if c.connectOptExit {
		if min := settings.ArcMargin + c.StartPadding; c.StartMargin < min {
			c.StartMargin = min
		}
	}
	if c.connectOptEnter {
		if min := settings.ArcMargin + c.EndPadding; c.EndMargin < min {
			c.EndMargin = min
		}
	}
}

func (c *Choice) contentRender(r render.Render, ctx render.RenderContext) {
	ctx = c.RenderIsolation(r, ctx)
	d := ctx.Dir()

	innerLeftX := ctx.StartConnectionPos.X + d*c.splitArc
	n := len(c.items)

	for i, br := range c.items {
		y := ctx.Pos.Y + c.branchY[i]
		bw := br.base().Width()
		offset := (c.maxBranchWidth - bw) / 2
		entryX := innerLeftX + d*offset
		exitX := entryX + d*bw

		bctx := render.RenderContext{
			Pos:                geom.Vec{X: ctx.Pos.X, Y: y},
			StartConnectionPos: geom.Vec{X: entryX, Y: y},
			EndConnectionPos:   geom.Vec{X: exitX, Y: y},
			Reverse:            ctx.Reverse,
		}

		if i == 0 {
			bctx.OptEnterTop = ctx.OptEnterTop
			bctx.OptExitTop = ctx.OptExitTop
		} else if IsSkip(c.items[i-1]) {
			linePos := ctx.Pos.Y + c.branchY[i-1]
			if c.lowerCanUseAddedOptEnters {
				bctx.OptEnterTop = &render.OptLine{
					Dir: optEnterDir(ctx.Reverse),
					Pos: geom.Vec{X: ctx.Pos.X + d*c.iso.startArcSize, Y: linePos},
				}
			}
			if c.lowerCanUseAddedOptExits {
				bctx.OptExitTop = &render.OptExit{
					Dir: optExitDir(ctx.Reverse),
					Pos: geom.Vec{X: ctx.Pos.X + d*(c.Width()-c.iso.endArcSize), Y: linePos},
				}
			}
		}
		if i == n-1 {
			bctx.OptEnterBottom = ctx.OptEnterBottom
			bctx.OptExitBottom = ctx.OptExitBottom
		} else if IsSkip(c.items[i+1]) {
			linePos := ctx.Pos.Y + c.branchY[i+1]
			if c.upperCanUseAddedOptEnters {
				bctx.OptEnterBottom = &render.OptLine{
					Dir: optEnterDir(ctx.Reverse),
					Pos: geom.Vec{X: ctx.Pos.X + d*c.iso.startArcSize, Y: linePos},
				}
			}
			if c.upperCanUseAddedOptExits {
				bctx.OptExitBottom = &render.OptExit{
					Dir: optExitDir(ctx.Reverse),
					Pos: geom.Vec{X: ctx.Pos.X + d*(c.Width()-c.iso.endArcSize), Y: linePos},
				}
			}
		}

		if i == c.itemDef {
			r.Line(ctx.StartConnectionPos, ctx.Reverse, "").SegmentAbs(entryX, false, false)
			Render(br, r, bctx)
			r.Line(geom.Vec{X: exitX, Y: y}, ctx.Reverse, "").SegmentAbs(ctx.EndConnectionPos.X, false, false)
			continue
		}

		enter := r.Line(ctx.StartConnectionPos, ctx.Reverse, "")
		enter.BendForwardAbs(y, false, false)
		enter.SegmentAbs(entryX, false, false)

		Render(br, r, bctx)

		exit := r.Line(geom.Vec{X: exitX, Y: y}, ctx.Reverse, "")
		exit.BendForwardAbs(ctx.EndConnectionPos.Y, false, false)
		exit.SegmentAbs(ctx.EndConnectionPos.X, false, false)
	}

	c.renderOptLine(r, ctx)
}

// renderOptLine draws the line this choice absorbed into a parent-offered
// opt line instead of its own split/rejoin arcs, when connectOptEnter or
// connectOptExit called for it during layout.
func (c *Choice) renderOptLine(r render.Render, ctx render.RenderContext) {
	settings := r.Settings()
	d := ctx.Dir()

	if c.connectOptEnter && !(c.connectOptExit && ctx.OptExitBottom != nil && ctx.OptExitBottom.Alternative != nil) {
		var comingTo render.Direction
		var optEnterPos geom.Vec
		if ctx.OptEnterTop != nil {
			comingTo, optEnterPos = ctx.OptEnterTop.Dir, ctx.OptEnterTop.Pos
		} else {
			comingTo, optEnterPos = ctx.OptEnterBottom.Dir, ctx.OptEnterBottom.Pos
		}

		verticalLineX := ctx.EndConnectionPos.X
		var comingFrom render.Direction
		if c.iso.origEndConn == render.ConnStack {
			comingFrom = optEnterDir(ctx.Reverse)
			if comingFrom != comingTo {
				verticalLineX += d * int(math.Ceil(2*settings.ArcRadius))
			}
		} else {
			comingFrom = optExitDir(ctx.Reverse)
			if comingFrom != comingTo {
				verticalLineX -= d * int(math.Ceil(2*settings.ArcRadius))
			}
		}

		line := r.Line(optEnterPos, ctx.Reverse, "")
		line.SegmentAbs(verticalLineX, true, true)
		line.Bend(ctx.EndConnectionPos.Y, comingTo, comingFrom, true, true, true)
		return
	}

	if c.connectOptExit {
		var optExit *render.OptExit
		if ctx.OptExitTop != nil {
			optExit = ctx.OptExitTop
		} else {
			optExit = ctx.OptExitBottom
		}
		if optExit == nil {
			return
		}
		comingTo, optExitPos, optExitAlt := optExit.Dir, optExit.Pos, optExit.Alternative

		verticalLineX := ctx.StartConnectionPos.X
		var comingFrom render.Direction
		if c.iso.origStartConn == render.ConnStack {
			comingFrom = optExitDir(ctx.Reverse)
			verticalLineX -= d * int(settings.ArcRadius)
		} else {
			comingFrom = optEnterDir(ctx.Reverse)
			verticalLineX += d * int(settings.ArcRadius)
		}

		hasComingTo := true
		if optExitAlt != nil && math.Abs(float64(optExitAlt.X-verticalLineX)) <= settings.ArcRadius {
			optExitPos = *optExitAlt
			hasComingTo = false
		}

		line := r.Line(ctx.StartConnectionPos, ctx.Reverse, "")
		line.Bend(optExitPos.Y, comingFrom, comingTo, hasComingTo, true, true)
		line.SegmentAbs(optExitPos.X, true, true)
	}
}

func (c *Choice) topRidgeLine() geom.RidgeLine    { return defaultTopRidgeLine(&c.Base) }
func (c *Choice) bottomRidgeLine() geom.RidgeLine { return defaultBottomRidgeLine(&c.Base) }
func (c *Choice) precedence() int                 { return 1 }
func (c *Choice) containsChoices() bool           { return true }
func (c *Choice) canUseOptEnters() bool           { return IsOptional(c) }
func (c *Choice) canUseOptExits() bool            { return IsOptional(c) }
func (c *Choice) debugName() string               { return "choice" }

// IsOptional reports whether c has exactly one Skip branch alongside
// non-Skip alternatives (the loader's "optional" shorthand collapses to
// this shape after Skip dedup).
func IsOptional(c *Choice) bool {
	for _, b := range c.Branches {
		if IsSkip(b) {
			return true
		}
	}
	return false
}
