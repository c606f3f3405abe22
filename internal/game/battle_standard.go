package game

import "math"

// standardMoveTable is fixed ruleset data for the grid engine, indexed
// [speed rating][movement phase]. A stack whose design has speed rating r
// may move one cell in phase p of every round iff standardMoveTable[r][p]
// is 1. Ratings 0..2 all move once per round but in different phases, so
// faster-rated slow ships move later and react to what they saw. Ratings 7
// and 8 are capped by the three-phase structure.
var standardMoveTable = [9][3]int{
	{0, 0, 1}, // 0
	{0, 1, 0}, // 1
	{1, 0, 0}, // 2
	{0, 1, 1}, // 3
	{1, 0, 1}, // 4
	{1, 1, 0}, // 5
	{1, 1, 1}, // 6
	{1, 1, 1}, // 7
	{1, 1, 1}, // 8
}

const standardMovePhases = 3

// StandardBattleEngine resolves battles on a small discrete grid with a
// fixed round and phase structure. It is the faster, coarser of the two
// engines and the default ruleset choice.
type StandardBattleEngine struct{}

// Name implements BattleEngine.
func (e *StandardBattleEngine) Name() string { return BattleEngineStandard }

// Resolve implements BattleEngine.
func (e *StandardBattleEngine) Resolve(setup *BattleSetup) (*BattleReport, error) {
	a := newBattleArena(setup, e.Name())
	if len(a.stacks) == 0 || a.resolved() || !a.anyHostility() {
		return a.emptyReport(), nil
	}
	e.placeStacks(a)

	for round := 1; round <= setup.Rules.StandardRoundCap; round++ {
		for phase := 1; phase <= standardMovePhases; phase++ {
			e.movementPhase(a, round, phase)
			e.firePhase(a, round, phase)
			if a.resolved() {
				return a.finish(round, false), nil
			}
		}
	}
	// Hard cap reached: treat as a draw, all survivors withdraw.
	return a.finish(setup.Rules.StandardRoundCap, true), nil
}

// placeStacks is the space-allocation pass: each empire gets a column band
// spread across the board, stacks stacked vertically around the center row,
// spilling to the nearest free cell so no two stacks start on the same cell.
// Everything iterates in sorted order, so placement is deterministic.
func (e *StandardBattleEngine) placeStacks(a *battleArena) {
	w, h := a.rules.BoardWidth, a.rules.BoardHeight
	empires := a.empiresAlive()
	occupied := map[[2]int]bool{}

	for ei, emp := range empires {
		col := 1
		if len(empires) > 1 {
			col = 1 + ei*(w-3)/(len(empires)-1)
		}
		var own []*Stack
		for _, st := range a.stacks {
			if st.Empire == emp {
				own = append(own, st) // already in id order
			}
		}
		row0 := h/2 - len(own)/2
		for i, st := range own {
			x, y := nearestFreeCell(occupied, col, row0+i, w, h)
			occupied[[2]int{x, y}] = true
			st.X, st.Y = float64(x), float64(y)
		}
	}
}

// nearestFreeCell scans outward from (x, y) ring by ring and returns the
// first unoccupied in-bounds cell. Scan order within a ring is fixed.
func nearestFreeCell(occupied map[[2]int]bool, x, y, w, h int) (int, int) {
	x = clampCell(x, 0, w-1)
	y = clampCell(y, 0, h-1)
	for r := 0; r < w+h; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if maxAbs(dx, dy) != r {
					continue
				}
				cx, cy := x+dx, y+dy
				if cx < 0 || cy < 0 || cx >= w || cy >= h {
					continue
				}
				if !occupied[[2]int{cx, cy}] {
					return cx, cy
				}
			}
		}
	}
	return x, y // board completely full; overlap beats losing a stack
}

func clampCell(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

// cellDistance is the board metric: Chebyshev distance, since stacks move
// one cell in any of eight directions.
func cellDistance(a, b *Stack) float64 {
	return math.Max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
}

// movementPhase moves every stack entitled to a move this phase, in
// initiative order. Each move is at most one cell.
func (e *StandardBattleEngine) movementPhase(a *battleArena, round, phase int) {
	for _, st := range a.initiativeOrder() {
		rating := clampCell(st.Design.Movement, 0, len(standardMoveTable)-1)
		if standardMoveTable[rating][phase-1] != 1 {
			continue
		}
		e.moveStack(a, st, round, phase)
	}
}

// moveStack applies the stack's engagement strategy for one allowed move.
func (e *StandardBattleEngine) moveStack(a *battleArena, st *Stack, round, phase int) {
	w, h := a.rules.BoardWidth, a.rules.BoardHeight
	fleeing := !st.Design.Armed() ||
		(st.Plan.Strategy == StrategyDisengage && a.outnumbered(st))

	if fleeing {
		enemy := a.nearestEnemy(st, cellDistance)
		if enemy == nil {
			return
		}
		nx := st.X + stepAway(st.X, enemy.X)
		ny := st.Y + stepAway(st.Y, enemy.Y)
		nx = math.Min(math.Max(nx, 0), float64(w-1))
		ny = math.Min(math.Max(ny, 0), float64(h-1))
		if nx == st.X && ny == st.Y {
			// Pinned against the board edge with nowhere left to run:
			// the stack jumps clear of the battle.
			a.withdraw(st, round, phase)
			return
		}
		st.X, st.Y = nx, ny
		a.recordMove(st, round, phase)
		return
	}

	if st.Plan.Strategy == StrategyDefensive {
		return // defensive stacks hold position and let the enemy close
	}

	target := a.selectTarget(st, nil)
	if target == nil {
		return
	}
	if cellDistance(st, target) <= float64(st.Design.MaxWeaponRange()) {
		return // already in range, hold the cell
	}
	st.X += stepToward(st.X, target.X)
	st.Y += stepToward(st.Y, target.Y)
	a.recordMove(st, round, phase)
}

func stepToward(from, to float64) float64 {
	switch {
	case to > from:
		return 1
	case to < from:
		return -1
	}
	return 0
}

func stepAway(from, threat float64) float64 {
	switch {
	case threat > from:
		return -1
	case threat < from:
		return 1
	}
	// Same coordinate: break toward the low side, fixed.
	return -1
}

// firePhase runs weapon resolution in initiative order. Destroyed stacks are
// gone immediately; a stack killed earlier in the phase fires no volley.
func (e *StandardBattleEngine) firePhase(a *battleArena, round, phase int) {
	for _, st := range a.initiativeOrder() {
		if !st.Alive() || !st.Design.Armed() || st.Plan.Victims == TargetNone {
			continue
		}
		rangeLimit := float64(st.Design.MaxWeaponRange())
		target := a.selectTarget(st, func(cand *Stack) bool {
			return cellDistance(st, cand) <= rangeLimit
		})
		if target == nil {
			continue // no eligible target in range: hold fire this phase
		}
		a.fire(st, target, round, phase)
	}
}
