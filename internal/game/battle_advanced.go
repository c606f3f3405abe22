package game

import "math"

// AdvancedBattleEngine resolves battles in a continuous coordinate space.
// Positions and ranges are in internal battle units (Rules.AdvancedScale
// units per board cell), movement is a velocity vector per round instead of
// discrete cell hops, and battles may run much longer before the cap.
// Targeting, initiative ordering and damage application are the shared
// arena logic, identical to the standard engine.
type AdvancedBattleEngine struct{}

// Name implements BattleEngine.
func (e *AdvancedBattleEngine) Name() string { return BattleEngineAdvanced }

// Resolve implements BattleEngine.
func (e *AdvancedBattleEngine) Resolve(setup *BattleSetup) (*BattleReport, error) {
	a := newBattleArena(setup, e.Name())
	if len(a.stacks) == 0 || a.resolved() || !a.anyHostility() {
		return a.emptyReport(), nil
	}
	e.placeStacks(a)

	for round := 1; round <= setup.Rules.AdvancedRoundCap; round++ {
		e.movementRound(a, round)
		e.fireRound(a, round)
		if a.resolved() {
			return a.finish(round, false), nil
		}
	}
	return a.finish(setup.Rules.AdvancedRoundCap, true), nil
}

// placeStacks reuses the grid space-allocation pass, then converts cell
// coordinates to battle units so both engines open from the same formation.
func (e *AdvancedBattleEngine) placeStacks(a *battleArena) {
	(&StandardBattleEngine{}).placeStacks(a)
	for _, st := range a.stacks {
		st.X *= a.rules.AdvancedScale
		st.Y *= a.rules.AdvancedScale
	}
}

// speed returns a stack's movement in battle units per round. The curve is
// linear in the same 0..8 rating the grid engine tables, scaled so a
// rating-4 stack crosses one cell per round.
func (e *AdvancedBattleEngine) speed(a *battleArena, st *Stack) float64 {
	rating := clampCell(st.Design.Movement, 0, 8)
	return a.rules.AdvancedScale * (0.5 + float64(rating)/8.0)
}

// weaponRange converts a design's range in cells to battle units.
func (e *AdvancedBattleEngine) weaponRange(a *battleArena, st *Stack) float64 {
	return float64(st.Design.MaxWeaponRange()) * a.rules.AdvancedScale
}

// disengageDistance is how far a fleeing stack must open before it is
// considered clear of the battle.
func (e *AdvancedBattleEngine) disengageDistance(a *battleArena) float64 {
	return float64(a.rules.BoardWidth) * a.rules.AdvancedScale
}

func vectorDistance(s, t *Stack) float64 {
	return math.Hypot(s.X-t.X, s.Y-t.Y)
}

// movementRound applies one velocity-vector move per live stack, in
// initiative order.
func (e *AdvancedBattleEngine) movementRound(a *battleArena, round int) {
	for _, st := range a.initiativeOrder() {
		speed := e.speed(a, st)
		fleeing := !st.Design.Armed() ||
			(st.Plan.Strategy == StrategyDisengage && a.outnumbered(st))

		if fleeing {
			enemy := a.nearestEnemy(st, vectorDistance)
			if enemy == nil {
				continue
			}
			if vectorDistance(st, enemy) >= e.disengageDistance(a) {
				a.withdraw(st, round, 0)
				continue
			}
			away := Vector{st.X - enemy.X, st.Y - enemy.Y}.Normalized()
			if away.Length() < 1e-9 {
				away = Vector{-1, 0} // exact overlap: fixed escape heading
			}
			st.X += away.X * speed
			st.Y += away.Y * speed
			a.recordMove(st, round, 0)
			continue
		}

		if st.Plan.Strategy == StrategyDefensive {
			continue
		}

		target := a.selectTarget(st, nil)
		if target == nil {
			continue
		}
		gap := vectorDistance(st, target)
		reach := e.weaponRange(a, st)
		if gap <= reach {
			continue // in range, hold and shoot
		}
		// Close only as far as needed; overshooting past the target gives
		// the enemy a free flank next round.
		step := math.Min(speed, gap-reach)
		toward := Vector{target.X - st.X, target.Y - st.Y}.Normalized()
		st.X += toward.X * step
		st.Y += toward.Y * step
		a.recordMove(st, round, 0)
	}
}

// fireRound runs one weapon resolution pass in initiative order.
func (e *AdvancedBattleEngine) fireRound(a *battleArena, round int) {
	for _, st := range a.initiativeOrder() {
		if !st.Alive() || !st.Design.Armed() || st.Plan.Victims == TargetNone {
			continue
		}
		reach := e.weaponRange(a, st)
		target := a.selectTarget(st, func(cand *Stack) bool {
			return vectorDistance(st, cand) <= reach+1e-9
		})
		if target == nil {
			continue
		}
		a.fire(st, target, round, 0)
	}
}
