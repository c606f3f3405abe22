package game

import (
	"fmt"
	"sort"
)

// stepBattles finds every location where opposing fleets overlap and hands
// each group to the configured battle engine, strictly one battle at a time
// in location order. Combat settles before the movement step by contract, so
// a fleet can never move away from an engagement it was caught in.
func stepBattles(tc *turnContext) {
	groups := map[string][]*Fleet{}
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		if f.Empty() {
			continue
		}
		key := fmt.Sprintf("%.3f:%.3f", f.Position.X, f.Position.Y)
		groups[key] = append(groups[key], f) // id order preserved
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fleets := groups[key]
		empires := map[EmpireID]bool{}
		for _, f := range fleets {
			empires[f.Owner] = true
		}
		if len(empires) < 2 {
			continue
		}

		setup := &BattleSetup{
			Turn:     tc.state.Turn,
			Location: fleets[0].Position,
			Fleets:   fleets,
			Designs:  tc.designs(),
			Rules:    tc.rules,
		}
		report, err := tc.engine.Resolve(setup)
		if err != nil {
			// Engine selection was validated at turn start; a resolve error
			// here is an internal fault worth failing the whole turn for.
			panic(fmt.Sprintf("battle resolution at %s: %v", key, err))
		}
		if report.Empty() {
			continue // co-located but nobody willing or able to shoot
		}
		tc.reports = append(tc.reports, report)
		tc.applyBattleOutcome(report, fleets)
	}
}

// applyBattleOutcome writes surviving ship counts back onto the persistent
// fleet tokens. Stack shield/armor state dies with the arena; only the ship
// counts outlive the battle.
func (tc *turnContext) applyBattleOutcome(report *BattleReport, fleets []*Fleet) {
	byFleet := map[FleetID]*Fleet{}
	for _, f := range fleets {
		byFleet[f.ID] = f
	}
	losses := map[EmpireID]int{}
	for _, o := range report.Outcomes {
		f := byFleet[o.Fleet]
		if f == nil || o.TokenIndex >= len(f.Tokens) {
			continue
		}
		tok := &f.Tokens[o.TokenIndex]
		if o.Ships < tok.Quantity {
			losses[o.Empire] += tok.Quantity - o.Ships
			tok.Quantity = o.Ships
		}
	}

	survivors := report.SurvivorsByEmpire()
	for _, f := range fleets {
		if f.Empty() {
			tc.trace.Add(tc.state.Turn, "battles", fleetSubject(f.ID), "wiped_out", "", 0)
		}
	}
	empires := make([]EmpireID, 0, len(survivors))
	for eid := range survivors {
		empires = append(empires, eid)
	}
	sort.Slice(empires, func(i, j int) bool { return empires[i] < empires[j] })
	for _, eid := range empires {
		verdict := "survived"
		if survivors[eid] == 0 {
			verdict = "was annihilated"
		} else if report.Draw {
			verdict = "withdrew at the draw"
		}
		tc.messages.Addf(eid, MessageBattle,
			"Battle at (%.0f, %.0f): your force %s with %d ships (%d lost)",
			report.Location.X, report.Location.Y, verdict, survivors[eid], losses[eid])
	}
	tc.trace.Add(tc.state.Turn, "battles",
		fmt.Sprintf("loc:%.0f,%.0f", report.Location.X, report.Location.Y),
		"resolved", fmt.Sprintf("%d rounds, draw=%v", report.Rounds, report.Draw),
		float64(report.Rounds))
}
