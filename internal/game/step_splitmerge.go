package game

// stepSplitMerge is the end-of-turn fleet bookkeeping pass: pending merge
// orders fold fleets together once both ended the turn on the same spot, and
// fleets with no ships left (combat losses, colonizers spent) dissolve. Runs
// last so every other step saw the fleets it expected.
func stepSplitMerge(tc *turnContext) {
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		if f == nil || f.MergeInto == 0 {
			continue
		}
		target := tc.state.Fleets[f.MergeInto]
		f.MergeInto = 0
		if target == nil || target.Owner != f.Owner ||
			target.Position.DistanceTo(f.Position) > 1e-6 {
			tc.messages.Addf(f.Owner, MessageInfo,
				"Fleet %s could not merge: target fleet is not here", f.Name)
			continue
		}
		for _, tok := range f.Tokens {
			target.Tokens = appendToken(target.Tokens, tok.Design, tok.Quantity)
		}
		target.Fuel += f.Fuel
		target.Cargo.Minerals = target.Cargo.Minerals.Add(f.Cargo.Minerals)
		target.Cargo.Colonists += f.Cargo.Colonists
		delete(tc.state.Fleets, fid)
		tc.trace.Add(tc.state.Turn, "cleanup", fleetSubject(fid), "merged",
			target.Name, float64(target.TotalShips()))
	}

	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		if f != nil && f.Empty() {
			delete(tc.state.Fleets, fid)
			tc.trace.Add(tc.state.Turn, "cleanup", fleetSubject(fid), "dissolved", "", 0)
		}
	}
}
