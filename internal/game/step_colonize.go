package game

// stepColonize evaluates colonize tasks for fleets already at their target
// star. Runs immediately after bombing: a star depopulated this very turn is
// a legal target. The colonizer hull itself is broken up on landing and its
// scrap minerals start the colony's stockpile.
func stepColonize(tc *turnContext) {
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		wp := f.CurrentWaypoint()
		if wp == nil || wp.Task != TaskColonize || !f.AtWaypoint() {
			continue
		}
		star := tc.state.StarAt(f.Position)

		reject := func(format string, args ...any) {
			tc.messages.Addf(f.Owner, MessageColonize, format, args...)
			wp.Task = TaskNone // the order is spent either way
		}

		switch {
		case star == nil:
			reject("Fleet %s has nothing to colonize at its waypoint", f.Name)
			continue
		case star.Owned():
			reject("%s is already inhabited; fleet %s holds position", star.Name, f.Name)
			continue
		case f.Cargo.Colonists <= 0:
			reject("Fleet %s carries no colonists to settle %s", f.Name, star.Name)
			continue
		}
		ci := f.ColonizerToken(tc.designs())
		if ci < 0 {
			reject("Fleet %s has no colonization module for %s", f.Name, star.Name)
			continue
		}

		// Found the colony. Colonists count is stored in hundreds on the
		// fleet, as absolute population on the star.
		star.Owner = f.Owner
		star.Population = f.Cargo.Colonists * 100
		f.Cargo.Colonists = 0

		// Cargo holds are emptied onto the new colony, and one colonizer
		// hull is scrapped in place for startup minerals.
		star.Minerals = star.Minerals.Add(f.Cargo.Minerals)
		f.Cargo.Minerals = Mineral{}
		d := tc.designs()[f.Tokens[ci].Design]
		star.Minerals = star.Minerals.Add(d.MineralCost.Scale(tc.rules.ScrapRatio))
		f.Tokens[ci].Quantity--

		f.PopWaypoint()
		tc.trace.Add(tc.state.Turn, "colonize", starSubject(star.ID), "colonized",
			star.Name, float64(star.Population))
		tc.messages.Addf(f.Owner, MessageColonize,
			"Your colonists have settled %s (population %d)", star.Name, star.Population)
	}
}
