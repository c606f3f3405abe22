package game

import "fmt"

// stepScrap breaks up fleets with a scrap order at their waypoint. A share
// of the hull minerals is recovered: onto the star if the fleet is orbiting
// one, lost to space otherwise (deep-space scrapping is legal but wasteful).
func stepScrap(tc *turnContext) {
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		wp := f.CurrentWaypoint()
		if wp == nil || wp.Task != TaskScrap || !f.AtWaypoint() {
			continue
		}

		recovered := Mineral{}
		for _, tok := range f.Tokens {
			if d := tc.designs()[tok.Design]; d != nil {
				for i := 0; i < tok.Quantity; i++ {
					recovered = recovered.Add(d.MineralCost.Scale(tc.rules.ScrapRatio))
				}
			}
		}
		recovered = recovered.Add(f.Cargo.Minerals)

		star := tc.state.StarAt(f.Position)
		if star != nil {
			star.Minerals = star.Minerals.Add(recovered)
			if star.Owner == f.Owner {
				star.Population += f.Cargo.Colonists * 100
			}
		}

		delete(tc.state.Fleets, f.ID)
		tc.trace.Add(tc.state.Turn, "scrap", fleetSubject(f.ID), "scrapped",
			fmt.Sprintf("%d kT recovered", recovered.Total()), float64(recovered.Total()))
		tc.messages.Addf(f.Owner, MessageInfo,
			"Fleet %s was scrapped, recovering %d kT of minerals", f.Name, recovered.Total())
	}
}
