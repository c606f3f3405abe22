package game

import "fmt"

// stepBombing lets every bomber fleet in orbit of an enemy star work over
// its population and defenses. Runs before colonization by contract: a star
// bombed to zero this turn must be observably empty when colonize tasks are
// evaluated, never the other way around.
func stepBombing(tc *turnContext) {
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		star := tc.state.StarAt(f.Position)
		if star == nil || !star.Owned() || star.Owner == f.Owner {
			continue
		}
		power := f.BombPower(tc.designs())
		if power <= 0 {
			continue
		}

		// Planetary defenses soak a fraction of the attack, hard-capped so
		// no fortress is ever fully bomb-proof.
		coverage := float64(star.Defenses) * tc.rules.DefenseCoverage
		if coverage > tc.rules.MaxDefenseCoverage {
			coverage = tc.rules.MaxDefenseCoverage
		}
		killed := int(float64(power) * (1 - coverage))
		if killed < 0 {
			killed = 0
		}
		defensesHit := power / 50 // bombing chews installations slowly

		star.Population -= killed
		star.Defenses -= defensesHit
		tc.clampMin(&star.Population, 0, star.Owner, "bombing", starSubject(star.ID), "population")
		tc.clampMin(&star.Defenses, 0, star.Owner, "bombing", starSubject(star.ID), "defenses")

		tc.trace.Add(tc.state.Turn, "bombing", starSubject(star.ID), "bombed",
			fmt.Sprintf("%d colonists killed by fleet %d", killed, f.ID), float64(killed))
		tc.messages.Addf(f.Owner, MessageBombing,
			"Your fleet %s bombed %s, killing %d colonists", f.Name, star.Name, killed)
		tc.messages.Addf(star.Owner, MessageBombing,
			"%s was bombed; %d colonists died", star.Name, killed)

		if star.Population == 0 {
			// Wiped out: the star reverts to unowned and its queue dies
			// with its people.
			prevOwner := star.Owner
			star.Owner = EmpireNone
			star.Queue = nil
			star.Factories = 0
			star.Defenses = 0
			tc.trace.Add(tc.state.Turn, "bombing", starSubject(star.ID), "depopulated", "", 0)
			tc.messages.Addf(prevOwner, MessageBombing, "%s has been wiped out", star.Name)
		}
	}
}
