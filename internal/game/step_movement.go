package game

import "fmt"

// stepMovement consumes at most one waypoint per fleet: travel toward the
// current target at the ordered warp, burning fuel by the engine's usage
// curve. A fleet that cannot afford the full leg travels as far as its tank
// allows and keeps the waypoint queued; running a fleet dry is a slow order,
// never a failed one.
func stepMovement(tc *turnContext) {
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		if f.Empty() {
			continue
		}
		wp := f.CurrentWaypoint()
		if wp == nil {
			continue
		}
		if f.AtWaypoint() {
			tc.finishWaypoint(f, wp)
			continue
		}

		engine, ok := f.BestEngine(tc.designs())
		if !ok {
			continue // nothing here can move (starbase or hulk)
		}
		warp := wp.Warp
		if warp > engine.MaxWarp {
			tc.messages.Addf(f.Owner, MessageFuel,
				"Fleet %s cannot sustain warp %d; throttling to warp %d",
				f.Name, warp, engine.MaxWarp)
			warp = engine.MaxWarp
		}
		if warp < 1 {
			continue
		}

		legDist := f.Position.DistanceTo(wp.Target)
		travel := float64(warp * warp) // ly per turn at this warp
		if travel > legDist {
			travel = legDist
		}

		legStart := f.Position
		mass := f.Mass(tc.designs())
		fuelNeeded := engine.fuelCost(mass, travel, warp)
		partial := false
		if fuelNeeded > f.Fuel {
			// Travel the distance the tank covers and stop; the unmet
			// waypoint stays queued for next turn.
			partial = true
			travel = engine.maxDistance(mass, f.Fuel, warp)
			if travel > legDist {
				travel = legDist
			}
			fuelNeeded = engine.fuelCost(mass, travel, warp)
			if fuelNeeded > f.Fuel {
				// Rounding put the ceil one mg over the tank; back off the
				// last fraction of a light-year.
				travel *= float64(f.Fuel) / float64(fuelNeeded)
				fuelNeeded = f.Fuel
			}
		}

		f.Fuel -= fuelNeeded
		tc.clampMin(&f.Fuel, 0, f.Owner, "movement", fleetSubject(f.ID), "fuel")

		if travel >= legDist-1e-9 {
			f.Position = wp.Target // snap exactly onto the destination
		} else {
			heading := wp.Target.Sub(f.Position).Normalized()
			f.Position = f.Position.Add(heading.Scale(travel))
			if partial {
				tc.messages.Addf(f.Owner, MessageFuel,
					"Fleet %s ran out of fuel after %.1f ly and is holding course", f.Name, travel)
				tc.trace.Add(tc.state.Turn, "movement", fleetSubject(f.ID),
					"partial_travel", fmt.Sprintf("%.1fly of %.1fly", travel, legDist), travel)
			}
		}
		tc.trace.AddVerbose(tc.state.Turn, "movement", fleetSubject(f.ID),
			"position", fmt.Sprintf("(%.1f,%.1f)", f.Position.X, f.Position.Y), travel)

		tc.checkMinefieldStrikes(f, warp, legStart, travel)

		if f.AtWaypoint() {
			tc.finishWaypoint(f, wp)
		}
	}
}

// finishWaypoint handles a fleet sitting on its waypoint target. Tasks owned
// by other steps (colonize, lay-mines, scrap) leave the waypoint in place
// for them; plain travel and transport orders complete here.
func (tc *turnContext) finishWaypoint(f *Fleet, wp *Waypoint) {
	switch wp.Task {
	case TaskNone:
		f.PopWaypoint()
	case TaskTransport:
		tc.runTransport(f, wp)
		f.PopWaypoint()
	}
}

// runTransport moves cargo between the fleet and the star it is orbiting.
// Positive transfer amounts unload to the star, negative amounts load.
func (tc *turnContext) runTransport(f *Fleet, wp *Waypoint) {
	star := tc.state.StarAt(f.Position)
	if star == nil {
		tc.messages.Addf(f.Owner, MessageInfo,
			"Fleet %s has no star here to transfer cargo with", f.Name)
		return
	}

	// Colonists move only between own holds and own colonies.
	if wp.TransferColonists != 0 && star.Owner == f.Owner {
		amount := wp.TransferColonists
		if amount > 0 {
			if amount > f.Cargo.Colonists {
				amount = f.Cargo.Colonists
			}
			f.Cargo.Colonists -= amount
			star.Population += amount * 100
		} else {
			load := -amount
			avail := star.Population / 100
			if load > avail {
				load = avail
			}
			free := f.CargoCapacity(tc.designs()) - f.Cargo.Total()
			if load > free {
				load = free
			}
			f.Cargo.Colonists += load
			star.Population -= load * 100
			tc.clampMin(&star.Population, 0, star.Owner, "movement", starSubject(star.ID), "population")
		}
	}

	for i := range wp.TransferMinerals {
		amount := wp.TransferMinerals[i]
		if amount > 0 { // unload
			if amount > f.Cargo.Minerals[i] {
				amount = f.Cargo.Minerals[i]
			}
			f.Cargo.Minerals[i] -= amount
			star.Minerals[i] += amount
		} else if amount < 0 { // load
			load := -amount
			if load > star.Minerals[i] {
				load = star.Minerals[i]
			}
			free := f.CargoCapacity(tc.designs()) - f.Cargo.Total()
			if load > free {
				load = free
			}
			star.Minerals[i] -= load
			f.Cargo.Minerals[i] += load
		}
	}
	tc.trace.Add(tc.state.Turn, "movement", fleetSubject(f.ID), "transport",
		fmt.Sprintf("with %s", star.Name), 0)
}

// checkMinefieldStrikes rolls a strike for a fleet whose travel leg crossed
// a hostile minefield at unsafe warp. The whole leg is tested, so a fast
// fleet cannot skip through a field and out the far side for free. The roll
// uses the turn rng, so replays with the same seed strike identically.
func (tc *turnContext) checkMinefieldStrikes(f *Fleet, warp int, legStart Vector, travel float64) {
	if warp <= tc.rules.MineSafeWarp || travel <= 0 {
		return
	}
	for _, mid := range tc.state.MinefieldIDs() {
		m := tc.state.Minefields[mid]
		if m.Owner == f.Owner || !m.Crosses(legStart, f.Position) {
			continue
		}
		chance := tc.rules.MineStrikeChance * float64(warp-tc.rules.MineSafeWarp) * travel
		if chance > 1 {
			chance = 1
		}
		if tc.rng.Float64() >= chance {
			continue
		}
		tc.applyMineStrike(f, m)
	}
}

// applyMineStrike spreads mine damage across the fleet's tokens in order,
// killing whole ships per the design's armor. The field burns a tenth of its
// mines in the detonation.
func (tc *turnContext) applyMineStrike(f *Fleet, m *Minefield) {
	damage := tc.rules.MineDamage
	killed := 0
	for i := range f.Tokens {
		tok := &f.Tokens[i]
		d := tc.designs()[tok.Design]
		if d == nil || tok.Quantity == 0 || damage <= 0 {
			continue
		}
		kills := tok.Quantity // zero-armor hulls die to any mine damage
		if d.Armor > 0 {
			kills = damage / d.Armor
		}
		if kills > tok.Quantity {
			kills = tok.Quantity
		}
		tok.Quantity -= kills
		damage -= kills * d.Armor
		killed += kills
	}
	m.Mines -= m.Mines / 10

	tc.trace.Add(tc.state.Turn, "movement", fleetSubject(f.ID), "mine_strike",
		fmt.Sprintf("field %d, %d ships lost", m.ID, killed), float64(killed))
	tc.messages.Addf(f.Owner, MessageMinefield,
		"Fleet %s struck a minefield and lost %d ships", f.Name, killed)
	tc.messages.Addf(m.Owner, MessageMinefield,
		"An enemy fleet struck your minefield #%d", m.ID)
}
