package game

import "fmt"

// Production unit costs. Fixed ruleset data, resources plus minerals.
const (
	mineCostResources    = 5
	factoryCostResources = 10
	defenseCostResources = 15
)

var (
	factoryCostMinerals = Mineral{0, 0, 4} // germanium-hungry
	defenseCostMinerals = Mineral{2, 2, 2}
)

// productionCost returns the per-unit resource and mineral cost of a queue
// item.
func productionCost(item ProductionItem, designs map[DesignID]*ShipDesign) (int, Mineral) {
	switch item.Kind {
	case BuildMine:
		return mineCostResources, Mineral{}
	case BuildFactory:
		return factoryCostResources, factoryCostMinerals
	case BuildDefense:
		return defenseCostResources, defenseCostMinerals
	case BuildShip:
		if d := designs[item.Design]; d != nil {
			return d.Cost, d.MineralCost
		}
	}
	return 0, Mineral{}
}

// stepStarUpdate runs the per-star economy in one pass: mining, production,
// research funding, and population growth. Research resources pool across an
// empire's stars and level up after all stars have contributed, so star
// iteration order never changes research results.
func stepStarUpdate(tc *turnContext) {
	researchPool := map[EmpireID]int{}

	for _, sid := range tc.state.StarIDs() {
		s := tc.state.Stars[sid]
		if !s.Owned() {
			continue
		}
		emp := tc.state.Empires[s.Owner]

		// Mining: output scales with installed mines and concentration.
		for i := range s.Minerals {
			mined := int(tc.rules.MineOutput * float64(s.Mines*s.Concentration[i]) / 10)
			s.Minerals[i] += mined
		}

		// Resources from people and factories, split between research and
		// production by the empire's budget fraction.
		resources := s.Population/(tc.rules.ResourcesPerColonist*100) +
			s.Factories/tc.rules.ResourcesPerFactory
		research := 0
		if emp != nil {
			research = int(float64(resources) * emp.Research.Budget)
			researchPool[s.Owner] += research
		}
		prodBudget := resources - research

		tc.runProduction(s, prodBudget)
		tc.growPopulation(s)
	}

	tc.applyResearch(researchPool)
}

// runProduction spends this turn's production resources down the star's
// queue head-first. Partial progress stays on the head item; a mineral
// shortage stalls the queue until the stock recovers.
func (tc *turnContext) runProduction(s *Star, budget int) {
	for len(s.Queue) > 0 && budget > 0 {
		item := &s.Queue[0]
		unitRes, unitMin := productionCost(*item, tc.designs())
		if unitRes <= 0 {
			// Unbuildable entry (deleted design); drop it rather than wedge
			// the queue forever.
			tc.trace.Add(tc.state.Turn, "star-update", starSubject(s.ID),
				"queue_dropped", item.Kind.String(), 0)
			s.Queue = s.Queue[1:]
			continue
		}

		need := unitRes - item.Progress
		if need > budget {
			item.Progress += budget
			budget = 0
			break
		}
		if !s.Minerals.CoversCost(unitMin) {
			// Resources are there but the minerals are not. Park the
			// progress fully paid and wait for mining to catch up.
			item.Progress = unitRes
			tc.messages.Addf(s.Owner, MessageProduction,
				"%s lacks minerals to finish building a %s", s.Name, item.Kind)
			break
		}

		budget -= need
		s.Minerals = s.Minerals.Subtract(unitMin)
		item.Progress = 0
		item.Quantity--
		tc.deliverUnit(s, *item)
		if item.Quantity == 0 {
			s.Queue = s.Queue[1:]
		}
	}

	// Idle stars with an empty queue just stockpile; that is not an error.
}

// deliverUnit places one completed production unit into the world.
func (tc *turnContext) deliverUnit(s *Star, item ProductionItem) {
	switch item.Kind {
	case BuildMine:
		s.Mines++
	case BuildFactory:
		s.Factories++
	case BuildDefense:
		s.Defenses++
	case BuildShip:
		d := tc.designs()[item.Design]
		if d == nil {
			return
		}
		f := tc.findOrSpawnFleet(s, d)
		f.Tokens = appendToken(f.Tokens, d.ID, 1)
		f.Fuel += d.FuelCapacity
		tc.trace.Add(tc.state.Turn, "star-update", starSubject(s.ID),
			"ship_built", d.Name, 1)
		tc.messages.Addf(s.Owner, MessageProduction,
			"%s has built a new %s", s.Name, d.Name)
	}
}

// buildKey identifies one turn's build fleet for a design at a star.
type buildKey struct {
	star   StarID
	design DesignID
}

// findOrSpawnFleet returns this turn's build fleet for the design at the
// star: ships of one design completed at one star in one turn muster
// together rather than each floating off alone. Only fleets spawned by this
// turn's production qualify; ships never slip into a fleet the player
// organized.
func (tc *turnContext) findOrSpawnFleet(s *Star, d *ShipDesign) *Fleet {
	key := buildKey{star: s.ID, design: d.ID}
	if fid, ok := tc.built[key]; ok {
		return tc.state.Fleets[fid]
	}
	f := &Fleet{
		ID:       tc.state.AllocFleetID(),
		Owner:    s.Owner,
		Position: s.Position,
	}
	f.Name = fmt.Sprintf("%s #%d", d.Name, f.ID)
	tc.state.Fleets[f.ID] = f
	tc.built[key] = f.ID
	return f
}

// appendToken merges a quantity into an existing token of the design or
// appends a new one.
func appendToken(tokens []ShipToken, id DesignID, qty int) []ShipToken {
	for i := range tokens {
		if tokens[i].Design == id {
			tokens[i].Quantity += qty
			return tokens
		}
	}
	return append(tokens, ShipToken{Design: id, Quantity: qty})
}

// growPopulation applies habitability-scaled growth, capacity crowding, and
// the negative-population clamp.
func (tc *turnContext) growPopulation(s *Star) {
	hab := float64(s.Habitability) / 100
	capacity := int(float64(tc.rules.MaxPopulation) * hab)
	if capacity < 1 {
		capacity = 1
	}

	if s.Population < capacity {
		growth := int(float64(s.Population) * tc.rules.GrowthRate * hab)
		s.Population += growth
		if s.Population > capacity {
			s.Population = capacity
		}
	} else if s.Population > capacity {
		// Overcrowding: a tenth of the excess dies back each turn.
		s.Population -= (s.Population - capacity) / 10
	}
	tc.clampMin(&s.Population, 0, s.Owner, "star-update", starSubject(s.ID), "population")
	tc.trace.AddVerbose(tc.state.Turn, "star-update", starSubject(s.ID),
		"population", "", float64(s.Population))
}

// applyResearch adds each empire's pooled research spending and resolves any
// level-ups, spilling surplus into the next level. Cost doubles per level.
func (tc *turnContext) applyResearch(pool map[EmpireID]int) {
	for _, eid := range tc.state.EmpireIDs() {
		spent := pool[eid]
		if spent == 0 {
			continue
		}
		emp := tc.state.Empires[eid]
		emp.Research.Progress += spent

		for {
			level := emp.Research.Levels[emp.Research.Field]
			cost := tc.rules.ResearchBaseCost << level
			if emp.Research.Progress < cost {
				break
			}
			emp.Research.Progress -= cost
			emp.Research.Levels[emp.Research.Field]++
			tc.trace.Add(tc.state.Turn, "star-update", empireSubject(eid),
				"research_level", emp.Research.Field.String(),
				float64(emp.Research.Levels[emp.Research.Field]))
			tc.messages.Addf(eid, MessageResearch,
				"Your researchers have reached %s level %d",
				emp.Research.Field, emp.Research.Levels[emp.Research.Field])
		}
	}
}
