package game

// stepScan refreshes every empire's scanner intel before anything else
// changes this turn, so reports reflect the galaxy as submitted commands saw
// it. Planetary scanners and fleet scanners both contribute; a star inside
// any scanner's range gets a fresh intel reading stamped with this turn.
func stepScan(tc *turnContext) {
	for _, eid := range tc.state.EmpireIDs() {
		emp := tc.state.Empires[eid]
		if emp.Intel == nil {
			emp.Intel = map[StarID]StarIntel{}
		}

		// Collect scanner positions and ranges for this empire.
		type scanner struct {
			pos    Vector
			radius float64
		}
		var scanners []scanner
		for _, sid := range tc.state.StarIDs() {
			s := tc.state.Stars[sid]
			if s.Owner == eid && s.ScanRange > 0 {
				scanners = append(scanners, scanner{s.Position, s.ScanRange})
			}
		}
		for _, fid := range tc.state.FleetIDs() {
			f := tc.state.Fleets[fid]
			if f.Owner != eid {
				continue
			}
			if r := f.ScanRange(tc.designs()); r > 0 {
				scanners = append(scanners, scanner{f.Position, r})
			}
		}

		scanned := 0
		for _, sid := range tc.state.StarIDs() {
			s := tc.state.Stars[sid]
			visible := s.Owner == eid // own stars are always current
			for _, sc := range scanners {
				if visible {
					break
				}
				if sc.pos.DistanceTo(s.Position) <= sc.radius {
					visible = true
				}
			}
			if !visible {
				continue // stale intel is kept, not erased
			}
			emp.Intel[sid] = StarIntel{
				Owner:      s.Owner,
				Population: s.Population,
				Turn:       tc.state.Turn,
			}
			scanned++
		}
		tc.trace.AddVerbose(tc.state.Turn, "scan", empireSubject(eid),
			"stars_scanned", "", float64(scanned))
	}
}
