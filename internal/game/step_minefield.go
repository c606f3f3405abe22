package game

import "fmt"

// stepMinefields handles mine laying and field decay. Laying adds to an
// existing owned field centered where the fleet sits, or starts a new one.
// Every field then loses a fixed fraction of its mines; fields that decay to
// nothing are removed.
func stepMinefields(tc *turnContext) {
	// Laying first, decay second: mines laid this turn decay this turn too,
	// so a freshly laid field never reports more mines than were built.
	for _, fid := range tc.state.FleetIDs() {
		f := tc.state.Fleets[fid]
		wp := f.CurrentWaypoint()
		if wp == nil || wp.Task != TaskLayMines || !f.AtWaypoint() {
			continue
		}
		rate := f.MineLayRate(tc.designs())
		if rate <= 0 {
			tc.messages.Addf(f.Owner, MessageMinefield,
				"Fleet %s has no mine layers and cannot lay mines", f.Name)
			wp.Task = TaskNone
			continue
		}

		var field *Minefield
		for _, mid := range tc.state.MinefieldIDs() {
			m := tc.state.Minefields[mid]
			if m.Owner == f.Owner && m.Contains(f.Position) {
				field = m
				break
			}
		}
		if field == nil {
			field = &Minefield{
				ID:     tc.state.AllocFieldID(),
				Owner:  f.Owner,
				Center: f.Position,
			}
			tc.state.Minefields[field.ID] = field
		}
		field.Mines += rate
		tc.trace.Add(tc.state.Turn, "minefields", fleetSubject(f.ID), "laid",
			fmt.Sprintf("%d mines into field %d", rate, field.ID), float64(rate))
	}

	for _, mid := range tc.state.MinefieldIDs() {
		m := tc.state.Minefields[mid]
		decay := int(float64(m.Mines) * tc.rules.MineDecayRate)
		if decay < 1 {
			decay = 1 // even tiny fields wind down
		}
		m.Mines -= decay
		if m.Mines <= 0 {
			delete(tc.state.Minefields, mid)
			tc.trace.Add(tc.state.Turn, "minefields",
				fmt.Sprintf("field:%d", mid), "dissipated", "", 0)
			continue
		}
		tc.trace.AddVerbose(tc.state.Turn, "minefields",
			fmt.Sprintf("field:%d", mid), "decayed", "", float64(decay))
	}
}
