package game

// WaypointTask is the optional order attached to a waypoint, evaluated once
// the fleet is at the waypoint target.
type WaypointTask int

const (
	TaskNone WaypointTask = iota
	TaskColonize
	TaskTransport // load/unload cargo at the target star
	TaskLayMines
	TaskScrap
)

func (t WaypointTask) String() string {
	switch t {
	case TaskNone:
		return "none"
	case TaskColonize:
		return "colonize"
	case TaskTransport:
		return "transport"
	case TaskLayMines:
		return "lay-mines"
	case TaskScrap:
		return "scrap"
	}
	return "unknown"
}

// Waypoint is one queued fleet destination. The engine consumes at most one
// per turn and never reorders the queue; only player commands do that.
type Waypoint struct {
	Target     Vector       `json:"target"`
	TargetStar StarID       `json:"targetStar,omitempty"` // 0 when the target is open space
	Warp       int          `json:"warp"`
	Task       WaypointTask `json:"task,omitempty"`
	// TransferColonists/TransferMinerals describe a transport task:
	// positive unloads to the star, negative loads from it.
	TransferColonists int     `json:"transferColonists,omitempty"`
	TransferMinerals  Mineral `json:"transferMinerals,omitempty"`
}

// ShipToken is a quantity of one design inside a fleet. Battle damage only
// survives a battle as a reduced Quantity; partial-ship damage is
// battle-scoped (see Stack).
type ShipToken struct {
	Design   DesignID `json:"design"`
	Quantity int      `json:"quantity"`
}

// Cargo is what a fleet carries in its holds.
type Cargo struct {
	Minerals  Mineral `json:"minerals"`
	Colonists int     `json:"colonists"` // in hundreds
}

// Total returns total held kT.
func (c Cargo) Total() int { return c.Minerals.Total() + c.Colonists }

// Fleet is a mobile group of ship tokens owned by one empire.
type Fleet struct {
	ID        FleetID     `json:"id"`
	Name      string      `json:"name"`
	Owner     EmpireID    `json:"owner"`
	Position  Vector      `json:"position"`
	Waypoints []Waypoint  `json:"waypoints,omitempty"`
	Fuel      int         `json:"fuel"` // mg
	Cargo     Cargo       `json:"cargo"`
	Tokens    []ShipToken `json:"tokens"`
	Plan      BattlePlan  `json:"plan"`
	// MergeInto is set by a merge command and consumed by the split/merge
	// cleanup step. Zero means no pending merge.
	MergeInto FleetID `json:"mergeInto,omitempty"`
}

// CurrentWaypoint returns the head of the waypoint queue, or nil.
func (f *Fleet) CurrentWaypoint() *Waypoint {
	if len(f.Waypoints) == 0 {
		return nil
	}
	return &f.Waypoints[0]
}

// PopWaypoint removes the head of the waypoint queue.
func (f *Fleet) PopWaypoint() {
	if len(f.Waypoints) > 0 {
		f.Waypoints = f.Waypoints[1:]
	}
}

// AtWaypoint reports whether the fleet sits on its current waypoint target.
func (f *Fleet) AtWaypoint() bool {
	wp := f.CurrentWaypoint()
	return wp != nil && f.Position.DistanceTo(wp.Target) < 1e-6
}

// TotalShips sums ship quantities across tokens.
func (f *Fleet) TotalShips() int {
	n := 0
	for _, t := range f.Tokens {
		n += t.Quantity
	}
	return n
}

// Empty reports whether the fleet has no ships left.
func (f *Fleet) Empty() bool { return f.TotalShips() == 0 }

// Mass returns hull mass plus cargo in kT.
func (f *Fleet) Mass(designs map[DesignID]*ShipDesign) int {
	m := f.Cargo.Total()
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil {
			m += d.Mass * t.Quantity
		}
	}
	return m
}

// FuelCapacity sums tank capacity across all ships.
func (f *Fleet) FuelCapacity(designs map[DesignID]*ShipDesign) int {
	c := 0
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil {
			c += d.FuelCapacity * t.Quantity
		}
	}
	return c
}

// CargoCapacity sums hold capacity across all ships.
func (f *Fleet) CargoCapacity(designs map[DesignID]*ShipDesign) int {
	c := 0
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil {
			c += d.CargoCapacity * t.Quantity
		}
	}
	return c
}

// Armed reports whether any token carries weapons.
func (f *Fleet) Armed(designs map[DesignID]*ShipDesign) bool {
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil && t.Quantity > 0 && d.Armed() {
			return true
		}
	}
	return false
}

// ScanRange returns the longest scanner range across tokens, 0 if none.
func (f *Fleet) ScanRange(designs map[DesignID]*ShipDesign) float64 {
	r := 0.0
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil && t.Quantity > 0 && d.ScanRange > r {
			r = d.ScanRange
		}
	}
	return r
}

// BombPower returns total population kill per turn, pre-defense.
func (f *Fleet) BombPower(designs map[DesignID]*ShipDesign) int {
	p := 0
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil {
			p += d.BombPower * t.Quantity
		}
	}
	return p
}

// MineLayRate returns mines laid per turn across all minelayer tokens.
func (f *Fleet) MineLayRate(designs map[DesignID]*ShipDesign) int {
	r := 0
	for _, t := range f.Tokens {
		if d := designs[t.Design]; d != nil {
			r += d.MineLayRate * t.Quantity
		}
	}
	return r
}

// BestEngine returns the engine the fleet travels on: the one with the lowest
// top warp governs the whole formation. Second return is false for hulls-only
// degenerate fleets with no engine data.
func (f *Fleet) BestEngine(designs map[DesignID]*ShipDesign) (Engine, bool) {
	var e Engine
	found := false
	for _, t := range f.Tokens {
		d := designs[t.Design]
		if d == nil || t.Quantity == 0 || d.Starbase {
			continue
		}
		if !found || d.Engine.MaxWarp < e.MaxWarp {
			e = d.Engine
			found = true
		}
	}
	return e, found
}

// ColonizerToken returns the index of the first token with colonization
// modules, or -1.
func (f *Fleet) ColonizerToken(designs map[DesignID]*ShipDesign) int {
	for i, t := range f.Tokens {
		if d := designs[t.Design]; d != nil && t.Quantity > 0 && d.Colonizer {
			return i
		}
	}
	return -1
}
