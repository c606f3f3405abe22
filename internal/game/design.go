package game

// ShipDesign is static catalog data: the ship-design/component catalog is an
// external collaborator, so the engine only ever reads these (design commands
// add or obsolete whole entries, never mutate hull stats of ships in flight).
type ShipDesign struct {
	ID         DesignID     `json:"id"`
	Owner      EmpireID     `json:"owner"`
	Name       string       `json:"name"`
	Mass       int          `json:"mass"` // kT per ship, hull plus components
	Armor      int          `json:"armor"`
	Shields    int          `json:"shields"`
	Initiative int          `json:"initiative"`
	Movement   int          `json:"movement"` // battle speed rating 0..8
	Cost       int          `json:"cost"`     // resources to build one ship
	MineralCost  Mineral    `json:"mineralCost"`
	FuelCapacity int        `json:"fuelCapacity"` // mg per ship
	CargoCapacity int       `json:"cargoCapacity"` // kT per ship
	Weapons    []WeaponSlot `json:"weapons,omitempty"`
	Engine     Engine       `json:"engine"`
	Colonizer  bool         `json:"colonizer,omitempty"`
	BombPower  int          `json:"bombPower,omitempty"`  // population killed per ship per turn, pre-defense
	MineLayRate int         `json:"mineLayRate,omitempty"` // mines laid per ship per turn
	Starbase   bool         `json:"starbase,omitempty"`
	ScanRange  float64      `json:"scanRange,omitempty"` // ly
	Obsolete   bool         `json:"obsolete,omitempty"`
}

// Armed reports whether the design carries any weapon.
func (d *ShipDesign) Armed() bool { return len(d.Weapons) > 0 }

// MaxWeaponRange returns the longest weapon range in battle board cells,
// or 0 for unarmed designs.
func (d *ShipDesign) MaxWeaponRange() int {
	r := 0
	for _, w := range d.Weapons {
		if w.Range > r {
			r = w.Range
		}
	}
	return r
}

// FirePower returns total damage per volley for one ship of this design.
func (d *ShipDesign) FirePower() int {
	p := 0
	for _, w := range d.Weapons {
		p += w.Power * w.Count
	}
	return p
}

// WeaponSlot is one weapon battery on a hull.
type WeaponSlot struct {
	Power int `json:"power"` // damage per shot
	Range int `json:"range"` // battle board cells
	Count int `json:"count"` // shots per volley
}

// Engine describes propulsion: top warp and the per-warp fuel usage curve.
type Engine struct {
	Name      string  `json:"name"`
	MaxWarp   int     `json:"maxWarp"`
	FuelUsage [11]int `json:"fuelUsage"` // usage factor per warp 0..10
}

// fuelCost returns the fuel (mg) burned moving mass kT a distance dist ly at
// the given warp. The usage curve is a fixed per-engine lookup; the formula
// rounds up so a fleet can never squeeze a free fraction of a light-year.
func (e Engine) fuelCost(mass int, dist float64, warp int) int {
	if warp <= 0 || dist <= 0 {
		return 0
	}
	if warp > 10 {
		warp = 10
	}
	usage := e.FuelUsage[warp]
	cost := float64(mass) * dist * float64(usage) / 2000.0
	c := int(cost)
	if cost > float64(c) {
		c++
	}
	return c
}

// maxDistance returns how far mass kT can travel at warp with the given fuel.
func (e Engine) maxDistance(mass, fuel, warp int) float64 {
	if warp <= 0 || mass <= 0 {
		return 0
	}
	if warp > 10 {
		warp = 10
	}
	usage := e.FuelUsage[warp]
	if usage <= 0 {
		return 1e9 // free travel at this warp
	}
	return float64(fuel) * 2000.0 / (float64(mass) * float64(usage))
}
