package game

import (
	"math"
	"sort"
)

// Entity identifiers. Ids are stable for the life of a game; nothing in the
// engine ever renumbers them.
type (
	StarID   int
	FleetID  int
	EmpireID int
	DesignID int
)

// EmpireNone marks unowned stars and neutral entities.
const EmpireNone EmpireID = 0

// Vector is a position in light-years on the galaxy map, or in battle units
// inside the advanced battle engine.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector) Add(o Vector) Vector      { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector      { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(f float64) Vector   { return Vector{v.X * f, v.Y * f} }
func (v Vector) Length() float64          { return math.Hypot(v.X, v.Y) }
func (v Vector) DistanceTo(o Vector) float64 { return v.Sub(o).Length() }

// Normalized returns the unit vector, or the zero vector for zero length.
func (v Vector) Normalized() Vector {
	l := v.Length()
	if l < 1e-9 {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l}
}

// MineralType indexes the three mineral kinds every stock and concentration
// tracks.
type MineralType int

const (
	Ironium MineralType = iota
	Boranium
	Germanium
	numMineralTypes
)

func (m MineralType) String() string {
	switch m {
	case Ironium:
		return "ironium"
	case Boranium:
		return "boranium"
	case Germanium:
		return "germanium"
	}
	return "unknown"
}

// Mineral is an amount (kT) or concentration (1..100) per mineral type.
type Mineral [numMineralTypes]int

// Add returns the element-wise sum.
func (m Mineral) Add(o Mineral) Mineral {
	for i := range m {
		m[i] += o[i]
	}
	return m
}

// Total returns the summed amount across all types.
func (m Mineral) Total() int {
	t := 0
	for _, v := range m {
		t += v
	}
	return t
}

// CoversCost reports whether every element of m is at least the matching
// element of cost.
func (m Mineral) CoversCost(cost Mineral) bool {
	for i := range m {
		if m[i] < cost[i] {
			return false
		}
	}
	return true
}

// Subtract returns m minus cost, clamped at zero per element.
func (m Mineral) Subtract(cost Mineral) Mineral {
	for i := range m {
		m[i] -= cost[i]
		if m[i] < 0 {
			m[i] = 0
		}
	}
	return m
}

// Scale returns the element-wise product with f, truncated.
func (m Mineral) Scale(f float64) Mineral {
	for i := range m {
		m[i] = int(float64(m[i]) * f)
	}
	return m
}

// QueueItemKind selects what one production order builds.
type QueueItemKind int

const (
	BuildMine QueueItemKind = iota
	BuildFactory
	BuildDefense
	BuildShip
)

func (k QueueItemKind) String() string {
	switch k {
	case BuildMine:
		return "mine"
	case BuildFactory:
		return "factory"
	case BuildDefense:
		return "defense"
	case BuildShip:
		return "ship"
	}
	return "unknown"
}

// ProductionItem is one order on a star's production queue. Progress tracks
// resources already sunk into the next unit of the head item.
type ProductionItem struct {
	Kind     QueueItemKind `json:"kind"`
	Design   DesignID      `json:"design,omitempty"` // BuildShip only
	Quantity int           `json:"quantity"`
	Progress int           `json:"progress,omitempty"`
}

// Star is one fixed body on the map. Mutated only by turn steps.
type Star struct {
	ID            StarID           `json:"id"`
	Name          string           `json:"name"`
	Position      Vector           `json:"position"`
	Owner         EmpireID         `json:"owner"`
	Population    int              `json:"population"`
	Habitability  int              `json:"habitability"` // 0..100 for the nominal settler species
	Minerals      Mineral          `json:"minerals"`      // surface stock, kT
	Concentration Mineral          `json:"concentration"` // 1..100 mining yield factor
	Mines         int              `json:"mines"`
	Factories     int              `json:"factories"`
	Defenses      int              `json:"defenses"`
	Queue         []ProductionItem `json:"queue,omitempty"`
	ScanRange     float64          `json:"scanRange,omitempty"` // ly, 0 for no planetary scanner
}

// Owned reports whether the star has a living owner.
func (s *Star) Owned() bool { return s.Owner != EmpireNone }

// ResearchField is one technology track an empire can fund.
type ResearchField int

const (
	ResearchEnergy ResearchField = iota
	ResearchWeapons
	ResearchPropulsion
	ResearchConstruction
	numResearchFields
)

func (f ResearchField) String() string {
	switch f {
	case ResearchEnergy:
		return "energy"
	case ResearchWeapons:
		return "weapons"
	case ResearchPropulsion:
		return "propulsion"
	case ResearchConstruction:
		return "construction"
	}
	return "unknown"
}

// ResearchState is one empire's research allocation and progress.
type ResearchState struct {
	Field    ResearchField         `json:"field"`
	Budget   float64               `json:"budget"` // fraction of star resources, 0..1
	Levels   [numResearchFields]int `json:"levels"`
	Progress int                   `json:"progress"` // resources toward the next level of Field
}

// StarIntel is what one empire last saw of a star.
type StarIntel struct {
	Owner      EmpireID `json:"owner"`
	Population int      `json:"population"`
	Turn       int      `json:"turn"` // turn the reading was taken
}

// Empire is the per-player aggregate: research state and scanner intel.
// Commands arrive tagged with the empire they act for.
type Empire struct {
	ID       EmpireID             `json:"id"`
	Name     string               `json:"name"`
	Research ResearchState        `json:"research"`
	Intel    map[StarID]StarIntel `json:"intel,omitempty"`
}

// Minefield is a decaying cloud of mines centered on where it was laid.
// Radius is derived from the mine count, not stored.
type Minefield struct {
	ID    int      `json:"id"`
	Owner EmpireID `json:"owner"`
	Center Vector  `json:"center"`
	Mines int      `json:"mines"`
}

// Radius returns the field radius in light-years.
func (m *Minefield) Radius() float64 { return math.Sqrt(float64(m.Mines)) }

// Contains reports whether p lies inside the field.
func (m *Minefield) Contains(p Vector) bool {
	return m.Center.DistanceTo(p) <= m.Radius()
}

// Crosses reports whether the travel leg from..to passes through the field,
// including legs that enter and leave within one turn.
func (m *Minefield) Crosses(from, to Vector) bool {
	d := to.Sub(from)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return m.Contains(from)
	}
	t := ((m.Center.X-from.X)*d.X + (m.Center.Y-from.Y)*d.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return m.Contains(from.Add(d.Scale(t)))
}

// GameState is the single authoritative snapshot for one turn. The turn
// generator owns it exclusively while processing; once a turn completes the
// published state is read-only by convention.
type GameState struct {
	Turn        int                     `json:"turn"`
	Seed        int64                   `json:"seed"`
	Rules       Rules                   `json:"rules"`
	Stars       map[StarID]*Star        `json:"stars"`
	Fleets      map[FleetID]*Fleet      `json:"fleets"`
	Empires     map[EmpireID]*Empire    `json:"empires"`
	Designs     map[DesignID]*ShipDesign `json:"designs"`
	Minefields  map[int]*Minefield      `json:"minefields,omitempty"`
	NextFleetID FleetID                 `json:"nextFleetId"`
	NextFieldID int                     `json:"nextFieldId"`
}

// NewGameState returns an empty snapshot with the given rules and seed.
func NewGameState(rules Rules, seed int64) *GameState {
	return &GameState{
		Turn:        1,
		Seed:        seed,
		Rules:       rules,
		Stars:       map[StarID]*Star{},
		Fleets:      map[FleetID]*Fleet{},
		Empires:     map[EmpireID]*Empire{},
		Designs:     map[DesignID]*ShipDesign{},
		Minefields:  map[int]*Minefield{},
		NextFleetID: 1,
		NextFieldID: 1,
	}
}

// AllocFleetID hands out the next stable fleet id.
func (g *GameState) AllocFleetID() FleetID {
	id := g.NextFleetID
	g.NextFleetID++
	return id
}

// AllocFieldID hands out the next stable minefield id.
func (g *GameState) AllocFieldID() int {
	id := g.NextFieldID
	g.NextFieldID++
	return id
}

// StarAt returns the star exactly at p, or nil.
func (g *GameState) StarAt(p Vector) *Star {
	for _, id := range g.StarIDs() {
		s := g.Stars[id]
		if s.Position.DistanceTo(p) < 1e-6 {
			return s
		}
	}
	return nil
}

// Map iteration in Go is randomized; every consumer that walks these maps must
// go through the sorted id slices below or determinism is lost.

// StarIDs returns all star ids in ascending order.
func (g *GameState) StarIDs() []StarID {
	ids := make([]StarID, 0, len(g.Stars))
	for id := range g.Stars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FleetIDs returns all fleet ids in ascending order.
func (g *GameState) FleetIDs() []FleetID {
	ids := make([]FleetID, 0, len(g.Fleets))
	for id := range g.Fleets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EmpireIDs returns all empire ids in ascending order.
func (g *GameState) EmpireIDs() []EmpireID {
	ids := make([]EmpireID, 0, len(g.Empires))
	for id := range g.Empires {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MinefieldIDs returns all minefield ids in ascending order.
func (g *GameState) MinefieldIDs() []int {
	ids := make([]int, 0, len(g.Minefields))
	for id := range g.Minefields {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// DesignIDs returns all design ids in ascending order.
func (g *GameState) DesignIDs() []DesignID {
	ids := make([]DesignID, 0, len(g.Designs))
	for id := range g.Designs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
