package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TestGame is a headless simulation harness used by tests and the batch
// runner. It wraps a GameState and a TurnGenerator, supports deterministic
// seeding and keeps the structured TurnLog of every generated turn.
type TestGame struct {
	State    *GameState
	Gen      *TurnGenerator
	Messages []Message
	Reports  []*BattleReport
	Trace    *TurnLog

	rules   Rules
	seed    int64
	verbose bool
	logger  zerolog.Logger
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // rules, seed, logger, applied first
	simOptEntity                      // empires, designs, stars, fleets
	simOptPost                        // waypoints, plans, applied after entities exist
)

// SimOption is a builder function applied to a TestGame during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestGame)
}

// WithRules replaces the default ruleset.
func WithRules(r Rules) SimOption {
	return SimOption{simOptInfra, func(tg *TestGame) { tg.rules = r }}
}

// WithBattleEngine selects the battle engine by name.
func WithBattleEngine(name string) SimOption {
	return SimOption{simOptInfra, func(tg *TestGame) { tg.rules.BattleEngine = name }}
}

// WithSeed sets the game seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(tg *TestGame) { tg.seed = seed }}
}

// WithVerbose enables verbose TurnLog tracing.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(tg *TestGame) { tg.verbose = v }}
}

// WithLogger replaces the default no-op zerolog logger.
func WithLogger(log zerolog.Logger) SimOption {
	return SimOption{simOptInfra, func(tg *TestGame) { tg.logger = log }}
}

// WithEmpire adds an empire.
func WithEmpire(id EmpireID, name string) SimOption {
	return SimOption{simOptEntity, func(tg *TestGame) {
		tg.State.Empires[id] = &Empire{ID: id, Name: name, Intel: map[StarID]StarIntel{}}
	}}
}

// WithDesign registers a ship design.
func WithDesign(d ShipDesign) SimOption {
	return SimOption{simOptEntity, func(tg *TestGame) {
		dd := d
		tg.State.Designs[d.ID] = &dd
	}}
}

// WithStar adds an unowned star with mid-range habitability and mineral
// concentrations.
func WithStar(id StarID, name string, x, y float64) SimOption {
	return SimOption{simOptEntity, func(tg *TestGame) {
		tg.State.Stars[id] = &Star{
			ID:            id,
			Name:          name,
			Position:      Vector{x, y},
			Habitability:  70,
			Concentration: Mineral{60, 60, 60},
		}
	}}
}

// WithOwnedStar adds an inhabited star with a planetary scanner.
func WithOwnedStar(id StarID, name string, x, y float64, owner EmpireID, pop int) SimOption {
	return SimOption{simOptEntity, func(tg *TestGame) {
		tg.State.Stars[id] = &Star{
			ID:            id,
			Name:          name,
			Position:      Vector{x, y},
			Owner:         owner,
			Population:    pop,
			Habitability:  80,
			Minerals:      Mineral{200, 100, 150},
			Concentration: Mineral{70, 50, 60},
			Mines:         10,
			Factories:     10,
			ScanRange:     60,
		}
	}}
}

// WithFleet adds a fleet with full tanks for its tokens.
func WithFleet(id FleetID, owner EmpireID, x, y float64, tokens ...ShipToken) SimOption {
	return SimOption{simOptEntity, func(tg *TestGame) {
		f := &Fleet{
			ID:       id,
			Name:     fmt.Sprintf("Fleet #%d", id),
			Owner:    owner,
			Position: Vector{x, y},
			Tokens:   tokens,
		}
		f.Fuel = f.FuelCapacity(tg.State.Designs)
		tg.State.Fleets[id] = f
		if id >= tg.State.NextFleetID {
			tg.State.NextFleetID = id + 1
		}
	}}
}

// WithCargo loads cargo onto an existing fleet.
func WithCargo(id FleetID, cargo Cargo) SimOption {
	return SimOption{simOptPost, func(tg *TestGame) {
		if f := tg.State.Fleets[id]; f != nil {
			f.Cargo = cargo
		}
	}}
}

// WithWaypoint appends a waypoint to an existing fleet.
func WithWaypoint(id FleetID, wp Waypoint) SimOption {
	return SimOption{simOptPost, func(tg *TestGame) {
		f := tg.State.Fleets[id]
		if f == nil {
			return
		}
		if wp.TargetStar != 0 {
			if s := tg.State.Stars[wp.TargetStar]; s != nil {
				wp.Target = s.Position
			}
		}
		f.Waypoints = append(f.Waypoints, wp)
	}}
}

// WithPlan sets the battle plan of an existing fleet.
func WithPlan(id FleetID, plan BattlePlan) SimOption {
	return SimOption{simOptPost, func(tg *TestGame) {
		if f := tg.State.Fleets[id]; f != nil {
			f.Plan = plan
		}
	}}
}

// NewTestGame constructs a TestGame from the given options in three ordered
// passes: infrastructure (rules, seed, logger), then entities (empires,
// designs, stars, fleets), then post-wiring (waypoints, cargo, plans).
func NewTestGame(opts ...SimOption) *TestGame {
	tg := &TestGame{
		rules:  DefaultRules(),
		seed:   1,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(tg)
		}
	}
	tg.State = NewGameState(tg.rules, tg.seed)
	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(tg)
		}
	}
	for _, o := range opts {
		if o.kind == simOptPost {
			o.fn(tg)
		}
	}
	tg.Gen = NewTurnGenerator(tg.logger)
	tg.Gen.VerboseTrace = tg.verbose
	return tg
}

// RunTurn generates one turn with the given commands and adopts the result.
func (tg *TestGame) RunTurn(commands ...Command) error {
	res, err := tg.Gen.GenerateTurn(tg.State, commands)
	if err != nil {
		return err
	}
	tg.State = res.State
	tg.Messages = append(tg.Messages, res.Messages...)
	tg.Reports = append(tg.Reports, res.Reports...)
	tg.Trace = res.Trace
	return nil
}

// RunTurns generates n command-less turns.
func (tg *TestGame) RunTurns(n int) error {
	for i := 0; i < n; i++ {
		if err := tg.RunTurn(); err != nil {
			return err
		}
	}
	return nil
}

// --- Canned designs ---
// Shared fixtures for tests and the batch runner's scenarios. Stats are
// deliberately plain so scenario arithmetic stays easy to follow.

// PulseDrive is the workhorse test engine.
func PulseDrive() Engine {
	return Engine{
		Name:      "Pulse Drive 8",
		MaxWarp:   8,
		FuelUsage: [11]int{0, 0, 20, 40, 70, 100, 140, 190, 250, 330, 420},
	}
}

// ScoutDesign is fast, unarmed, long-eyed.
func ScoutDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Pathfinder",
		Mass: 20, Armor: 20, Initiative: 2, Movement: 6,
		Cost: 15, MineralCost: Mineral{8, 2, 4},
		FuelCapacity: 300, Engine: PulseDrive(), ScanRange: 100,
	}
}

// FrigateDesign is the baseline warship.
func FrigateDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Talon Frigate",
		Mass: 80, Armor: 100, Shields: 40, Initiative: 5, Movement: 4,
		Cost: 60, MineralCost: Mineral{30, 20, 10},
		FuelCapacity: 500, Engine: PulseDrive(),
		Weapons: []WeaponSlot{{Power: 20, Range: 2, Count: 2}},
	}
}

// ColonyShipDesign hauls colonists and carries the colonization module.
func ColonyShipDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Seedship",
		Mass: 120, Armor: 40, Initiative: 1, Movement: 2,
		Cost: 80, MineralCost: Mineral{40, 10, 30},
		FuelCapacity: 800, CargoCapacity: 250, Engine: PulseDrive(),
		Colonizer: true,
	}
}

// BomberDesign carries orbital bombs and nothing else.
func BomberDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Hammerfall Bomber",
		Mass: 150, Armor: 120, Shields: 20, Initiative: 3, Movement: 3,
		Cost: 100, MineralCost: Mineral{50, 40, 20},
		FuelCapacity: 600, Engine: PulseDrive(),
		BombPower: 4000,
	}
}

// MineLayerDesign seeds minefields.
func MineLayerDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Spinner",
		Mass: 90, Armor: 60, Initiative: 1, Movement: 3,
		Cost: 50, MineralCost: Mineral{20, 30, 10},
		FuelCapacity: 400, Engine: PulseDrive(),
		MineLayRate: 40,
	}
}

// StarbaseDesign anchors a star: immobile, tough, heavily armed.
func StarbaseDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Bastion Station",
		Mass: 500, Armor: 500, Shields: 300, Initiative: 8,
		Cost: 400, MineralCost: Mineral{200, 150, 100},
		Weapons:  []WeaponSlot{{Power: 40, Range: 3, Count: 4}},
		Starbase: true,
	}
}
