package game

// Rules is the ruleset configuration a game is created with. It is part of
// the snapshot so a replayed game always runs under the rules it started
// with, even if server defaults change later.
type Rules struct {
	// BattleEngine selects the tactical resolver for every battle of the
	// game: "standard" (grid) or "advanced" (continuous). Never mixed
	// within a game, let alone a battle.
	BattleEngine string `json:"battleEngine"`

	// Standard engine board and round structure.
	BoardWidth       int `json:"boardWidth"`
	BoardHeight      int `json:"boardHeight"`
	StandardRoundCap int `json:"standardRoundCap"`

	// Advanced engine space. Scale is internal battle units per board cell.
	AdvancedRoundCap int     `json:"advancedRoundCap"`
	AdvancedScale    float64 `json:"advancedScale"`

	// Economy.
	ResourcesPerColonist int     `json:"resourcesPerColonist"` // colonists (hundreds) per resource
	ResourcesPerFactory  int     `json:"resourcesPerFactory"`  // factories per extra resource
	MineOutput           float64 `json:"mineOutput"`           // kT per mine at 100% concentration
	MaxPopulation        int     `json:"maxPopulation"`        // at 100% habitability
	GrowthRate           float64 `json:"growthRate"`           // fractional growth at 100% habitability
	ScrapRatio           float64 `json:"scrapRatio"`           // minerals recovered from scrapped hulls

	// Research. Cost of level n+1 doubles from level n.
	ResearchBaseCost int `json:"researchBaseCost"`

	// Bombing. Defense coverage per installation and its hard cap.
	DefenseCoverage    float64 `json:"defenseCoverage"`
	MaxDefenseCoverage float64 `json:"maxDefenseCoverage"`

	// Minefields.
	MineDecayRate    float64 `json:"mineDecayRate"`    // fraction lost per turn
	MineStrikeChance float64 `json:"mineStrikeChance"` // per-warp-factor chance of a strike in a hostile field
	MineDamage       int     `json:"mineDamage"`       // armor damage per strike, spread across tokens
	MineSafeWarp     int     `json:"mineSafeWarp"`     // at or below this warp a field is never triggered
}

// DefaultRules returns the standard ruleset.
func DefaultRules() Rules {
	return Rules{
		BattleEngine:     BattleEngineStandard,
		BoardWidth:       10,
		BoardHeight:      10,
		StandardRoundCap: 16,
		AdvancedRoundCap: 64,
		AdvancedScale:    20,

		ResourcesPerColonist: 10,
		ResourcesPerFactory:  1,
		MineOutput:           0.1,
		MaxPopulation:        1_000_000,
		GrowthRate:           0.10,
		ScrapRatio:           1.0 / 3.0,

		ResearchBaseCost: 50,

		DefenseCoverage:    0.01,
		MaxDefenseCoverage: 0.75,

		MineDecayRate:    0.02,
		MineStrikeChance: 0.003,
		MineDamage:       100,
		MineSafeWarp:     4,
	}
}

// Battle engine names accepted by Rules.BattleEngine.
const (
	BattleEngineStandard = "standard"
	BattleEngineAdvanced = "advanced"
)
