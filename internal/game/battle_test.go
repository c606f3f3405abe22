package game

import (
	"bytes"
	"encoding/json"
	"testing"
)

// lanceDesign and lineDesign are the two sides of the reference engagement
// used across the battle tests: five fast, unshielded attackers against
// three slower, shielded defenders. Both carry the same 40-power weapon
// with enough range to cover the whole board, so the fight is pure
// initiative and damage arithmetic with no maneuvering noise.
func lanceDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Lance",
		Mass: 60, Armor: 100, Initiative: 10, Movement: 4,
		Cost: 50, MineralCost: Mineral{20, 10, 5},
		Weapons: []WeaponSlot{{Power: 40, Range: 10, Count: 1}},
	}
}

func lineDesign(id DesignID, owner EmpireID) ShipDesign {
	return ShipDesign{
		ID: id, Owner: owner, Name: "Bulwark",
		Mass: 90, Armor: 150, Shields: 50, Initiative: 5, Movement: 2,
		Cost: 80, MineralCost: Mineral{30, 20, 10},
		Weapons: []WeaponSlot{{Power: 40, Range: 10, Count: 1}},
	}
}

// lineBattleSetup builds the reference engagement. Fleet and empire ids are
// parameters so the fairness test can mirror them.
func lineBattleSetup(lanceEmpire, lineEmpire EmpireID, lanceFleet, lineFleet FleetID, rules Rules) *BattleSetup {
	lance := lanceDesign(1, lanceEmpire)
	line := lineDesign(2, lineEmpire)
	fleets := []*Fleet{
		{ID: lanceFleet, Owner: lanceEmpire, Tokens: []ShipToken{{Design: 1, Quantity: 5}}},
		{ID: lineFleet, Owner: lineEmpire, Tokens: []ShipToken{{Design: 2, Quantity: 3}}},
	}
	if fleets[0].ID > fleets[1].ID {
		fleets[0], fleets[1] = fleets[1], fleets[0]
	}
	return &BattleSetup{
		Turn:     1,
		Location: Vector{40, 40},
		Fleets:   fleets,
		Designs:  map[DesignID]*ShipDesign{1: &lance, 2: &line},
		Rules:    rules,
	}
}

func survivorsByDesign(r *BattleReport) map[DesignID]int {
	out := map[DesignID]int{}
	for _, o := range r.Outcomes {
		out[o.Design] += o.Ships
	}
	return out
}

func TestAbsorbDamage(t *testing.T) {
	tests := []struct {
		name       string
		ships      int
		armor      int
		shields    int
		damage     int
		wantShield int
		wantArmor  int
		wantKills  int
		wantShips  int
	}{
		{"all soaked by shields", 3, 100, 200, 150, 150, 0, 0, 3},
		{"exact shield strip", 3, 100, 150, 150, 150, 0, 0, 3},
		{"spillover kills one", 2, 100, 50, 180, 50, 130, 1, 1},
		{"no shields two kills", 4, 100, 0, 250, 0, 250, 2, 2},
		{"overkill caps at stack size", 2, 100, 0, 1000, 0, 1000, 2, 0},
		{"zero armor hull dies to spillover", 5, 0, 10, 20, 10, 10, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &ShipDesign{ID: 1, Armor: tt.armor}
			st := &Stack{Design: d, Ships: tt.ships, Shields: tt.shields}
			gotShield, gotArmor, gotKills := st.absorbDamage(tt.damage)
			if gotShield != tt.wantShield || gotArmor != tt.wantArmor || gotKills != tt.wantKills {
				t.Errorf("absorbDamage(%d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.damage, gotShield, gotArmor, gotKills,
					tt.wantShield, tt.wantArmor, tt.wantKills)
			}
			if st.Ships != tt.wantShips {
				t.Errorf("ships after damage = %d, want %d", st.Ships, tt.wantShips)
			}
		})
	}
}

func TestAbsorbDamageShieldsBeforeArmor(t *testing.T) {
	// Armor damage must be exactly zero until shields are fully stripped,
	// no matter how the volleys are sliced.
	d := &ShipDesign{ID: 1, Armor: 500}
	st := &Stack{Design: d, Ships: 1, Shields: 100}
	for i := 0; i < 4; i++ {
		_, armorDmg, _ := st.absorbDamage(25)
		if armorDmg != 0 {
			t.Fatalf("volley %d leaked %d armor damage with %d shields still up",
				i+1, armorDmg, st.Shields+25)
		}
	}
	if st.Shields != 0 {
		t.Fatalf("shields = %d after exactly-depleting volleys, want 0", st.Shields)
	}
	if _, armorDmg, _ := st.absorbDamage(25); armorDmg != 25 {
		t.Errorf("first post-shield volley dealt %d armor damage, want 25", armorDmg)
	}
}

// --- Scenario: Lance line battle ---

func TestScenario_LineBattle(t *testing.T) {
	t.Log("=== TestScenario_LineBattle ===")
	t.Log("--- 5 Lances (armor 100, init 10) vs 3 Bulwarks (armor 150, shields 50, init 5) ---")

	setup := lineBattleSetup(1, 2, 1, 2, DefaultRules())
	report, err := (&StandardBattleEngine{}).Resolve(setup)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, s := range report.Steps {
		t.Logf("R%d P%d %s stack=%d target=%d dmg=%d/%d kills=%d",
			s.Round, s.Phase, s.Kind, s.Stack, s.Target, s.ShieldDamage, s.ArmorDamage, s.ShipsKilled)
	}

	if report.Draw {
		t.Fatal("battle ended in a draw; expected the Lances to win")
	}
	surv := report.SurvivorsByEmpire()
	if surv[1] != 3 || surv[2] != 0 {
		t.Errorf("survivors = %d vs %d, want 3 vs 0", surv[1], surv[2])
	}
	if report.Rounds != 2 {
		t.Errorf("rounds = %d, want 2", report.Rounds)
	}

	// Higher initiative fires first: the opening fire step belongs to the
	// Lance stack.
	var firstFire *BattleStep
	for i := range report.Steps {
		if report.Steps[i].Kind == BattleStepFire {
			firstFire = &report.Steps[i]
			break
		}
	}
	if firstFire == nil {
		t.Fatal("no fire steps recorded")
	}
	if firstFire.Stack != 0 {
		t.Errorf("first volley came from stack %d, want stack 0 (initiative 10)", firstFire.Stack)
	}

	// The Bulwarks' pooled shields (150) soak the whole first volley's
	// shield phase before a single point of armor damage lands.
	if firstFire.ShieldDamage != 150 || firstFire.ArmorDamage != 50 || firstFire.ShipsKilled != 0 {
		t.Errorf("opening volley = shields %d, armor %d, kills %d; want 150, 50, 0",
			firstFire.ShieldDamage, firstFire.ArmorDamage, firstFire.ShipsKilled)
	}
}

func TestScenario_LineBattleFairness(t *testing.T) {
	t.Log("=== TestScenario_LineBattleFairness ===")
	t.Log("--- Same engagement with fleet and empire ids mirrored ---")

	a, err := (&StandardBattleEngine{}).Resolve(lineBattleSetup(1, 2, 1, 2, DefaultRules()))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, err := (&StandardBattleEngine{}).Resolve(lineBattleSetup(2, 1, 2, 1, DefaultRules()))
	if err != nil {
		t.Fatalf("Resolve mirrored: %v", err)
	}

	sa, sb := survivorsByDesign(a), survivorsByDesign(b)
	for id, n := range sa {
		if sb[id] != n {
			t.Errorf("design %d: %d survivors vs %d mirrored; id assignment changed the outcome", id, n, sb[id])
		}
	}
	if a.Rounds != b.Rounds {
		t.Errorf("rounds %d vs %d mirrored", a.Rounds, b.Rounds)
	}
}

func TestStandardRoundCapDraw(t *testing.T) {
	// Two stacks too tough to hurt each other stalemate at the round cap.
	tough := func(id DesignID, owner EmpireID) ShipDesign {
		return ShipDesign{
			ID: id, Owner: owner, Name: "Monolith",
			Mass: 500, Armor: 100000, Initiative: 1, Cost: 100,
			Weapons: []WeaponSlot{{Power: 1, Range: 10, Count: 1}},
		}
	}
	d1, d2 := tough(1, 1), tough(2, 2)
	rules := DefaultRules()
	setup := &BattleSetup{
		Turn:     1,
		Location: Vector{0, 0},
		Fleets: []*Fleet{
			{ID: 1, Owner: 1, Tokens: []ShipToken{{Design: 1, Quantity: 1}}},
			{ID: 2, Owner: 2, Tokens: []ShipToken{{Design: 2, Quantity: 1}}},
		},
		Designs: map[DesignID]*ShipDesign{1: &d1, 2: &d2},
		Rules:   rules,
	}
	report, err := (&StandardBattleEngine{}).Resolve(setup)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !report.Draw {
		t.Fatal("expected a draw at the round cap")
	}
	if report.Rounds != rules.StandardRoundCap {
		t.Errorf("rounds = %d, want the cap %d", report.Rounds, rules.StandardRoundCap)
	}
	last := report.Steps[len(report.Steps)-1]
	if last.Kind != BattleStepDraw {
		t.Errorf("last step kind = %s, want draw", last.Kind)
	}
	for _, o := range report.Outcomes {
		if o.Ships != 1 {
			t.Errorf("stack %d lost ships in a stalemate: %d survive", o.Stack, o.Ships)
		}
	}
}

func TestDegenerateBattles(t *testing.T) {
	frigate := FrigateDesign(1, 1)
	scout := ScoutDesign(2, 2)
	designs := map[DesignID]*ShipDesign{1: &frigate, 2: &scout}

	tests := []struct {
		name   string
		fleets []*Fleet
	}{
		{"no fleets", nil},
		{"single empire", []*Fleet{
			{ID: 1, Owner: 1, Tokens: []ShipToken{{Design: 1, Quantity: 3}}},
		}},
		{"nobody armed", []*Fleet{
			{ID: 1, Owner: 1, Tokens: []ShipToken{{Design: 2, Quantity: 1}}},
			{ID: 2, Owner: 2, Tokens: []ShipToken{{Design: 2, Quantity: 1}}},
		}},
		{"hold fire on both sides", []*Fleet{
			{ID: 1, Owner: 1, Plan: BattlePlan{Victims: TargetNone}, Tokens: []ShipToken{{Design: 1, Quantity: 3}}},
			{ID: 2, Owner: 2, Plan: BattlePlan{Victims: TargetNone}, Tokens: []ShipToken{{Design: 1, Quantity: 3}}},
		}},
	}
	for _, engineName := range []string{BattleEngineStandard, BattleEngineAdvanced} {
		rules := DefaultRules()
		rules.BattleEngine = engineName
		engine, err := NewBattleEngine(rules)
		if err != nil {
			t.Fatalf("NewBattleEngine(%s): %v", engineName, err)
		}
		for _, tt := range tests {
			t.Run(engineName+"/"+tt.name, func(t *testing.T) {
				report, err := engine.Resolve(&BattleSetup{
					Turn: 1, Fleets: tt.fleets, Designs: designs, Rules: rules,
				})
				if err != nil {
					t.Fatalf("Resolve: %v", err)
				}
				if !report.Empty() {
					t.Errorf("degenerate input produced a non-empty report: %d rounds, %d steps",
						report.Rounds, len(report.Steps))
				}
			})
		}
	}
}

func TestBattleResolutionDeterministic(t *testing.T) {
	for _, engineName := range []string{BattleEngineStandard, BattleEngineAdvanced} {
		rules := DefaultRules()
		rules.BattleEngine = engineName
		engine, err := NewBattleEngine(rules)
		if err != nil {
			t.Fatalf("NewBattleEngine(%s): %v", engineName, err)
		}
		a, err := engine.Resolve(lineBattleSetup(1, 2, 1, 2, rules))
		if err != nil {
			t.Fatalf("first Resolve: %v", err)
		}
		b, err := engine.Resolve(lineBattleSetup(1, 2, 1, 2, rules))
		if err != nil {
			t.Fatalf("second Resolve: %v", err)
		}
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if !bytes.Equal(ja, jb) {
			t.Errorf("%s engine produced different reports for identical setups", engineName)
		}
	}
}

// --- Scenario: Advanced engine, same core logic ---

func TestScenario_AdvancedLineBattle(t *testing.T) {
	t.Log("=== TestScenario_AdvancedLineBattle ===")
	t.Log("--- Reference engagement under the continuous-space engine ---")

	rules := DefaultRules()
	rules.BattleEngine = BattleEngineAdvanced
	setup := lineBattleSetup(1, 2, 1, 2, rules)
	report, err := (&AdvancedBattleEngine{}).Resolve(setup)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if report.Engine != BattleEngineAdvanced {
		t.Errorf("report engine = %q, want %q", report.Engine, BattleEngineAdvanced)
	}
	if report.Draw {
		t.Fatal("advanced engine ended the reference engagement in a draw")
	}
	// One volley pass per round instead of three, so the same arithmetic
	// takes four rounds instead of two. Terminal survivors are identical to
	// the grid engine's: the shared targeting and damage core guarantees it.
	surv := report.SurvivorsByEmpire()
	if surv[1] != 3 || surv[2] != 0 {
		t.Errorf("survivors = %d vs %d, want 3 vs 0", surv[1], surv[2])
	}
	if report.Rounds != 4 {
		t.Errorf("rounds = %d, want 4", report.Rounds)
	}
}

// --- Scenario: Unarmed stack flees and withdraws ---

func TestScenario_UnarmedFlees(t *testing.T) {
	t.Log("=== TestScenario_UnarmedFlees ===")
	t.Log("--- One armed hunter vs one unarmed scout; scout must run, then jump clear ---")

	hunter := FrigateDesign(1, 1)
	scout := ScoutDesign(2, 2)
	setup := &BattleSetup{
		Turn:     1,
		Location: Vector{10, 10},
		Fleets: []*Fleet{
			{ID: 1, Owner: 1, Tokens: []ShipToken{{Design: 1, Quantity: 1}}},
			{ID: 2, Owner: 2, Tokens: []ShipToken{{Design: 2, Quantity: 1}}},
		},
		Designs: map[DesignID]*ShipDesign{1: &hunter, 2: &scout},
		Rules:   DefaultRules(),
	}
	report, err := (&StandardBattleEngine{}).Resolve(setup)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var withdrew bool
	for _, s := range report.Steps {
		if s.Kind == BattleStepWithdraw && s.Stack == 1 {
			withdrew = true
		}
	}
	if !withdrew {
		t.Error("scout never withdrew from the battle")
	}
	for _, o := range report.Outcomes {
		if o.Design == 2 {
			if !o.Withdrew {
				t.Error("scout outcome not marked withdrawn")
			}
			if o.Ships != 1 {
				t.Errorf("scout lost ships while fleeing out of weapon range: %d survive", o.Ships)
			}
		}
	}
	if report.Draw {
		t.Error("withdrawal should resolve the battle, not draw it")
	}
}

func TestTargetSelectionPrefersSoftExpensiveStacks(t *testing.T) {
	// Attractiveness is cost over defenses: a pricey, battered stack draws
	// fire over a cheap, healthy one.
	shooter := ShipDesign{ID: 1, Owner: 1, Armor: 100, Weapons: []WeaponSlot{{Power: 10, Range: 10, Count: 1}}}
	cheap := ShipDesign{ID: 2, Owner: 2, Armor: 100, Cost: 10}
	pricey := ShipDesign{ID: 3, Owner: 2, Armor: 100, Cost: 200}
	setup := &BattleSetup{
		Turn: 1,
		Fleets: []*Fleet{
			{ID: 1, Owner: 1, Tokens: []ShipToken{{Design: 1, Quantity: 1}}},
			{ID: 2, Owner: 2, Tokens: []ShipToken{{Design: 2, Quantity: 1}, {Design: 3, Quantity: 1}}},
		},
		Designs: map[DesignID]*ShipDesign{1: &shooter, 2: &cheap, 3: &pricey},
		Rules:   DefaultRules(),
	}
	a := newBattleArena(setup, BattleEngineStandard)
	target := a.selectTarget(a.stacks[0], nil)
	if target == nil {
		t.Fatal("no target selected")
	}
	if target.Design.ID != 3 {
		t.Errorf("selected design %d, want the expensive design 3", target.Design.ID)
	}
}

func TestTargetVictimsFilter(t *testing.T) {
	armed := FrigateDesign(1, 2)
	unarmed := ScoutDesign(2, 2)
	shooter := FrigateDesign(3, 1)
	tests := []struct {
		victims TargetPriority
		wantID  DesignID // 0 for no target at all
	}{
		{TargetAny, 2}, // the scout is nearly undefended, so it scores higher
		{TargetArmed, 1},
		{TargetUnarmed, 2},
		{TargetStarbase, 0},
		{TargetNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.victims.String(), func(t *testing.T) {
			setup := &BattleSetup{
				Turn: 1,
				Fleets: []*Fleet{
					{ID: 1, Owner: 1, Plan: BattlePlan{Victims: tt.victims},
						Tokens: []ShipToken{{Design: 3, Quantity: 1}}},
					{ID: 2, Owner: 2, Tokens: []ShipToken{{Design: 1, Quantity: 1}, {Design: 2, Quantity: 1}}},
				},
				Designs: map[DesignID]*ShipDesign{1: &armed, 2: &unarmed, 3: &shooter},
				Rules:   DefaultRules(),
			}
			a := newBattleArena(setup, BattleEngineStandard)
			target := a.selectTarget(a.stacks[0], nil)
			if tt.wantID == 0 {
				if target != nil {
					t.Errorf("expected no target, got design %d", target.Design.ID)
				}
				return
			}
			if target == nil {
				t.Fatalf("expected design %d, got no target", tt.wantID)
			}
			if target.Design.ID != tt.wantID {
				t.Errorf("selected design %d, want %d", target.Design.ID, tt.wantID)
			}
		})
	}
}
