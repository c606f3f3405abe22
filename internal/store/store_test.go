package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tlannick/starlane/internal/game"
)

func testState() *game.GameState {
	tg := game.NewTestGame(
		game.WithSeed(11),
		game.WithEmpire(1, "Archive"),
		game.WithDesign(game.ScoutDesign(1, 1)),
		game.WithOwnedStar(1, "Vault", 0, 0, 1, 50_000),
		game.WithFleet(1, 1, 0, 0, game.ShipToken{Design: 1, Quantity: 2}),
	)
	return tg.State
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTurnArchiveRoundTrip(t *testing.T) {
	s := openTestStore(t)
	state := testState()

	id, err := s.CreateGame("round trip", state)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	wantHash, err := game.StateHash(state)
	if err != nil {
		t.Fatalf("StateHash: %v", err)
	}
	loaded, err := s.LoadTurn(id, state.Turn)
	if err != nil {
		t.Fatalf("LoadTurn: %v", err)
	}
	gotHash, err := game.StateHash(loaded)
	if err != nil {
		t.Fatalf("StateHash loaded: %v", err)
	}
	if gotHash != wantHash {
		t.Errorf("restored snapshot hashes %s, archived %s", gotHash, wantHash)
	}
}

func TestLatestTurnTracksArchive(t *testing.T) {
	s := openTestStore(t)
	state := testState()
	id, err := s.CreateGame("latest", state)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	gen := game.NewTurnGenerator(zerolog.Nop())
	for i := 0; i < 3; i++ {
		res, err := gen.GenerateTurn(state, nil)
		if err != nil {
			t.Fatalf("GenerateTurn: %v", err)
		}
		state = res.State
		if err := s.SaveTurn(id, state); err != nil {
			t.Fatalf("SaveTurn: %v", err)
		}
	}

	latest, err := s.LatestTurn(id)
	if err != nil {
		t.Fatalf("LatestTurn: %v", err)
	}
	if latest != 4 {
		t.Errorf("latest turn = %d, want 4", latest)
	}
}

func TestLoadMissingTurn(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateGame("missing", testState())
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := s.LoadTurn(id, 42); err == nil {
		t.Fatal("loading an unarchived turn succeeded")
	}
}

func TestBattleReportArchive(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateGame("battles", testState())
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	reports := []*game.BattleReport{
		{Turn: 2, Engine: game.BattleEngineStandard, Rounds: 3,
			Outcomes: []game.StackOutcome{{Stack: 0, Fleet: 1, Empire: 1, Design: 1, Ships: 2}}},
		{Turn: 2, Engine: game.BattleEngineStandard, Rounds: 16, Draw: true},
	}
	if err := s.SaveBattleReports(id, reports); err != nil {
		t.Fatalf("SaveBattleReports: %v", err)
	}

	loaded, err := s.BattleReports(id, 2)
	if err != nil {
		t.Fatalf("BattleReports: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d reports, want 2", len(loaded))
	}
	if loaded[0].Rounds != 3 || !loaded[1].Draw {
		t.Errorf("reports came back reordered or mangled: %+v", loaded)
	}
	if len(loaded[0].Outcomes) != 1 || loaded[0].Outcomes[0].Ships != 2 {
		t.Errorf("outcomes lost in the archive: %+v", loaded[0].Outcomes)
	}
}
