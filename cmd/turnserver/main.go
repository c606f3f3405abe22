package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tlannick/starlane/internal/config"
	"github.com/tlannick/starlane/internal/game"
	"github.com/tlannick/starlane/internal/store"
)

type runStats struct {
	runIndex int
	seed     int64

	turnsRun     int
	battles      int
	draws        int
	messages     int
	rejected     int
	invariants   int
	firstBattle  int // turn of the first battle, 0 for none
	finalHash    string
	verifiedHash bool // same-seed replay matched
}

func main() {
	var runs int
	var turns int
	var seedBase int64
	var seedStep int64
	var scenario string
	var engineName string
	var configDir string
	var archive bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless game runs")
	flag.IntVar(&turns, "turns", 50, "turns per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "game seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "border-clash", "scenario name")
	flag.StringVar(&engineName, "engine", "", "battle engine override (standard or advanced)")
	flag.StringVar(&configDir, "config-dir", ".", "directory holding starlane.cfg.json")
	flag.BoolVar(&archive, "archive", false, "archive snapshots and battle reports to the store")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	if err := config.Load(configDir); err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if runs <= 0 || turns <= 0 {
		log.Fatal().Msg("-runs and -turns must be > 0")
	}
	if scenario != "border-clash" {
		log.Fatal().Str("scenario", scenario).Msg("unsupported scenario (supported: border-clash)")
	}
	rules := config.Rules()
	if engineName != "" {
		rules.BattleEngine = engineName
	}

	var db *store.Store
	if archive {
		var err error
		db, err = store.Open(config.GetString("store.path"), log)
		if err != nil {
			log.Fatal().Err(err).Msg("open store")
		}
		defer db.Close()
	}

	fmt.Printf("=== Headless Turn Report ===\n")
	fmt.Printf("scenario=%s engine=%s runs=%d turns=%d seed_base=%d seed_step=%d\n\n",
		scenario, rules.BattleEngine, runs, turns, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runBorderClash(log, db, rules, i+1, seed, turns)
		all = append(all, stats)
		printRun(stats)
	}
	printAggregate(all)
}

// borderClashGame builds the stock scenario: two empires settled across a
// contested corridor, warships converging on the midpoint, a minefield in
// the lane and a seedship racing for the unclaimed star.
func borderClashGame(rules game.Rules, seed int64) *game.TestGame {
	return game.NewTestGame(
		game.WithRules(rules),
		game.WithSeed(seed),
		game.WithEmpire(1, "Altair Combine"),
		game.WithEmpire(2, "Vega Compact"),
		game.WithDesign(game.ScoutDesign(1, 1)),
		game.WithDesign(game.FrigateDesign(2, 1)),
		game.WithDesign(game.ColonyShipDesign(3, 1)),
		game.WithDesign(game.FrigateDesign(4, 2)),
		game.WithDesign(game.MineLayerDesign(5, 2)),
		game.WithDesign(game.BomberDesign(6, 2)),
		game.WithOwnedStar(1, "Altair", 0, 0, 1, 250_000),
		game.WithOwnedStar(2, "Vega", 120, 0, 2, 250_000),
		game.WithStar(3, "Midway", 60, 0),
		game.WithStar(4, "Reach", 60, 40),
		game.WithFleet(1, 1, 0, 0, game.ShipToken{Design: 2, Quantity: 4}),
		game.WithFleet(2, 1, 0, 0, game.ShipToken{Design: 3, Quantity: 1}),
		game.WithFleet(3, 1, 0, 0, game.ShipToken{Design: 1, Quantity: 1}),
		game.WithFleet(4, 2, 120, 0, game.ShipToken{Design: 4, Quantity: 3}),
		game.WithFleet(5, 2, 120, 0, game.ShipToken{Design: 5, Quantity: 1}),
		game.WithFleet(6, 2, 120, 0, game.ShipToken{Design: 6, Quantity: 1}),
		game.WithCargo(2, game.Cargo{Colonists: 200}),
		game.WithWaypoint(1, game.Waypoint{TargetStar: 3, Warp: 6}),
		game.WithWaypoint(2, game.Waypoint{TargetStar: 4, Warp: 4, Task: game.TaskColonize}),
		game.WithWaypoint(3, game.Waypoint{TargetStar: 2, Warp: 8}),
		game.WithWaypoint(4, game.Waypoint{TargetStar: 3, Warp: 6}),
		game.WithWaypoint(5, game.Waypoint{TargetStar: 3, Warp: 5, Task: game.TaskLayMines}),
		game.WithWaypoint(6, game.Waypoint{TargetStar: 1, Warp: 6}),
	)
}

func runBorderClash(log zerolog.Logger, db *store.Store, rules game.Rules, runIndex int, seed int64, turns int) runStats {
	stats := runStats{runIndex: runIndex, seed: seed}

	tg := borderClashGame(rules, seed)
	tg.Gen.Log = log.With().Int("run", runIndex).Logger()

	var gameID string
	if db != nil {
		id, err := db.CreateGame(fmt.Sprintf("border-clash run %d", runIndex), tg.State)
		if err != nil {
			log.Fatal().Err(err).Msg("create game")
		}
		gameID = id
	}

	for turn := 0; turn < turns; turn++ {
		if err := tg.RunTurn(); err != nil {
			log.Fatal().Err(err).Int("run", runIndex).Msg("turn generation failed")
		}
		stats.turnsRun++
		if db != nil {
			if err := db.SaveTurn(gameID, tg.State); err != nil {
				log.Fatal().Err(err).Msg("archive turn")
			}
		}
	}
	stats.battles = len(tg.Reports)
	for _, r := range tg.Reports {
		if r.Draw {
			stats.draws++
		}
		if stats.firstBattle == 0 {
			stats.firstBattle = r.Turn
		}
	}
	stats.messages = len(tg.Messages)
	for _, m := range tg.Messages {
		switch m.Kind {
		case game.MessageCommandRejected:
			stats.rejected++
		case game.MessageInvariant:
			stats.invariants++
		}
	}
	if db != nil {
		if err := db.SaveBattleReports(gameID, tg.Reports); err != nil {
			log.Fatal().Err(err).Msg("archive battle reports")
		}
	}

	hash, err := game.StateHash(tg.State)
	if err != nil {
		log.Fatal().Err(err).Msg("hash final state")
	}
	stats.finalHash = hash

	// Replay the same seed and confirm the final hash matches; a mismatch
	// is a determinism bug worth stopping the whole report for.
	replay := borderClashGame(rules, seed)
	if err := replay.RunTurns(turns); err != nil {
		log.Fatal().Err(err).Msg("replay failed")
	}
	replayHash, err := game.StateHash(replay.State)
	if err != nil {
		log.Fatal().Err(err).Msg("hash replay state")
	}
	stats.verifiedHash = replayHash == hash
	if !stats.verifiedHash {
		log.Error().
			Int64("seed", seed).
			Str("hash", hash).Str("replay", replayHash).
			Msg("replay hash mismatch")
	}
	return stats
}

func printRun(s runStats) {
	verdict := "verified"
	if !s.verifiedHash {
		verdict = "MISMATCH"
	}
	fmt.Printf("--- run %d (seed %d) ---\n", s.runIndex, s.seed)
	fmt.Printf("turns=%d battles=%d draws=%d first_battle_turn=%d\n",
		s.turnsRun, s.battles, s.draws, s.firstBattle)
	fmt.Printf("messages=%d rejected=%d invariant_clamps=%d\n",
		s.messages, s.rejected, s.invariants)
	fmt.Printf("final_hash=%s replay=%s\n\n", s.finalHash[:16], verdict)
}

func printAggregate(all []runStats) {
	battles, draws, mismatches := 0, 0, 0
	for _, s := range all {
		battles += s.battles
		draws += s.draws
		if !s.verifiedHash {
			mismatches++
		}
	}
	fmt.Printf("=== Aggregate (%d runs) ===\n", len(all))
	fmt.Printf("battles=%d draws=%d replay_mismatches=%d\n", battles, draws, mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}
