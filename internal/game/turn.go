package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
)

// TurnResult is everything one completed turn hands to the persistence,
// transport and rendering collaborators.
type TurnResult struct {
	State    *GameState
	Messages []Message
	Reports  []*BattleReport
	Trace    *TurnLog
}

// TurnGenerator sequences the turn steps over one exclusively-owned snapshot.
// Processing is strictly single-threaded: each step, and each battle inside
// the battle step, runs to completion before the next begins.
type TurnGenerator struct {
	Log zerolog.Logger
	// VerboseTrace makes the TurnLog record routine per-entity entries.
	VerboseTrace bool
}

// NewTurnGenerator returns a generator logging through the given logger.
func NewTurnGenerator(log zerolog.Logger) *TurnGenerator {
	return &TurnGenerator{Log: log}
}

// turnContext is the shared mutable state threaded through every step of one
// turn. It replaces any ambient "server data" global: steps receive it
// explicitly and own it for the duration of their call.
type turnContext struct {
	state    *GameState
	commands []Command
	rules    Rules
	messages *Messenger
	reports  []*BattleReport
	trace    *TurnLog
	log      zerolog.Logger
	rng      *rand.Rand
	engine   BattleEngine
	built    map[buildKey]FleetID // fleets spawned by this turn's production
}

func (tc *turnContext) designs() map[DesignID]*ShipDesign { return tc.state.Designs }

// clampMin enforces a lower bound on a value in place. Violations clamp,
// log a diagnostic and emit an invariant message; they never abort the turn.
func (tc *turnContext) clampMin(v *int, min int, owner EmpireID, step, subject, what string) {
	if *v >= min {
		return
	}
	tc.log.Warn().
		Str("step", step).Str("subject", subject).Str("what", what).
		Int("value", *v).Int("min", min).
		Msg("invariant violation clamped")
	tc.trace.Add(tc.state.Turn, step, subject, "clamp",
		fmt.Sprintf("%s %d below %d", what, *v, min), float64(*v))
	if owner != EmpireNone {
		tc.messages.Addf(owner, MessageInvariant, "%s: %s corrected to %d", subject, what, min)
	}
	*v = min
}

// turnStep is one ordered phase of the pipeline: a named transformation of
// the shared context. Steps are invoked in the fixed order below; no step
// may observe a later step's output.
type turnStep struct {
	name string
	run  func(*turnContext)
}

// turnSteps is the fixed total order of the pipeline. The order is itself a
// correctness contract: bombing resolves before colonization so a star
// cannot be colonized and then bombed out of order within one turn, and
// battles settle before movement so fleets never move away from an
// engagement they were caught in.
var turnSteps = []turnStep{
	{"commands", stepApplyCommands},
	{"scan", stepScan},
	{"bombing", stepBombing},
	{"colonize", stepColonize},
	{"minefields", stepMinefields},
	{"star-update", stepStarUpdate},
	{"battles", stepBattles},
	{"movement", stepMovement},
	{"scrap", stepScrap},
	{"cleanup", stepSplitMerge},
}

// GenerateTurn advances the galaxy by one turn: it applies the submitted
// commands and runs every step in fixed order against a working copy of the
// prior snapshot. On success the working copy is the next authoritative
// state. An internal fault (panic) in any step discards the whole working
// copy and returns an error; prior stays untouched and authoritative, and no
// partial turn ever escapes.
func (tg *TurnGenerator) GenerateTurn(prior *GameState, commands []Command) (result *TurnResult, err error) {
	work, cerr := CloneState(prior)
	if cerr != nil {
		return nil, fmt.Errorf("clone snapshot: %w", cerr)
	}
	engine, eerr := NewBattleEngine(work.Rules)
	if eerr != nil {
		return nil, eerr
	}

	tc := &turnContext{
		state:    work,
		commands: commands,
		rules:    work.Rules,
		messages: &Messenger{},
		trace:    NewTurnLog(tg.VerboseTrace),
		log:      tg.Log.With().Int("turn", work.Turn).Logger(),
		rng:      rand.New(rand.NewSource(work.Seed + int64(work.Turn))), // #nosec G404 -- simulation, not security
		engine:   engine,
		built:    map[buildKey]FleetID{},
	}

	defer func() {
		if r := recover(); r != nil {
			tg.Log.Error().
				Interface("fault", r).
				Int("turn", prior.Turn).
				Msg("internal fault during turn generation, snapshot discarded")
			result = nil
			err = fmt.Errorf("internal fault during turn %d: %v", prior.Turn, r)
		}
	}()

	for _, step := range turnSteps {
		tc.log.Debug().Str("step", step.name).Msg("running turn step")
		step.run(tc)
	}
	work.Turn++

	return &TurnResult{
		State:    work,
		Messages: tc.messages.All(),
		Reports:  tc.reports,
		Trace:    tc.trace,
	}, nil
}

// stepApplyCommands applies the validated command batches. Commands run in
// submission order; each is validated against the state produced by the
// commands before it, so a batch can split a fleet and then route the new
// fleet. A command failing validation is rejected whole, reported only to
// the submitting empire, and affects nothing else.
func stepApplyCommands(tc *turnContext) {
	for _, cmd := range tc.commands {
		if err := cmd.Validate(tc.state); err != nil {
			if !errors.Is(err, ErrInvalidCommand) {
				err = fmt.Errorf("%w: %v", ErrInvalidCommand, err)
			}
			tc.log.Warn().
				Int("empire", int(cmd.Empire())).
				Str("command", fmt.Sprintf("%T", cmd)).
				Err(err).
				Msg("command rejected")
			tc.messages.Addf(cmd.Empire(), MessageCommandRejected, "%v", err)
			tc.trace.Add(tc.state.Turn, "commands",
				fmt.Sprintf("empire:%d", cmd.Empire()), "rejected", err.Error(), 0)
			continue
		}
		cmd.Apply(tc.state)
		tc.trace.AddVerbose(tc.state.Turn, "commands",
			fmt.Sprintf("empire:%d", cmd.Empire()), "applied", fmt.Sprintf("%T", cmd), 0)
	}
}

func starSubject(id StarID) string   { return fmt.Sprintf("star:%d", id) }
func fleetSubject(id FleetID) string { return fmt.Sprintf("fleet:%d", id) }
func empireSubject(id EmpireID) string { return fmt.Sprintf("empire:%d", id) }
