// Package session drives one battle from typed player commands. It owns
// everything the engine leaves to its caller: parsing, the MP and
// inventory gates, the inventory itself, rewards on victory, and replay
// transcripts. The terminal and Bubble Tea front ends both sit on top of it.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/nathoo/fraycore/engine"
	"github.com/nathoo/fraycore/engine/parser"
	"github.com/nathoo/fraycore/engine/replay"
	"github.com/nathoo/fraycore/engine/rewards"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// lootSalt separates the loot stream from the battle stream, so rolling
// rewards never shifts the recorded RNG position.
const lootSalt = 0x5eed10

var (
	ErrNothingToRepeat = errors.New("nothing to repeat")
	ErrEmptyCommand    = errors.New("say what?")
)

// Session is one battle plus the caller-side state around it.
type Session struct {
	Defs      *state.Defs
	Battle    *engine.Battle
	RNG       *engine.RNG
	Inventory map[string]int
	Rewards   *types.Rewards // set once the battle is won

	start  map[string]int
	last   types.Intent
	logger *zap.Logger
}

// Turn is everything one command produced, ready for display.
type Turn struct {
	Events  []types.Event
	Notes   []string // reward lines and other system messages
	Over    bool
	Outcome types.Outcome
}

// New sets up encounterID from defs with a battle RNG seeded with seed.
// The party starts with the game's inventory.
func New(defs *state.Defs, encounterID string, seed int64, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	setup, err := state.NewSetup(defs, encounterID)
	if err != nil {
		return nil, err
	}
	rng := engine.NewRNG(seed)
	b := engine.New(defs, setup, rng, engine.WithLogger(logger))

	return &Session{
		Defs:      defs,
		Battle:    b,
		RNG:       rng,
		Inventory: copyCounts(defs.Game.Inventory),
		start:     copyCounts(defs.Game.Inventory),
		logger:    logger,
	}, nil
}

// Resume rebuilds a session from a transcript. Items the recorded actions
// consumed are taken out of the transcript's starting inventory.
func Resume(defs *state.Defs, t *replay.Transcript, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b, rng, err := replay.Replay(defs, t, engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	inv := copyCounts(t.Inventory)
	for _, id := range b.ItemsUsed {
		inv[id]--
	}
	logger.Info("transcript resumed",
		zap.String("battle_id", b.ID),
		zap.Int("actions", len(t.Actions)),
	)
	return &Session{
		Defs:      defs,
		Battle:    b,
		RNG:       rng,
		Inventory: inv,
		start:     copyCounts(t.Inventory),
		logger:    logger,
	}, nil
}

// DefaultEncounter returns the alphabetically first encounter id, or ""
// when there is none.
func DefaultEncounter(defs *state.Defs) string {
	ids := make([]string, 0, len(defs.Encounters))
	for id := range defs.Encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Encounter returns the definition of the running encounter.
func (s *Session) Encounter() types.EncounterDef {
	return s.Defs.Encounters[s.Battle.Encounter]
}

// Start runs the battle up to the first player decision.
func (s *Session) Start() Turn {
	r := s.Battle.RunUntilInput()
	t := Turn{Events: r.Events}
	s.finish(&t)
	return t
}

// Step parses input and runs it as the active player's action, followed
// by every enemy turn up to the next player decision. A returned error is
// a message for the player; the battle did not advance.
func (s *Session) Step(input string) (Turn, error) {
	if s.Battle.Over() {
		return Turn{Over: true, Outcome: s.Battle.Summary().Outcome}, engine.ErrBattleOver
	}

	intent := parser.Parse(input)
	switch intent.Verb {
	case "":
		return Turn{}, ErrEmptyCommand
	case "again":
		if s.last.Verb == "" {
			return Turn{}, ErrNothingToRepeat
		}
		intent = s.last
	}

	action, err := engine.Interpret(s.Battle.State, s.Defs, s.Inventory, intent)
	if err != nil {
		return Turn{}, err
	}
	s.last = intent

	res, err := s.Battle.Submit(action)
	if err != nil {
		return Turn{}, err
	}
	if res.Consumed {
		s.Inventory[action.ItemID]--
	}

	t := Turn{Events: res.Events}
	if !s.Battle.Over() {
		t.Events = append(t.Events, s.Battle.RunUntilInput().Events...)
	}
	s.finish(&t)
	return t, nil
}

// finish fills in the terminal fields and, on the first victory, rolls
// and banks rewards.
func (s *Session) finish(t *Turn) {
	if !s.Battle.Over() {
		return
	}
	t.Over = true
	t.Outcome = s.Battle.Summary().Outcome
	if t.Outcome != types.OutcomeVictory || s.Rewards != nil {
		return
	}

	r := rewards.Compute(s.Battle.State, s.Defs, engine.NewRNG(s.RNG.Seed()^lootSalt))
	rewards.AddToInventory(s.Inventory, r)
	s.Rewards = &r
	t.Notes = append(t.Notes, rewards.Describe(r, s.Defs)...)

	s.logger.Info("rewards",
		zap.String("battle_id", s.Battle.ID),
		zap.Int("exp", r.Exp),
		zap.Int("gold", r.Gold),
		zap.Strings("items", r.Items),
	)
}

// Transcript records the battle so far.
func (s *Session) Transcript() *replay.Transcript {
	return replay.Record(s.Battle, s.RNG, s.start)
}

// SaveTranscript writes the transcript to dir/name.json and returns the
// path. An empty name saves as "battle".
func (s *Session) SaveTranscript(dir, name string) (string, error) {
	if name == "" {
		name = "battle"
	}
	data, err := replay.Save(s.Transcript())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating save dir: %w", err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}
	s.logger.Info("transcript saved", zap.String("path", path), zap.Int("actions", len(s.Battle.History)))
	return path, nil
}

// LoadTranscript reads a transcript file.
func LoadTranscript(path string) (*replay.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return replay.Load(data)
}

// ItemNames lists the items the party holds, sorted by id, as
// "Name xN".
func (s *Session) ItemNames() []string {
	ids := make([]string, 0, len(s.Inventory))
	for id, n := range s.Inventory {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		if it, ok := s.Defs.Items[id]; ok && it.Name != "" {
			name = it.Name
		}
		out = append(out, fmt.Sprintf("%s x%d", name, s.Inventory[id]))
	}
	return out
}

// OutcomeLine is the closing narration for a finished battle.
func OutcomeLine(o types.Outcome) string {
	switch o {
	case types.OutcomeVictory:
		return "Victory!"
	case types.OutcomeDefeat:
		return "Your party has fallen..."
	case types.OutcomeFled:
		return "You escaped."
	}
	return ""
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
