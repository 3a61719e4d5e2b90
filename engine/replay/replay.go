// Package replay implements JSON battle transcripts: the seed and the
// player actions of a battle, re-simulated deterministically.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/fraycore/engine"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// FormatVersion is written into every transcript.
const FormatVersion = "1"

// ErrDiverged reports that re-simulating a transcript did not reach the
// recorded point, usually because the content changed.
var ErrDiverged = errors.New("replay diverged")

// Transcript is the JSON-serializable replay format.
type Transcript struct {
	Version     string         `json:"version"`
	Game        string         `json:"game"`
	GameVersion string         `json:"game_version"`
	BattleID    string         `json:"battle_id"`
	Encounter   string         `json:"encounter"`
	Seed        int64          `json:"seed"`
	Actions     []types.Action `json:"actions"`
	Inventory   map[string]int `json:"inventory"`
	Turn        int            `json:"turn"`
	RNGPosition int64          `json:"rng_position"`
	Outcome     types.Outcome  `json:"outcome,omitempty"`
}

// Record captures a battle driven by rng. inventory is the party's item
// counts when the battle started.
func Record(b *engine.Battle, rng *engine.RNG, inventory map[string]int) *Transcript {
	inv := make(map[string]int, len(inventory))
	for k, v := range inventory {
		inv[k] = v
	}
	return &Transcript{
		Version:     FormatVersion,
		Game:        b.Defs.Game.Title,
		GameVersion: b.Defs.Game.Version,
		BattleID:    b.ID,
		Encounter:   b.Encounter,
		Seed:        rng.Seed(),
		Actions:     append([]types.Action{}, b.History...),
		Inventory:   inv,
		Turn:        b.State.TurnNumber,
		RNGPosition: rng.Position(),
		Outcome:     b.Summary().Outcome,
	}
}

// Save serializes a transcript to JSON bytes.
func Save(t *Transcript) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Load deserializes JSON bytes into a Transcript.
func Load(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	if t.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported transcript version %q", t.Version)
	}
	// Ensure collections are never nil after load.
	if t.Actions == nil {
		t.Actions = []types.Action{}
	}
	if t.Inventory == nil {
		t.Inventory = map[string]int{}
	}
	return &t, nil
}

// Replay rebuilds the battle from a transcript by re-submitting every
// recorded action. The returned RNG continues where the recording
// stopped. ErrDiverged is returned when the battle ends early, or when
// the turn, RNG position, or outcome differ from the recording.
func Replay(defs *state.Defs, t *Transcript, opts ...engine.Option) (*engine.Battle, *engine.RNG, error) {
	setup, err := state.NewSetup(defs, t.Encounter)
	if err != nil {
		return nil, nil, fmt.Errorf("replay setup: %w", err)
	}

	rng := engine.NewRNG(t.Seed)
	opts = append([]engine.Option{engine.WithID(t.BattleID)}, opts...)
	b := engine.New(defs, setup, rng, opts...)

	for i, action := range t.Actions {
		b.RunUntilInput()
		if b.Over() {
			return b, rng, fmt.Errorf("%w: battle ended before action %d", ErrDiverged, i+1)
		}
		if _, err := b.Submit(action); err != nil {
			return b, rng, fmt.Errorf("%w: action %d: %v", ErrDiverged, i+1, err)
		}
	}
	b.RunUntilInput()

	switch {
	case b.State.TurnNumber != t.Turn:
		return b, rng, fmt.Errorf("%w: turn %d, recorded %d", ErrDiverged, b.State.TurnNumber, t.Turn)
	case rng.Position() != t.RNGPosition:
		return b, rng, fmt.Errorf("%w: rng position %d, recorded %d", ErrDiverged, rng.Position(), t.RNGPosition)
	case b.Summary().Outcome != t.Outcome:
		return b, rng, fmt.Errorf("%w: outcome %q, recorded %q", ErrDiverged, b.Summary().Outcome, t.Outcome)
	}
	return b, rng, nil
}
