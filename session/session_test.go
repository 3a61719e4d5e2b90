package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/fraycore/engine"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/engine/targeting"
	"github.com/nathoo/fraycore/types"
)

func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Game = types.GameDef{
		Title:     "Session Test",
		Version:   "1",
		Party:     []string{"hero"},
		Inventory: map[string]int{"potion": 2},
	}
	defs.Members["hero"] = types.MemberDef{
		ID: "hero", Name: "Hero",
		Stats:  types.Stats{CurrentHP: 100, MaxHP: 100, CurrentMP: 10, MaxMP: 10, Attack: 20, Defense: 5, Speed: 10},
		Skills: []string{"smite"},
	}
	defs.Skills["smite"] = types.Skill{
		ID: "smite", Name: "Smite", TargetType: types.TargetSingleEnemy,
		Category: types.SkillDamage, MPCost: 4, PowerMultiplier: 1.5,
	}
	defs.Items["potion"] = types.Item{
		ID: "potion", Name: "Potion", TargetType: types.TargetSingleAlly, Effect: types.HealHP{Amount: 20},
	}
	defs.Enemies["rat"] = types.EnemyDef{
		ID: "rat", Name: "Rat",
		Stats: types.Stats{CurrentHP: 5, MaxHP: 5, Attack: 3, Speed: 1},
		Exp:   3, Gold: 2,
		Loot: []types.LootEntry{{ItemID: "potion", DropRate: 1.0}},
	}
	defs.Enemies["ogre"] = types.EnemyDef{
		ID: "ogre", Name: "Ogre",
		Stats: types.Stats{CurrentHP: 500, MaxHP: 500, Attack: 5, Defense: 2, Speed: 2},
		Exp:   50,
	}
	defs.Encounters["rat"] = types.EncounterDef{ID: "rat", Name: "A Rat", Enemies: []string{"rat"}}
	defs.Encounters["ogre"] = types.EncounterDef{ID: "ogre", Name: "The Ogre", Enemies: []string{"ogre"}}
	return defs
}

func started(t *testing.T, encounter string) *Session {
	t.Helper()
	s, err := New(testDefs(), encounter, 11, nil)
	require.NoError(t, err)
	s.Start()
	return s
}

func TestNew_UnknownEncounter(t *testing.T) {
	_, err := New(testDefs(), "dragon", 1, nil)
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	s, err := New(testDefs(), "ogre", 1, nil)
	require.NoError(t, err)

	turn := s.Start()
	assert.False(t, turn.Over)
	assert.Contains(t, messages(turn), "Battle start!")
	assert.Equal(t, types.PhaseSelectingAction, s.Battle.Phase())
	assert.Equal(t, "The Ogre", s.Encounter().Name)
}

func TestStep_Rejections(t *testing.T) {
	s := started(t, "ogre")

	_, err := s.Step("   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = s.Step("again")
	assert.ErrorIs(t, err, ErrNothingToRepeat)

	_, err = s.Step("attack dragon")
	var nf *targeting.NotFoundError
	assert.True(t, errors.As(err, &nf), "err = %v", err)

	_, err = s.Step("use elixir")
	assert.Error(t, err)

	// Nothing advanced.
	assert.Empty(t, s.Battle.History)
	assert.Equal(t, 1, s.Battle.State.TurnNumber)
}

func TestStep_ItemDecrementsInventory(t *testing.T) {
	s := started(t, "ogre")

	turn, err := s.Step("use potion")
	require.NoError(t, err)
	assert.False(t, turn.Over)
	assert.Equal(t, 1, s.Inventory["potion"])
	assert.Equal(t, []string{"Potion x1"}, s.ItemNames())

	_, err = s.Step("use potion")
	require.NoError(t, err)
	_, err = s.Step("use potion")
	assert.Error(t, err, "no potions left")
	assert.Empty(t, s.ItemNames())
}

func TestStep_AgainRepeatsLastCommand(t *testing.T) {
	s := started(t, "ogre")

	_, err := s.Step("defend")
	require.NoError(t, err)
	_, err = s.Step("g")
	require.NoError(t, err)

	require.Len(t, s.Battle.History, 2)
	assert.Equal(t, types.ActionDefend, s.Battle.History[1].Kind)
}

func TestStep_EnemyTurnsFollow(t *testing.T) {
	s := started(t, "ogre")

	turn, err := s.Step("cast smite on ogre")
	require.NoError(t, err)

	// The ogre answers before control comes back.
	var ogreActed bool
	for _, e := range turn.Events {
		if e.Category == types.EventDamage && strings.Contains(e.Message, "Hero") {
			ogreActed = true
		}
	}
	assert.True(t, ogreActed, "events = %v", messages(turn))
	assert.Equal(t, types.PhaseSelectingAction, s.Battle.Phase())
	assert.Equal(t, 6, state.Find(s.Battle.State, "hero").Stats.CurrentMP)
}

func TestStep_VictoryRewards(t *testing.T) {
	s := started(t, "rat")

	turn, err := s.Step("attack rat")
	require.NoError(t, err)
	assert.True(t, turn.Over)
	assert.Equal(t, types.OutcomeVictory, turn.Outcome)

	require.NotNil(t, s.Rewards)
	assert.Equal(t, 3, s.Rewards.Exp)
	assert.Equal(t, 2, s.Rewards.Gold)
	assert.Equal(t, []string{"potion"}, s.Rewards.Items)
	assert.Equal(t, 3, s.Inventory["potion"])
	assert.Contains(t, turn.Notes, "Gained 3 EXP and 2 gold.")
	assert.Contains(t, turn.Notes, "Found: Potion!")

	_, err = s.Step("attack rat")
	assert.ErrorIs(t, err, engine.ErrBattleOver)
}

func TestSaveAndResume(t *testing.T) {
	s := started(t, "ogre")
	for _, cmd := range []string{"attack ogre", "use potion", "defend", "cast smite on ogre"} {
		_, err := s.Step(cmd)
		require.NoError(t, err, cmd)
	}

	dir := t.TempDir()
	path, err := s.SaveTranscript(dir, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "battle.json"))

	tr, err := LoadTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"potion": 2}, tr.Inventory)

	resumed, err := Resume(testDefs(), tr, nil)
	require.NoError(t, err)
	resumed.Start()

	assert.Equal(t, s.Battle.State.Entities, resumed.Battle.State.Entities)
	assert.Equal(t, s.Inventory, resumed.Inventory)
	assert.Equal(t, s.RNG.Position(), resumed.RNG.Position())
	assert.Equal(t, s.Battle.ID, resumed.Battle.ID)

	// The resumed battle keeps going.
	_, err = resumed.Step("attack ogre")
	assert.NoError(t, err)
}

func TestLoadTranscript_Missing(t *testing.T) {
	_, err := LoadTranscript(t.TempDir() + "/nope.json")
	assert.Error(t, err)
}

func TestDefaultEncounter(t *testing.T) {
	assert.Equal(t, "ogre", DefaultEncounter(testDefs()))
	assert.Equal(t, "", DefaultEncounter(state.NewDefs()))
}

func TestOutcomeLine(t *testing.T) {
	assert.Equal(t, "Victory!", OutcomeLine(types.OutcomeVictory))
	assert.Equal(t, "You escaped.", OutcomeLine(types.OutcomeFled))
	assert.NotEmpty(t, OutcomeLine(types.OutcomeDefeat))
	assert.Empty(t, OutcomeLine(types.OutcomeNone))
}

func messages(t Turn) []string {
	var out []string
	for _, e := range t.Events {
		out = append(out, e.Message)
	}
	return out
}
