package engine

import (
	"errors"
	"testing"

	"github.com/nathoo/fraycore/engine/events"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

func duelSetup() types.Setup {
	return types.Setup{
		Encounter: "test",
		CanFlee:   true,
		Party:     []types.CombatEntity{ent("hero", true, stats(40, 10, 3, 8))},
		Enemies:   []types.CombatEntity{ent("goblin", false, stats(30, 6, 4, 5))},
	}
}

func attack(id string) types.Action {
	return types.Action{Kind: types.ActionAttack, Targets: []string{id}}
}

func TestBattle_BeginWaitsForFastestPlayer(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats())
	if b.Phase() != types.PhaseStart {
		t.Fatalf("phase = %q, want start", b.Phase())
	}

	r := b.Begin()
	if r.Phase != types.PhaseSelectingAction {
		t.Fatalf("phase = %q, want selecting_action", r.Phase)
	}
	if b.Active().ID != "hero" {
		t.Errorf("active = %q, want hero", b.Active().ID)
	}
	if b.State.Phase != types.PhaseSelectingAction {
		t.Errorf("state phase = %q", b.State.Phase)
	}
	if b.ID == "" {
		t.Error("battle should have an ID")
	}
}

func TestBattle_WrongTurnErrors(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats())
	if _, err := b.Submit(attack("goblin")); !errors.Is(err, ErrNotPlayerTurn) {
		t.Errorf("Submit before Begin: err = %v", err)
	}
	b.Begin()
	if _, err := b.EnemyTurn(); !errors.Is(err, ErrNotEnemyTurn) {
		t.Errorf("EnemyTurn on player turn: err = %v", err)
	}
}

func TestBattle_FleeFailureAdvancesTurn(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats(0.7))
	b.Begin()
	before := b.State

	r, err := b.Submit(types.Action{Kind: types.ActionFlee})
	if err != nil {
		t.Fatal(err)
	}
	if r.Phase != types.PhaseEnemyTurn {
		t.Fatalf("phase = %q, want enemy_turn", r.Phase)
	}
	if b.Active().ID != "goblin" {
		t.Errorf("active = %q, want goblin", b.Active().ID)
	}
	for i := range before.Entities {
		e := before.Entities[i]
		if state.Find(b.State, e.ID).Stats != e.Stats {
			t.Errorf("%s stats changed on failed flee", e.ID)
		}
	}
}

func TestBattle_FleeSuccessEnds(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats(0.1))
	b.Begin()

	r, err := b.Submit(types.Action{Kind: types.ActionFlee})
	if err != nil {
		t.Fatal(err)
	}
	if r.Phase != types.PhaseFled || r.Outcome != types.OutcomeFled {
		t.Fatalf("result = %+v, want fled", r)
	}
	if _, err := b.Submit(attack("goblin")); !errors.Is(err, ErrBattleOver) {
		t.Errorf("Submit after flee: err = %v", err)
	}
	if b.Summary().Outcome != types.OutcomeFled {
		t.Errorf("summary outcome = %q", b.Summary().Outcome)
	}
}

func TestBattle_VictoryAndSummary(t *testing.T) {
	setup := duelSetup()
	setup.Party[0].Stats.Attack = 100
	setup.Party[0].Stats.CurrentMP = 4
	b := New(testDefs(), setup, floats())
	b.Begin()

	r, err := b.Submit(attack("goblin"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != types.OutcomeVictory {
		t.Fatalf("outcome = %q, want victory", r.Outcome)
	}
	if len(events.Filter(r.Events, types.EventStatus)) == 0 {
		t.Error("expected a defeat narration event")
	}

	sum := b.Summary()
	if sum.Outcome != types.OutcomeVictory || len(sum.Party) != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Party[0].CurrentHP != 40 || sum.Party[0].CurrentMP != 4 {
		t.Errorf("party final stats = %+v", sum.Party[0])
	}
}

func TestBattle_StateReplacedNotMutated(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats())
	b.Begin()
	old := b.State
	oldHP := old.Entities[1].Stats.CurrentHP

	if _, err := b.Submit(attack("goblin")); err != nil {
		t.Fatal(err)
	}
	if b.State == old {
		t.Fatal("state pointer was not replaced")
	}
	if old.Entities[1].Stats.CurrentHP != oldHP {
		t.Error("previous state was mutated")
	}
	if old.Phase != types.PhaseSelectingAction {
		t.Errorf("previous state phase changed to %q", old.Phase)
	}
}

func TestBattle_PoisonKillsAtTurnStart(t *testing.T) {
	setup := duelSetup()
	setup.Enemies[0].Stats.CurrentHP = 3
	setup.Enemies[0].StatusEffects = []types.StatusEffect{
		{Kind: types.StatusDamageOverTime, Name: "poison", Magnitude: 5, RemainingTurns: 3},
	}
	b := New(testDefs(), setup, floats())
	b.Begin()

	r, err := b.Submit(types.Action{Kind: types.ActionDefend})
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != types.OutcomeVictory {
		t.Fatalf("outcome = %q, want victory", r.Outcome)
	}
}

func TestBattle_DeadEntitySkippedByTick(t *testing.T) {
	setup := duelSetup()
	setup.Enemies = append(setup.Enemies, ent("rat", false, stats(10, 2, 0, 1)))
	setup.Enemies[0].Stats.CurrentHP = 2
	setup.Enemies[0].StatusEffects = []types.StatusEffect{
		{Kind: types.StatusDamageOverTime, Name: "burn", Magnitude: 5, RemainingTurns: 2},
	}
	b := New(testDefs(), setup, floats())
	b.Begin()

	r, err := b.Submit(types.Action{Kind: types.ActionDefend})
	if err != nil {
		t.Fatal(err)
	}
	if r.Phase != types.PhaseEnemyTurn || b.Active().ID != "rat" {
		t.Fatalf("phase = %q active = %q, want rat's enemy turn", r.Phase, b.Active().ID)
	}
}

func TestBattle_RunUntilInput(t *testing.T) {
	setup := duelSetup()
	setup.Enemies[0].Stats.Speed = 20
	setup.Enemies[0].Stats.Attack = 10
	setup.Party[0].Stats.Defense = 4

	// Decide: target 0, skill roll 0.9; Strike variance 0.
	b := New(testDefs(), setup, floats(0.9, 0))
	r := b.RunUntilInput()

	if r.Phase != types.PhaseSelectingAction {
		t.Fatalf("phase = %q, want selecting_action", r.Phase)
	}
	if hp := state.Find(b.State, "hero").Stats.CurrentHP; hp != 33 {
		t.Errorf("hero HP = %d, want 33", hp)
	}
	if b.State.TurnNumber != 1 {
		t.Errorf("turn = %d, want 1", b.State.TurnNumber)
	}
}

func TestBattle_TurnWraps(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats())
	b.RunUntilInput()
	b.Submit(types.Action{Kind: types.ActionDefend})
	r := b.RunUntilInput()
	if r.Phase != types.PhaseSelectingAction {
		t.Fatalf("phase = %q", r.Phase)
	}
	if b.State.TurnNumber != 2 {
		t.Errorf("turn = %d, want 2", b.State.TurnNumber)
	}
	if b.Active().IsDefending {
		t.Error("defending should reset when the hero's turn starts")
	}
}

func TestBattle_EmptySideEndsAtStart(t *testing.T) {
	setup := duelSetup()
	setup.Enemies = nil
	b := New(testDefs(), setup, floats())
	r := b.Begin()
	if r.Outcome != types.OutcomeVictory {
		t.Errorf("outcome = %q, want victory", r.Outcome)
	}

	setup = duelSetup()
	setup.Party[0].Stats.CurrentHP = 0
	b = New(testDefs(), setup, floats())
	if r := b.Begin(); r.Outcome != types.OutcomeDefeat {
		t.Errorf("outcome = %q, want defeat", r.Outcome)
	}
}

func TestBattle_ItemConsumedSignal(t *testing.T) {
	b := New(testDefs(), duelSetup(), floats())
	b.Begin()
	r, err := b.Submit(types.Action{Kind: types.ActionItem, ItemID: "potion"})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Consumed {
		t.Error("expected Consumed")
	}
	if len(b.ItemsUsed) != 1 || b.ItemsUsed[0] != "potion" {
		t.Errorf("ItemsUsed = %v, want [potion]", b.ItemsUsed)
	}
}

func playOut(b *Battle) {
	b.Begin()
	for i := 0; i < 200 && !b.Over(); i++ {
		if b.Phase() == types.PhaseSelectingAction {
			enemies := state.Living(b.State, false)
			b.Submit(attack(enemies[0]))
			continue
		}
		b.EnemyTurn()
	}
}

func TestBattle_DeterministicWithSeed(t *testing.T) {
	setup := duelSetup()
	setup.Enemies[0].Skills = []string{"venom"}

	a := New(testDefs(), setup, NewRNG(99))
	c := New(testDefs(), setup, NewRNG(99))
	playOut(a)
	playOut(c)

	if !a.Over() {
		t.Fatal("battle did not finish")
	}
	sa, sc := a.Summary(), c.Summary()
	if sa.Outcome != sc.Outcome || sa.Turns != sc.Turns || sa.Party[0] != sc.Party[0] {
		t.Errorf("summaries differ: %+v vs %+v", sa, sc)
	}
	if len(a.History) != len(c.History) {
		t.Errorf("history lengths differ: %d vs %d", len(a.History), len(c.History))
	}
}
