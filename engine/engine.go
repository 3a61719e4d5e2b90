// Package engine runs a turn-based battle: it wires together turn order,
// status ticks, action resolution, the enemy policy, and termination
// checks behind a phase state machine.
package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/nathoo/fraycore/engine/events"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/engine/status"
	"github.com/nathoo/fraycore/engine/turnorder"
	"github.com/nathoo/fraycore/types"
)

// Sentinel errors for API misuse. In-battle problems never error.
var (
	ErrNotPlayerTurn = errors.New("not a player's turn")
	ErrNotEnemyTurn  = errors.New("not an enemy's turn")
	ErrBattleOver    = errors.New("battle is over")
)

// Battle holds the definitions and the current state of one battle.
// State is replaced, never mutated, on every transition.
type Battle struct {
	ID        string
	Encounter string
	Defs      *state.Defs
	State     *types.CombatState
	RNG       Rand
	History   []types.Action // player actions in submission order
	ItemsUsed []string       // item IDs consumed by player actions

	party  []string
	phase  *fsm.FSM
	logger *zap.Logger
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// WithID overrides the generated battle ID.
func WithID(id string) Option {
	return func(b *Battle) { b.ID = id }
}

// New creates a battle in the start phase. Entities are put in initiative
// order immediately; call Begin to activate the first one.
func New(defs *state.Defs, setup types.Setup, rng Rand, opts ...Option) *Battle {
	b := &Battle{
		ID:        uuid.NewString(),
		Encounter: setup.Encounter,
		Defs:      defs,
		RNG:       rng,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(zap.String("battle_id", b.ID))
	b.phase = newPhaseMachine(b.logger)

	s := state.NewState(setup)
	s.Entities = turnorder.ComputeOrder(s.Entities)
	if i := turnorder.First(s); i >= 0 {
		s.CurrentEntityIndex = i
	}
	b.State = s

	for _, e := range setup.Party {
		b.party = append(b.party, e.ID)
	}
	return b
}

// Phase returns the current phase.
func (b *Battle) Phase() types.Phase {
	return types.Phase(b.phase.Current())
}

// Over reports whether the battle reached a terminal phase.
func (b *Battle) Over() bool {
	return IsTerminal(b.Phase())
}

// Active returns the entity whose turn it is.
func (b *Battle) Active() *types.CombatEntity {
	return state.Active(b.State)
}

// Begin leaves the start phase. It ticks the first entity and waits for
// its action, or ends the battle at once when a side is empty. Calling it
// again is a no-op.
func (b *Battle) Begin() types.Result {
	if b.Phase() != types.PhaseStart {
		return b.result(nil, false)
	}

	b.logger.Info("battle started",
		zap.String("encounter", b.Encounter),
		zap.Int("entities", len(b.State.Entities)),
		zap.Bool("can_flee", b.State.CanFlee),
	)

	log := events.New(b.State.TurnNumber)
	s := state.Clone(b.State)

	if o := CheckEnd(s); o != types.OutcomeNone {
		b.commit(s, outcomeEvent(o))
		b.finish()
		return b.result(log.Events(), false)
	}

	log.Info("Battle start!")
	s, o := b.activate(s, log)
	b.commit(s, b.nextEvent(s, o))
	if o != types.OutcomeNone {
		b.finish()
	}
	return b.result(log.Events(), false)
}

// Submit resolves an action for the active player entity.
func (b *Battle) Submit(action types.Action) (types.Result, error) {
	if b.Over() {
		return types.Result{Phase: b.Phase(), Outcome: outcomeOf(b.Phase())}, ErrBattleOver
	}
	if b.Phase() != types.PhaseSelectingAction {
		return types.Result{Phase: b.Phase()}, ErrNotPlayerTurn
	}
	b.History = append(b.History, action)
	r := b.step(action)
	if r.Consumed {
		b.ItemsUsed = append(b.ItemsUsed, action.ItemID)
	}
	return r, nil
}

// EnemyTurn lets the enemy policy choose and resolve an action for the
// active enemy entity.
func (b *Battle) EnemyTurn() (types.Result, error) {
	if b.Over() {
		return types.Result{Phase: b.Phase(), Outcome: outcomeOf(b.Phase())}, ErrBattleOver
	}
	if b.Phase() != types.PhaseEnemyTurn {
		return types.Result{Phase: b.Phase()}, ErrNotEnemyTurn
	}
	actor := b.Active()
	action := Decide(b.State, b.Defs, actor.ID, b.RNG)
	return b.step(action), nil
}

// RunUntilInput begins the battle if needed and resolves enemy turns until
// a player must act or the battle ends. Events are concatenated.
func (b *Battle) RunUntilInput() types.Result {
	var all []types.Event
	if b.Phase() == types.PhaseStart {
		all = append(all, b.Begin().Events...)
	}
	for b.Phase() == types.PhaseEnemyTurn {
		r, err := b.EnemyTurn()
		if err != nil {
			break
		}
		all = append(all, r.Events...)
	}
	return b.result(all, false)
}

// Summary returns the outcome and the final HP/MP of every party member,
// in setup order.
func (b *Battle) Summary() types.Summary {
	sum := types.Summary{
		Outcome: outcomeOf(b.Phase()),
		Turns:   b.State.TurnNumber,
	}
	for _, id := range b.party {
		if e := state.Find(b.State, id); e != nil {
			sum.Party = append(sum.Party, types.FinalStats{
				ID:        e.ID,
				CurrentHP: e.Stats.CurrentHP,
				CurrentMP: e.Stats.CurrentMP,
			})
		}
	}
	return sum
}

// step runs one action through the pipeline.
func (b *Battle) step(action types.Action) types.Result {
	actor := b.Active()

	// 1. Enter execution.
	b.fire(evExecute)

	// 2. Resolve against a fresh copy of the state.
	res := Resolve(b.State, b.Defs, actor.ID, action, b.RNG)
	log := events.New(res.State.TurnNumber)
	log.Append(res.Events...)
	s := res.State

	b.logger.Info("action resolved",
		zap.String("actor", actor.ID),
		zap.String("kind", string(action.Kind)),
		zap.Strings("targets", action.Targets),
		zap.Int("events", len(res.Events)),
	)

	// 3. A successful flee ends the battle.
	if res.Fled {
		b.commit(s, evEscape)
		b.finish()
		return b.result(log.Events(), res.Consumed)
	}

	// 4. Termination check.
	if o := CheckEnd(s); o != types.OutcomeNone {
		b.commit(s, outcomeEvent(o))
		b.finish()
		return b.result(log.Events(), res.Consumed)
	}

	// 5. Advance to the next living entity and tick it.
	s.CurrentEntityIndex, s.TurnNumber = turnorder.Advance(s)
	log.Turn = s.TurnNumber
	s, o := b.activate(s, log)

	// 6. Wait for the next actor, or end.
	b.commit(s, b.nextEvent(s, o))
	if o != types.OutcomeNone {
		b.finish()
	}
	return b.result(log.Events(), res.Consumed)
}

// activate ticks the active entity of s. An entity killed by its own tick
// loses the turn; the battle may end there, otherwise the scheduler moves
// on. s must be a private copy.
func (b *Battle) activate(s *types.CombatState, log *events.Log) (*types.CombatState, types.Outcome) {
	for range s.Entities {
		active := state.Active(s)
		next, evts := status.Tick(s, active.ID)
		s = next
		log.Turn = s.TurnNumber
		log.Append(evts...)

		b.logger.Debug("tick",
			zap.String("entity", active.ID),
			zap.Int("turn", s.TurnNumber),
			zap.Int("events", len(evts)),
		)

		if state.IsAlive(state.Active(s)) {
			return s, types.OutcomeNone
		}
		if o := CheckEnd(s); o != types.OutcomeNone {
			return s, o
		}
		s.CurrentEntityIndex, s.TurnNumber = turnorder.Advance(s)
	}
	return s, CheckEnd(s)
}

// nextEvent picks the phase event that follows activation.
func (b *Battle) nextEvent(s *types.CombatState, o types.Outcome) string {
	if o != types.OutcomeNone {
		return outcomeEvent(o)
	}
	if state.Active(s).IsPlayer {
		return evAwaitPlayer
	}
	return evAwaitEnemy
}

// commit fires a phase event and publishes s as the new state.
func (b *Battle) commit(s *types.CombatState, event string) {
	b.fire(event)
	s.Phase = b.Phase()
	b.State = s
}

func (b *Battle) fire(event string) {
	if err := b.phase.Event(context.Background(), event); err != nil {
		b.logger.Error("phase transition rejected",
			zap.String("event", event),
			zap.String("phase", b.phase.Current()),
			zap.Error(err),
		)
		return
	}
	if b.State != nil {
		s := *b.State
		s.Phase = b.Phase()
		b.State = &s
	}
}

func (b *Battle) finish() {
	b.logger.Info("battle ended",
		zap.String("outcome", string(outcomeOf(b.Phase()))),
		zap.Int("turns", b.State.TurnNumber),
	)
}

func (b *Battle) result(evts []types.Event, consumed bool) types.Result {
	return types.Result{
		Events:   evts,
		Phase:    b.Phase(),
		Outcome:  outcomeOf(b.Phase()),
		Consumed: consumed,
	}
}
