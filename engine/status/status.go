// Package status runs the start-of-turn processing for timed effects.
package status

import (
	"github.com/nathoo/fraycore/engine/effects"
	"github.com/nathoo/fraycore/engine/events"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// Tick runs start-of-turn processing for one entity and returns the new
// state with the events it produced. The input state is not modified.
// An unknown entity yields an unchanged copy and no events.
func Tick(s *types.CombatState, entityID string) (*types.CombatState, []types.Event) {
	next := state.Clone(s)
	log := events.New(s.TurnNumber)
	if e := state.Find(next, entityID); e != nil {
		TickEntity(e, log)
	}
	return next, log.Events()
}

// TickEntity processes one entity in place. Defending is cleared, then
// each effect in list order fires its HP change, loses one remaining turn,
// and expires at zero before the next effect runs. Damage over time still
// ticks on a dead entity (for 0); heal over time does not. It reports
// whether the entity is still alive afterwards.
func TickEntity(e *types.CombatEntity, log *events.Log) bool {
	e.IsDefending = false

	kept := e.StatusEffects[:0]
	for _, se := range e.StatusEffects {
		switch se.Kind {
		case types.StatusDamageOverTime:
			wasAlive := state.IsAlive(e)
			dealt := state.ApplyDamage(e, se.Magnitude)
			log.Damage(e.ID, dealt, "%s takes %d %s damage.", e.Name, dealt, se.Name)
			if wasAlive {
				effects.NoteDefeat(e, log)
			}
		case types.StatusHealOverTime:
			if state.IsAlive(e) {
				healed := state.ApplyHeal(e, se.Magnitude)
				log.Heal(e.ID, healed, "%s recovers %d HP from %s.", e.Name, healed, se.Name)
			}
		}

		se.RemainingTurns--
		if se.RemainingTurns <= 0 {
			log.Status(e.ID, "%s's %s wore off.", e.Name, label(se))
			continue
		}
		kept = append(kept, se)
	}
	e.StatusEffects = kept

	return state.IsAlive(e)
}

// Active reports whether the entity carries an effect with the given name.
func Active(e *types.CombatEntity, name string) bool {
	for _, se := range e.StatusEffects {
		if se.Name == name {
			return true
		}
	}
	return false
}

func label(se types.StatusEffect) string {
	if se.Name != "" {
		return se.Name
	}
	return string(se.Kind)
}
