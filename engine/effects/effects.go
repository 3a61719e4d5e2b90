// Package effects applies skill and item payloads to a single target.
// Every payload type is one atomic operation on the target's record.
package effects

import (
	"math"

	"github.com/nathoo/fraycore/engine/events"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// Damage formula constants.
const (
	DefenseFactor     = 0.5
	DefendingMultiple = 1.5
	VarianceLow       = 0.9
	VarianceSpread    = 0.2
)

// DefaultCure lists the statuses a CureStatus payload removes when it
// names none.
var DefaultCure = []string{"poison", "burn"}

// Rand is the randomness needed by the damage formula.
type Rand interface {
	Float64() float64
}

// BaseDamage is the pre-variance damage:
// floor(attack*multiplier - effectiveDefense*0.5), where effective defense
// is 1.5x while defending.
func BaseDamage(attack, defense int, defending bool, multiplier float64) int {
	def := float64(defense)
	if defending {
		def *= DefendingMultiple
	}
	return int(math.Floor(float64(attack)*multiplier - def*DefenseFactor))
}

// DamageCalc applies uniform +/-10% variance to BaseDamage, floors it, and
// clamps to a minimum of 1. Returns (damage, base).
func DamageCalc(attack, defense int, defending bool, multiplier float64, r Rand) (damage, base int) {
	base = BaseDamage(attack, defense, defending, multiplier)
	variance := VarianceLow + r.Float64()*VarianceSpread
	damage = int(math.Floor(float64(base) * variance))
	if damage < 1 {
		damage = 1
	}
	return damage, base
}

// Strike deals formula damage from attacker to target and narrates it.
// Returns the HP removed.
func Strike(attacker, target *types.CombatEntity, multiplier float64, r Rand, log *events.Log) int {
	dmg, _ := DamageCalc(attacker.Stats.Attack, target.Stats.Defense, target.IsDefending, multiplier, r)
	dealt := state.ApplyDamage(target, dmg)
	log.Damage(target.ID, dealt, "%s takes %d damage.", target.Name, dealt)
	NoteDefeat(target, log)
	return dealt
}

// NoteDefeat emits a status event when an entity has just reached 0 HP.
func NoteDefeat(e *types.CombatEntity, log *events.Log) {
	if e.Stats.CurrentHP == 0 {
		log.Status(e.ID, "%s is defeated!", e.Name)
	}
}

// Apply applies one payload to a target, emitting at least one event.
func Apply(target *types.CombatEntity, eff types.Effect, log *events.Log) {
	switch e := eff.(type) {
	case types.HealPercent:
		amount := target.Stats.MaxHP * e.Percent / 100
		healed := state.ApplyHeal(target, amount)
		log.Heal(target.ID, healed, "%s recovers %d HP.", target.Name, healed)

	case types.HealHP:
		healed := state.ApplyHeal(target, e.Amount)
		log.Heal(target.ID, healed, "%s recovers %d HP.", target.Name, healed)

	case types.HealMP:
		restored := state.RestoreMP(target, e.Amount)
		log.Heal(target.ID, restored, "%s recovers %d MP.", target.Name, restored)

	case types.Buff:
		target.StatusEffects = append(target.StatusEffects, types.StatusEffect{
			Kind:           types.StatusBuff,
			Name:           e.Stat + "_up",
			Stat:           e.Stat,
			Magnitude:      e.Magnitude,
			RemainingTurns: atLeastOne(e.Duration),
		})
		log.Status(target.ID, "%s's %s rose by %d.", target.Name, e.Stat, e.Magnitude)

	case types.Debuff:
		target.StatusEffects = append(target.StatusEffects, types.StatusEffect{
			Kind:           types.StatusDebuff,
			Name:           e.Stat + "_down",
			Stat:           e.Stat,
			Magnitude:      e.Magnitude,
			RemainingTurns: atLeastOne(e.Duration),
		})
		log.Status(target.ID, "%s's %s fell by %d.", target.Name, e.Stat, e.Magnitude)

	case types.DamageOverTime:
		name := e.Name
		if name == "" {
			name = "poison"
		}
		target.StatusEffects = append(target.StatusEffects, types.StatusEffect{
			Kind:           types.StatusDamageOverTime,
			Name:           name,
			Magnitude:      e.Magnitude,
			RemainingTurns: atLeastOne(e.Duration),
		})
		log.Status(target.ID, "%s is afflicted with %s.", target.Name, name)

	case types.HealOverTime:
		name := e.Name
		if name == "" {
			name = "regen"
		}
		target.StatusEffects = append(target.StatusEffects, types.StatusEffect{
			Kind:           types.StatusHealOverTime,
			Name:           name,
			Magnitude:      e.Magnitude,
			RemainingTurns: atLeastOne(e.Duration),
		})
		log.Status(target.ID, "%s is surrounded by %s.", target.Name, name)

	case types.CureStatus:
		names := e.Names
		if len(names) == 0 {
			names = DefaultCure
		}
		removed := Cure(target, names)
		if len(removed) == 0 {
			log.Info("%s has nothing to cure.", target.Name)
			return
		}
		for _, n := range removed {
			log.Status(target.ID, "%s is cured of %s.", target.Name, n)
		}

	default:
		log.Info("Nothing happens to %s.", target.Name)
	}
}

// Cure drops damage-over-time effects with a listed name, keeping order.
// Returns the names removed.
func Cure(target *types.CombatEntity, names []string) []string {
	match := map[string]bool{}
	for _, n := range names {
		match[n] = true
	}
	var removed []string
	kept := target.StatusEffects[:0]
	for _, se := range target.StatusEffects {
		if se.Kind == types.StatusDamageOverTime && match[se.Name] {
			removed = append(removed, se.Name)
			continue
		}
		kept = append(kept, se)
	}
	target.StatusEffects = kept
	return removed
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
