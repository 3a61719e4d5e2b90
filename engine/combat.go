package engine

import (
	"github.com/nathoo/fraycore/engine/effects"
	"github.com/nathoo/fraycore/engine/events"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/engine/targeting"
	"github.com/nathoo/fraycore/types"
)

// FleeChance is the probability that a permitted flee attempt succeeds.
const FleeChance = 0.5

// Rand is the randomness the resolver and the enemy policy draw from.
// *RNG implements it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Resolution is the outcome of resolving one action.
type Resolution struct {
	State    *types.CombatState
	Events   []types.Event
	Consumed bool // an item was used; the caller decrements its inventory
	Fled     bool
}

// Resolve executes one action for actorID against a copy of s. The input
// state is never modified. Invalid references (unknown or dead actor,
// unknown skill or item, illegal target) resolve to an info event and
// change nothing; the turn is still spent.
func Resolve(s *types.CombatState, defs *state.Defs, actorID string, action types.Action, rng Rand) Resolution {
	next := state.Clone(s)
	log := events.New(s.TurnNumber)
	res := Resolution{State: next}

	actor := state.Find(next, actorID)
	switch {
	case actor == nil:
		log.Info("No combatant %q.", actorID)
	case !state.IsAlive(actor):
		log.Info("%s cannot act.", actor.Name)
	default:
		switch action.Kind {
		case types.ActionAttack:
			resolveAttack(next, actor, action, rng, log)
		case types.ActionSkill:
			resolveSkill(next, defs, actor, action, rng, log)
		case types.ActionItem:
			res.Consumed = resolveItem(next, defs, actor, action, log)
		case types.ActionDefend:
			actor.IsDefending = true
			log.Action(actor.ID, "%s braces for impact.", actor.Name)
		case types.ActionFlee:
			res.Fled = resolveFlee(next, actor, rng, log)
		default:
			log.Info("%s hesitates.", actor.Name)
		}
	}

	res.Events = log.Events()
	return res
}

func resolveAttack(s *types.CombatState, actor *types.CombatEntity, action types.Action, rng Rand, log *events.Log) {
	target := legalTarget(s, actor, types.TargetSingleEnemy, first(action.Targets))
	if target == nil {
		log.Info("%s swings at nothing.", actor.Name)
		return
	}
	log.Action(actor.ID, "%s attacks %s!", actor.Name, target.Name)
	effects.Strike(actor, target, 1.0, rng, log)
}

func resolveSkill(s *types.CombatState, defs *state.Defs, actor *types.CombatEntity, action types.Action, rng Rand, log *events.Log) {
	skill, ok := defs.Skills[action.SkillID]
	if !ok {
		log.Info("%s does not know %q.", actor.Name, action.SkillID)
		return
	}

	// MP sufficiency is gated by the caller; the cost only clamps here.
	state.ApplyMPCost(actor, skill.MPCost)
	log.Action(actor.ID, "%s uses %s!", actor.Name, skill.Name)

	targets := action.Targets
	if len(targets) == 0 && (targeting.IsGroup(skill.TargetType) || skill.TargetType == types.TargetSelf) {
		targets = targeting.IDs(targeting.ValidTargets(s, actor.ID, skill.TargetType))
	}

	for _, id := range targets {
		target := legalTarget(s, actor, skill.TargetType, id)
		if target == nil {
			log.Info("%s has no effect on %q.", skill.Name, id)
			continue
		}
		if skill.Category == types.SkillDamage || skill.Category == types.SkillMagic {
			effects.Strike(actor, target, skill.PowerMultiplier, rng, log)
		}
		if !state.IsAlive(target) {
			continue
		}
		for _, eff := range skill.Effects {
			effects.Apply(target, eff, log)
		}
	}
}

func resolveItem(s *types.CombatState, defs *state.Defs, actor *types.CombatEntity, action types.Action, log *events.Log) bool {
	item, ok := defs.Items[action.ItemID]
	if !ok {
		log.Info("%s has no %q.", actor.Name, action.ItemID)
		return false
	}

	id := first(action.Targets)
	if id == "" && (item.TargetType == types.TargetSelf || item.TargetType == types.TargetSingleAlly) {
		id = actor.ID
	}
	target := legalTarget(s, actor, item.TargetType, id)
	if target == nil {
		log.Info("%s cannot be used on %q.", item.Name, id)
		return false
	}

	log.Action(actor.ID, "%s uses %s on %s.", actor.Name, item.Name, target.Name)
	effects.Apply(target, item.Effect, log)
	return true
}

func resolveFlee(s *types.CombatState, actor *types.CombatEntity, rng Rand, log *events.Log) bool {
	if !s.CanFlee {
		log.Info("There is no escape from this battle!")
		return false
	}
	if !actor.IsPlayer {
		log.Info("%s holds its ground.", actor.Name)
		return false
	}
	if rng.Float64() < FleeChance {
		log.Action(actor.ID, "%s leads the party to safety!", actor.Name)
		return true
	}
	log.Info("%s tries to run but can't escape!", actor.Name)
	return false
}

// legalTarget returns the entity id names if it is a living, legal target
// of tt for actor, or nil.
func legalTarget(s *types.CombatState, actor *types.CombatEntity, tt types.TargetType, id string) *types.CombatEntity {
	if id == "" {
		return nil
	}
	for _, c := range targeting.ValidTargets(s, actor.ID, tt) {
		if c.ID == id {
			return state.Find(s, id)
		}
	}
	return nil
}

func first(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// CheckEnd reports victory when no enemy is alive, defeat when no player
// is alive, and OutcomeNone otherwise. Victory is checked first.
func CheckEnd(s *types.CombatState) types.Outcome {
	if len(state.Living(s, false)) == 0 {
		return types.OutcomeVictory
	}
	if len(state.Living(s, true)) == 0 {
		return types.OutcomeDefeat
	}
	return types.OutcomeNone
}
