package engine

import (
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/engine/targeting"
	"github.com/nathoo/fraycore/types"
)

// SkillChance is the probability an enemy tries one of its skills.
const SkillChance = 0.3

// Decide picks an action for a non-player entity. It is stateless: a
// uniformly random living opponent becomes the primary target, then with
// probability SkillChance a random skill from its list is used; otherwise
// the enemy attacks the primary target. MP is not checked here: the resolver
// clamps the cost at zero. The AI pattern tag does not change the
// policy.
//
// Draw order is fixed: target index, skill roll, then skill index and any
// ally index.
func Decide(s *types.CombatState, defs *state.Defs, actorID string, rng Rand) types.Action {
	actor := state.Find(s, actorID)
	if !state.IsAlive(actor) {
		return types.Action{Kind: types.ActionDefend}
	}

	opponents := targeting.ValidTargets(s, actorID, types.TargetSingleEnemy)
	if len(opponents) == 0 {
		return types.Action{Kind: types.ActionDefend}
	}
	primary := opponents[rng.Intn(len(opponents))].ID

	if rng.Float64() < SkillChance {
		if usable := knownSkills(actor, defs); len(usable) > 0 {
			skill := usable[rng.Intn(len(usable))]
			return types.Action{
				Kind:    types.ActionSkill,
				SkillID: skill.ID,
				Targets: skillTargets(s, actor, skill, primary, rng),
			}
		}
	}

	return types.Action{Kind: types.ActionAttack, Targets: []string{primary}}
}

// knownSkills lists the actor's skills that exist in the catalog, in list
// order.
func knownSkills(actor *types.CombatEntity, defs *state.Defs) []types.Skill {
	var out []types.Skill
	for _, id := range actor.Skills {
		if sk, ok := defs.Skills[id]; ok {
			out = append(out, sk)
		}
	}
	return out
}

func skillTargets(s *types.CombatState, actor *types.CombatEntity, skill types.Skill, primary string, rng Rand) []string {
	switch skill.TargetType {
	case types.TargetAllEnemies, types.TargetAllAllies:
		return targeting.IDs(targeting.ValidTargets(s, actor.ID, skill.TargetType))
	case types.TargetSingleAlly:
		allies := targeting.ValidTargets(s, actor.ID, types.TargetSingleAlly)
		return []string{allies[rng.Intn(len(allies))].ID}
	case types.TargetSelf:
		return []string{actor.ID}
	default:
		return []string{primary}
	}
}
