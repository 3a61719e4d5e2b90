package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/engine/targeting"
	"github.com/nathoo/fraycore/types"
)

// Interpret turns a parsed player intent into an Action for the active
// entity, resolving typed names to IDs. It is the caller-side gate: skills
// need enough MP and items need a positive inventory count. The returned
// error is meant for the player.
func Interpret(s *types.CombatState, defs *state.Defs, inventory map[string]int, intent types.Intent) (types.Action, error) {
	actor := state.Active(s)
	if actor == nil {
		return types.Action{}, fmt.Errorf("nobody is ready to act")
	}

	switch intent.Verb {
	case "attack":
		name := intent.Object
		if name == "" {
			name = intent.Target
		}
		id, err := pickTarget(s, actor, types.TargetSingleEnemy, name)
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Kind: types.ActionAttack, Targets: []string{id}}, nil

	case "cast":
		if intent.Object == "" {
			return types.Action{}, fmt.Errorf("cast what?")
		}
		skill, ok := findSkill(defs, actor.Skills, intent.Object)
		if !ok {
			return types.Action{}, fmt.Errorf("%s doesn't know %q", actor.Name, intent.Object)
		}
		if actor.Stats.CurrentMP < skill.MPCost {
			return types.Action{}, fmt.Errorf("not enough MP for %s (%d/%d)", skill.Name, actor.Stats.CurrentMP, skill.MPCost)
		}
		targets, err := commandTargets(s, actor, skill, intent.Target)
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Kind: types.ActionSkill, SkillID: skill.ID, Targets: targets}, nil

	case "use":
		if intent.Object == "" {
			return types.Action{}, fmt.Errorf("use what?")
		}
		item, ok := findItem(defs, intent.Object)
		if !ok || inventory[item.ID] <= 0 {
			return types.Action{}, fmt.Errorf("you have no %q", intent.Object)
		}
		target := intent.Target
		if target == "" && (item.TargetType == types.TargetSelf || item.TargetType == types.TargetSingleAlly) {
			target = actor.ID
		}
		id, err := pickTarget(s, actor, item.TargetType, target)
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Kind: types.ActionItem, ItemID: item.ID, Targets: []string{id}}, nil

	case "defend":
		return types.Action{Kind: types.ActionDefend}, nil

	case "flee":
		if !s.CanFlee {
			return types.Action{}, fmt.Errorf("there is no escape from this battle")
		}
		return types.Action{Kind: types.ActionFlee}, nil

	case "":
		return types.Action{}, fmt.Errorf("what will %s do?", actor.Name)

	default:
		return types.Action{}, fmt.Errorf("unknown command %q (attack, cast, use, defend, flee)", intent.Verb)
	}
}

// commandTargets picks the target list for a skill. Group skills always take
// every candidate; single-target skills need a name unless only one
// candidate exists.
func commandTargets(s *types.CombatState, actor *types.CombatEntity, skill types.Skill, name string) ([]string, error) {
	switch {
	case skill.TargetType == types.TargetSelf:
		return []string{actor.ID}, nil
	case targeting.IsGroup(skill.TargetType):
		return targeting.IDs(targeting.ValidTargets(s, actor.ID, skill.TargetType)), nil
	case name == "all":
		return nil, fmt.Errorf("%s hits a single target", skill.Name)
	}
	id, err := pickTarget(s, actor, skill.TargetType, name)
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

// pickTarget resolves a typed name among the legal targets. An empty name
// is fine when there is exactly one candidate.
func pickTarget(s *types.CombatState, actor *types.CombatEntity, tt types.TargetType, name string) (string, error) {
	candidates := targeting.ValidTargets(s, actor.ID, tt)
	if len(candidates) == 0 {
		return "", fmt.Errorf("no valid targets")
	}
	if name == "" {
		if len(candidates) == 1 {
			return candidates[0].ID, nil
		}
		return "", &targeting.AmbiguityError{Name: "target", Candidates: targeting.IDs(candidates)}
	}
	return targeting.ResolveName(candidates, name)
}

// findSkill matches a typed skill name against the skills an entity knows.
func findSkill(defs *state.Defs, known []string, name string) (types.Skill, bool) {
	for _, id := range known {
		sk, ok := defs.Skills[id]
		if ok && matchesLabel(sk.ID, sk.Name, name) {
			return sk, true
		}
	}
	return types.Skill{}, false
}

// findItem matches a typed item name against the catalog. Items are tried
// in id order so a shared display name always picks the same one.
func findItem(defs *state.Defs, name string) (types.Item, bool) {
	if it, ok := defs.Items[name]; ok {
		return it, true
	}
	ids := make([]string, 0, len(defs.Items))
	for id := range defs.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if it := defs.Items[id]; matchesLabel(it.ID, it.Name, name) {
			return it, true
		}
	}
	return types.Item{}, false
}

// matchesLabel compares a typed name with an ID or display name,
// case-insensitively and treating spaces as underscores.
func matchesLabel(id, display, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == strings.ToLower(id) ||
		name == strings.ToLower(display) ||
		strings.ReplaceAll(name, " ", "_") == strings.ToLower(id)
}
