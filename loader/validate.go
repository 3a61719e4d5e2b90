package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validTargets = map[types.TargetType]bool{
	types.TargetSelf:        true,
	types.TargetSingleEnemy: true,
	types.TargetAllEnemies:  true,
	types.TargetSingleAlly:  true,
	types.TargetAllAllies:   true,
}

var validCategories = map[types.SkillCategory]bool{
	types.SkillDamage:  true,
	types.SkillMagic:   true,
	types.SkillSupport: true,
}

var validStats = map[string]bool{
	"attack": true, "defense": true, "speed": true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}
	errf := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}
	warnf := func(format string, args ...any) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(format, args...))
	}

	// Game and party.
	if defs.Game.Title == "" {
		errf("Game.title is required")
	}
	if len(defs.Game.Party) == 0 {
		errf("Game.party must name at least one member")
	}
	for _, id := range defs.Game.Party {
		if _, ok := defs.Members[id]; !ok {
			errf("Game.party: member %q not defined", id)
		}
	}
	for _, id := range sortedKeys(defs.Game.Inventory) {
		if _, ok := defs.Items[id]; !ok {
			errf("Game.inventory: item %q not defined", id)
		}
		if defs.Game.Inventory[id] < 0 {
			errf("Game.inventory: item %q has negative count", id)
		}
	}

	for _, id := range sortedKeys(defs.Members) {
		m := defs.Members[id]
		checkStats(errf, "member "+id, m.Stats)
		for _, sk := range m.Skills {
			if _, ok := defs.Skills[sk]; !ok {
				errf("member %q: skill %q not defined", id, sk)
			}
		}
	}

	for _, id := range sortedKeys(defs.Skills) {
		s := defs.Skills[id]
		if !validTargets[s.TargetType] {
			errf("skill %q: unknown target %q", id, s.TargetType)
		}
		if !validCategories[s.Category] {
			errf("skill %q: unknown category %q", id, s.Category)
		}
		if s.MPCost < 0 {
			errf("skill %q: mp_cost must not be negative", id)
		}
		if s.PowerMultiplier < 0 {
			errf("skill %q: power must not be negative", id)
		}
		if s.Category == types.SkillSupport && len(s.Effects) == 0 {
			warnf("skill %q: support skill has no effects", id)
		}
		for _, eff := range s.Effects {
			checkEffect(errf, "skill "+id, eff)
		}
	}

	for _, id := range sortedKeys(defs.Items) {
		it := defs.Items[id]
		if !validTargets[it.TargetType] {
			errf("item %q: unknown target %q", id, it.TargetType)
		}
		if it.Effect == nil {
			errf("item %q: effect is required", id)
		} else {
			checkEffect(errf, "item "+id, it.Effect)
		}
	}

	for _, id := range sortedKeys(defs.Enemies) {
		e := defs.Enemies[id]
		checkStats(errf, "enemy "+id, e.Stats)
		for _, sk := range e.Skills {
			if _, ok := defs.Skills[sk]; !ok {
				errf("enemy %q: skill %q not defined", id, sk)
			}
		}
		for _, l := range e.Loot {
			if _, ok := defs.Items[l.ItemID]; !ok {
				errf("enemy %q: loot item %q not defined", id, l.ItemID)
			}
			if l.DropRate < 0 || l.DropRate > 1 {
				errf("enemy %q: drop rate %v for %q outside 0..1", id, l.DropRate, l.ItemID)
			}
		}
		if e.Exp < 0 || e.Gold < 0 {
			errf("enemy %q: exp and gold must not be negative", id)
		}
	}

	if len(defs.Encounters) == 0 {
		errf("at least one Encounter is required")
	}
	for _, id := range sortedKeys(defs.Encounters) {
		enc := defs.Encounters[id]
		if len(enc.Enemies) == 0 {
			errf("encounter %q: enemies must not be empty", id)
		}
		for _, eid := range enc.Enemies {
			if _, ok := defs.Enemies[eid]; !ok {
				errf("encounter %q: enemy %q not defined", id, eid)
			}
		}
	}

	// Warnings: content nobody reaches.
	used := map[string]bool{}
	for _, enc := range defs.Encounters {
		for _, eid := range enc.Enemies {
			used[eid] = true
		}
	}
	for _, id := range sortedKeys(defs.Enemies) {
		if !used[id] {
			warnf("enemy %q is not part of any encounter", id)
		}
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func checkStats(errf func(string, ...any), who string, s types.Stats) {
	if s.MaxHP <= 0 {
		errf("%s: hp must be positive", who)
	}
	if s.MaxMP < 0 || s.Attack < 0 || s.Defense < 0 || s.Speed < 0 {
		errf("%s: stats must not be negative", who)
	}
}

func checkEffect(errf func(string, ...any), who string, eff types.Effect) {
	switch e := eff.(type) {
	case types.Buff:
		if !validStats[e.Stat] {
			errf("%s: buff on unknown stat %q", who, e.Stat)
		}
	case types.Debuff:
		if !validStats[e.Stat] {
			errf("%s: debuff on unknown stat %q", who, e.Stat)
		}
	case types.HealPercent:
		if e.Percent <= 0 {
			errf("%s: heal percent must be positive", who)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
