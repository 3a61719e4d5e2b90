// Package rewards computes what the party earns after a victory. The
// battle engine never calls it; the application does once the battle
// reports victory.
package rewards

import (
	"fmt"

	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// Rand is the randomness loot rolls draw from.
type Rand interface {
	Float64() float64
}

// Compute sums the experience and gold of every defeated enemy and rolls
// each loot entry independently against its drop rate, in entity order.
func Compute(s *types.CombatState, defs *state.Defs, rng Rand) types.Rewards {
	var r types.Rewards
	for _, e := range s.Entities {
		if e.IsPlayer || e.Stats.CurrentHP > 0 {
			continue
		}
		def, ok := defs.Enemies[e.TemplateID]
		if !ok {
			continue
		}
		r.Exp += def.Exp
		r.Gold += def.Gold
		for _, entry := range def.Loot {
			if rng.Float64() < entry.DropRate {
				r.Items = append(r.Items, entry.ItemID)
			}
		}
	}
	return r
}

// AddToInventory merges dropped items into an inventory count map.
func AddToInventory(inv map[string]int, r types.Rewards) {
	for _, id := range r.Items {
		inv[id]++
	}
}

// Describe renders rewards as display lines.
func Describe(r types.Rewards, defs *state.Defs) []string {
	lines := []string{fmt.Sprintf("Gained %d EXP and %d gold.", r.Exp, r.Gold)}
	for _, id := range r.Items {
		name := id
		if it, ok := defs.Items[id]; ok && it.Name != "" {
			name = it.Name
		}
		lines = append(lines, fmt.Sprintf("Found: %s!", name))
	}
	return lines
}
