// Package turnorder computes initiative order and advances the active
// entity from turn to turn.
package turnorder

import (
	"sort"

	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// ComputeOrder sorts living entities by speed, highest first. On an exact
// speed tie players go before enemies; remaining ties keep input order.
// Dead entities follow the living ones in input order. Each entity's
// TurnOrder is set to its resulting index. The input slice is not modified.
func ComputeOrder(entities []types.CombatEntity) []types.CombatEntity {
	var living, dead []types.CombatEntity
	for _, e := range entities {
		if e.Stats.CurrentHP > 0 {
			living = append(living, e)
		} else {
			dead = append(dead, e)
		}
	}

	sort.SliceStable(living, func(i, j int) bool {
		a, b := living[i], living[j]
		if a.Stats.Speed != b.Stats.Speed {
			return a.Stats.Speed > b.Stats.Speed
		}
		return a.IsPlayer && !b.IsPlayer
	})

	ordered := append(living, dead...)
	for i := range ordered {
		ordered[i].TurnOrder = i
	}
	return ordered
}

// First returns the index of the first living entity, or -1 if none.
func First(s *types.CombatState) int {
	for i := range s.Entities {
		if state.IsAlive(&s.Entities[i]) {
			return i
		}
	}
	return -1
}

// Advance finds the next living entity after CurrentEntityIndex, wrapping
// around and skipping the dead. It returns the next index and the turn
// number, which increments when the search wraps past the end. With no
// living entity the current index and turn are returned unchanged.
func Advance(s *types.CombatState) (next, turn int) {
	n := len(s.Entities)
	turn = s.TurnNumber
	if n == 0 {
		return s.CurrentEntityIndex, turn
	}

	for step := 1; step <= n; step++ {
		idx := s.CurrentEntityIndex + step
		wrapped := idx >= n
		idx %= n
		if state.IsAlive(&s.Entities[idx]) {
			if wrapped {
				turn++
			}
			return idx, turn
		}
	}
	return s.CurrentEntityIndex, turn
}
