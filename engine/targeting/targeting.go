// Package targeting computes legal target sets and maps typed names to
// entity IDs.
package targeting

import (
	"fmt"
	"strings"

	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// ValidTargets returns the living entities an actor may target with the
// given target type. Single and group variants share one candidate set.
// An unknown actor yields an empty result.
func ValidTargets(s *types.CombatState, actorID string, tt types.TargetType) []types.CombatEntity {
	actor := state.Find(s, actorID)
	if actor == nil {
		return nil
	}

	var out []types.CombatEntity
	switch tt {
	case types.TargetSelf:
		if state.IsAlive(actor) {
			out = append(out, *actor)
		}
	case types.TargetSingleEnemy, types.TargetAllEnemies:
		for i := range s.Entities {
			e := &s.Entities[i]
			if e.IsPlayer != actor.IsPlayer && state.IsAlive(e) {
				out = append(out, *e)
			}
		}
	case types.TargetSingleAlly, types.TargetAllAllies:
		for i := range s.Entities {
			e := &s.Entities[i]
			if e.IsPlayer == actor.IsPlayer && state.IsAlive(e) {
				out = append(out, *e)
			}
		}
	}
	return out
}

// IDs extracts entity IDs in order.
func IDs(entities []types.CombatEntity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}

// IsGroup reports whether a target type applies to the whole candidate set.
func IsGroup(tt types.TargetType) bool {
	return tt == types.TargetAllEnemies || tt == types.TargetAllAllies
}

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates no candidate matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no valid target called %q", e.Name)
}

// ResolveName maps a typed name to one entity ID among candidates.
// Matching order: exact ID, full name, a word of the name, underscored ID.
func ResolveName(candidates []types.CombatEntity, name string) (string, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))

	for _, c := range candidates {
		if strings.ToLower(c.ID) == nameLower {
			return c.ID, nil
		}
	}

	var matches []string
	for _, c := range candidates {
		if matchesName(c, nameLower) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks an entity's name case-insensitively, whole or by word.
func matchesName(e types.CombatEntity, nameLower string) bool {
	entityName := strings.ToLower(e.Name)
	if entityName == nameLower {
		return true
	}
	for _, word := range strings.Fields(entityName) {
		if word == nameLower {
			return true
		}
	}
	// "goblin 1" matches "goblin_1".
	return strings.ReplaceAll(nameLower, " ", "_") == strings.ToLower(e.ID)
}
