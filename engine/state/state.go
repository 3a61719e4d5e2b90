// Package state holds the read-only content registry and the stat/status
// model: lookups and pure mutators over a CombatState.
package state

import (
	"fmt"

	"github.com/nathoo/fraycore/types"
)

// Defs is the read-only registry of content loaded at startup. The engine
// never mutates it.
type Defs struct {
	Game       types.GameDef
	Skills     map[string]types.Skill
	Items      map[string]types.Item
	Enemies    map[string]types.EnemyDef
	Members    map[string]types.MemberDef
	Encounters map[string]types.EncounterDef
}

// NewDefs returns an empty registry with all maps allocated.
func NewDefs() *Defs {
	return &Defs{
		Skills:     map[string]types.Skill{},
		Items:      map[string]types.Item{},
		Enemies:    map[string]types.EnemyDef{},
		Members:    map[string]types.MemberDef{},
		Encounters: map[string]types.EncounterDef{},
	}
}

// NewSetup builds a battle setup from the registry's party and the given
// encounter. Duplicate enemy templates get suffixed ids and lettered names.
func NewSetup(defs *Defs, encounterID string) (types.Setup, error) {
	enc, ok := defs.Encounters[encounterID]
	if !ok {
		return types.Setup{}, fmt.Errorf("unknown encounter %q", encounterID)
	}

	setup := types.Setup{Encounter: encounterID, CanFlee: true}

	for _, id := range defs.Game.Party {
		m, ok := defs.Members[id]
		if !ok {
			return types.Setup{}, fmt.Errorf("party member %q not defined", id)
		}
		setup.Party = append(setup.Party, types.CombatEntity{
			ID:         m.ID,
			Name:       m.Name,
			TemplateID: m.ID,
			IsPlayer:   true,
			Stats:      m.Stats,
			Skills:     append([]string(nil), m.Skills...),
		})
	}

	counts := map[string]int{}
	for _, id := range enc.Enemies {
		counts[id]++
	}
	seen := map[string]int{}
	for _, id := range enc.Enemies {
		def, ok := defs.Enemies[id]
		if !ok {
			return types.Setup{}, fmt.Errorf("encounter %q: enemy %q not defined", encounterID, id)
		}
		instID, name := id, def.Name
		if counts[id] > 1 {
			seen[id]++
			instID = fmt.Sprintf("%s_%d", id, seen[id])
			name = fmt.Sprintf("%s %c", def.Name, 'A'+rune(seen[id]-1))
		}
		if def.Boss {
			setup.CanFlee = false
		}
		setup.Enemies = append(setup.Enemies, types.CombatEntity{
			ID:         instID,
			Name:       name,
			TemplateID: id,
			IsBoss:     def.Boss,
			Stats:      def.Stats,
			Skills:     append([]string(nil), def.Skills...),
		})
	}

	return setup, nil
}

// NewState creates the initial combat state from a setup. Entities are in
// setup order (party first); the scheduler reorders them.
func NewState(setup types.Setup) *types.CombatState {
	s := &types.CombatState{
		Phase:      types.PhaseStart,
		TurnNumber: 1,
		CanFlee:    setup.CanFlee,
	}
	for _, e := range setup.Party {
		e.IsPlayer = true
		s.Entities = append(s.Entities, cloneEntity(e))
	}
	for _, e := range setup.Enemies {
		e.IsPlayer = false
		s.Entities = append(s.Entities, cloneEntity(e))
	}
	for i := range s.Entities {
		clampStats(&s.Entities[i].Stats)
	}
	return s
}

// Clone returns a deep copy so callers can compute a new state without
// aliasing the old one.
func Clone(s *types.CombatState) *types.CombatState {
	if s == nil {
		return nil
	}
	out := *s
	out.Entities = make([]types.CombatEntity, len(s.Entities))
	for i, e := range s.Entities {
		out.Entities[i] = cloneEntity(e)
	}
	return &out
}

func cloneEntity(e types.CombatEntity) types.CombatEntity {
	e.StatusEffects = append([]types.StatusEffect(nil), e.StatusEffects...)
	e.Skills = append([]string(nil), e.Skills...)
	return e
}

// Index returns the position of an entity, or -1.
func Index(s *types.CombatState, id string) int {
	for i := range s.Entities {
		if s.Entities[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer into s.Entities, or nil if id is unknown.
func Find(s *types.CombatState, id string) *types.CombatEntity {
	if i := Index(s, id); i >= 0 {
		return &s.Entities[i]
	}
	return nil
}

// Active returns the entity whose turn it is, or nil.
func Active(s *types.CombatState) *types.CombatEntity {
	if s.CurrentEntityIndex < 0 || s.CurrentEntityIndex >= len(s.Entities) {
		return nil
	}
	return &s.Entities[s.CurrentEntityIndex]
}

// IsAlive reports whether the entity has HP left.
func IsAlive(e *types.CombatEntity) bool {
	return e != nil && e.Stats.CurrentHP > 0
}

// Living returns the IDs of living entities on the given side.
func Living(s *types.CombatState, players bool) []string {
	var ids []string
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.IsPlayer == players && IsAlive(e) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// ApplyDamage subtracts HP, flooring at 0. Returns the HP actually removed.
func ApplyDamage(e *types.CombatEntity, amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := e.Stats.CurrentHP
	e.Stats.CurrentHP -= amount
	if e.Stats.CurrentHP < 0 {
		e.Stats.CurrentHP = 0
	}
	return before - e.Stats.CurrentHP
}

// ApplyHeal adds HP, clamping to max. Returns the HP actually restored.
func ApplyHeal(e *types.CombatEntity, amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := e.Stats.CurrentHP
	e.Stats.CurrentHP += amount
	if e.Stats.CurrentHP > e.Stats.MaxHP {
		e.Stats.CurrentHP = e.Stats.MaxHP
	}
	return e.Stats.CurrentHP - before
}

// ApplyMPCost deducts MP, flooring at 0. Sufficiency is the caller's
// concern. Returns the MP actually spent.
func ApplyMPCost(e *types.CombatEntity, cost int) int {
	if cost < 0 {
		cost = 0
	}
	before := e.Stats.CurrentMP
	e.Stats.CurrentMP -= cost
	if e.Stats.CurrentMP < 0 {
		e.Stats.CurrentMP = 0
	}
	return before - e.Stats.CurrentMP
}

// RestoreMP adds MP, clamping to max. Returns the MP actually restored.
func RestoreMP(e *types.CombatEntity, amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := e.Stats.CurrentMP
	e.Stats.CurrentMP += amount
	if e.Stats.CurrentMP > e.Stats.MaxMP {
		e.Stats.CurrentMP = e.Stats.MaxMP
	}
	return e.Stats.CurrentMP - before
}

// clampStats enforces 0 <= current <= max on setup input.
func clampStats(st *types.Stats) {
	if st.MaxHP < 0 {
		st.MaxHP = 0
	}
	if st.MaxMP < 0 {
		st.MaxMP = 0
	}
	st.CurrentHP = clamp(st.CurrentHP, 0, st.MaxHP)
	st.CurrentMP = clamp(st.CurrentMP, 0, st.MaxMP)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
