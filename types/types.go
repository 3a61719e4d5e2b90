// Package types defines the shared data structures for the fraycore engine.
// This package contains only type definitions and the marker methods that
// close the Effect sum type. No logic.
package types

// Stats holds the numeric attributes of a combatant.
type Stats struct {
	CurrentHP int `json:"current_hp"`
	MaxHP     int `json:"max_hp"`
	CurrentMP int `json:"current_mp"`
	MaxMP     int `json:"max_mp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Speed     int `json:"speed"`
}

// StatusKind classifies a timed modifier.
type StatusKind string

const (
	StatusBuff           StatusKind = "buff"
	StatusDebuff         StatusKind = "debuff"
	StatusDamageOverTime StatusKind = "damage_over_time"
	StatusHealOverTime   StatusKind = "heal_over_time"
)

// StatusEffect is a timed modifier attached to one entity.
type StatusEffect struct {
	Kind           StatusKind `json:"kind"`
	Name           string     `json:"name"`           // "poison", "burn", "regen", "attack_up", ...
	Stat           string     `json:"stat,omitempty"` // buff/debuff only
	Magnitude      int        `json:"magnitude"`
	RemainingTurns int        `json:"remaining_turns"`
}

// CombatEntity is a participant in a battle.
type CombatEntity struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	TemplateID    string         `json:"template_id"` // catalog key (member or enemy def)
	IsPlayer      bool           `json:"is_player"`
	IsDefending   bool           `json:"is_defending"`
	IsBoss        bool           `json:"is_boss,omitempty"`
	TurnOrder     int            `json:"turn_order"`
	Stats         Stats          `json:"stats"`
	StatusEffects []StatusEffect `json:"status_effects"`
	Skills        []string       `json:"skills,omitempty"`
}

// Phase is a state of the combat phase machine.
type Phase string

const (
	PhaseStart           Phase = "start"
	PhaseSelectingAction Phase = "selecting_action"
	PhaseEnemyTurn       Phase = "enemy_turn"
	PhaseExecutingAction Phase = "executing_action"
	PhaseVictory         Phase = "victory"
	PhaseDefeat          Phase = "defeat"
	PhaseFled            Phase = "fled"
)

// Outcome is the result of a termination check or a finished battle.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeFled    Outcome = "fled"
)

// CombatState is the aggregate state of one battle.
type CombatState struct {
	Phase              Phase          `json:"phase"`
	TurnNumber         int            `json:"turn_number"`
	Entities           []CombatEntity `json:"entities"`
	CurrentEntityIndex int            `json:"current_entity_index"`
	CanFlee            bool           `json:"can_flee"`
}

// TargetType determines which entities are legal recipients of an action.
type TargetType string

const (
	TargetSelf        TargetType = "self"
	TargetSingleEnemy TargetType = "single_enemy"
	TargetAllEnemies  TargetType = "all_enemies"
	TargetSingleAlly  TargetType = "single_ally"
	TargetAllAllies   TargetType = "all_allies"
)

// SkillCategory decides whether a skill deals formula damage.
type SkillCategory string

const (
	SkillDamage  SkillCategory = "damage"
	SkillMagic   SkillCategory = "magic"
	SkillSupport SkillCategory = "support"
)

// Effect is one payload of a skill or item. The concrete types below are
// the only implementations.
type Effect interface {
	effectKind() string
}

// HealPercent restores a percentage of the target's max HP.
type HealPercent struct {
	Percent int `json:"percent"`
}

// Buff appends a beneficial stat modifier.
type Buff struct {
	Stat      string `json:"stat"`
	Magnitude int    `json:"magnitude"`
	Duration  int    `json:"duration"`
}

// Debuff appends a detrimental stat modifier.
type Debuff struct {
	Stat      string `json:"stat"`
	Magnitude int    `json:"magnitude"`
	Duration  int    `json:"duration"`
}

// DamageOverTime appends a ticking damage status ("poison" unless named).
type DamageOverTime struct {
	Name      string `json:"name"`
	Magnitude int    `json:"magnitude"`
	Duration  int    `json:"duration"`
}

// HealOverTime appends a ticking heal status.
type HealOverTime struct {
	Name      string `json:"name"`
	Magnitude int    `json:"magnitude"`
	Duration  int    `json:"duration"`
}

// HealHP restores a fixed amount of HP (items).
type HealHP struct {
	Amount int `json:"amount"`
}

// HealMP restores a fixed amount of MP (items).
type HealMP struct {
	Amount int `json:"amount"`
}

// CureStatus removes damage-over-time effects by name. An empty Names list
// means the poison/burn category.
type CureStatus struct {
	Names []string `json:"names,omitempty"`
}

func (HealPercent) effectKind() string    { return "heal_percent" }
func (Buff) effectKind() string           { return "buff" }
func (Debuff) effectKind() string         { return "debuff" }
func (DamageOverTime) effectKind() string { return "damage_over_time" }
func (HealOverTime) effectKind() string   { return "heal_over_time" }
func (HealHP) effectKind() string         { return "heal_hp" }
func (HealMP) effectKind() string         { return "heal_mp" }
func (CureStatus) effectKind() string     { return "cure_status" }

// Skill is an immutable capability template.
type Skill struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	TargetType      TargetType    `json:"target_type"`
	Category        SkillCategory `json:"category"`
	MPCost          int           `json:"mp_cost"`
	PowerMultiplier float64       `json:"power_multiplier"`
	Effects         []Effect      `json:"-"`
}

// Item is a consumable definition. Its single effect applies to one target.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TargetType  TargetType `json:"target_type"`
	Effect      Effect     `json:"-"`
}

// LootEntry is one independent drop roll.
type LootEntry struct {
	ItemID   string  `json:"item_id"`
	DropRate float64 `json:"drop_rate"` // 0..1
}

// EnemyDef is the catalog entry for an enemy template.
type EnemyDef struct {
	ID        string
	Name      string
	Stats     Stats
	Skills    []string
	AIPattern string
	Loot      []LootEntry
	Exp       int
	Gold      int
	Boss      bool
}

// MemberDef is the catalog entry for a party member.
type MemberDef struct {
	ID     string
	Name   string
	Stats  Stats
	Skills []string
}

// EncounterDef lists the enemy templates of a battle, in order.
type EncounterDef struct {
	ID      string
	Name    string
	Enemies []string
}

// GameDef holds content metadata and the starting party.
type GameDef struct {
	Title     string
	Author    string
	Version   string
	Intro     string
	Party     []string
	Inventory map[string]int
}

// Setup is the input snapshot a battle starts from.
type Setup struct {
	Encounter string         `json:"encounter"`
	Party     []CombatEntity `json:"party"`
	Enemies   []CombatEntity `json:"enemies"`
	CanFlee   bool           `json:"can_flee"`
}

// ActionKind names one of the action families.
type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionSkill  ActionKind = "skill"
	ActionItem   ActionKind = "item"
	ActionDefend ActionKind = "defend"
	ActionFlee   ActionKind = "flee"
)

// Action is a fully resolved command for the active entity.
type Action struct {
	Kind    ActionKind `json:"kind"`
	SkillID string     `json:"skill_id,omitempty"`
	ItemID  string     `json:"item_id,omitempty"`
	Targets []string   `json:"targets,omitempty"`
}

// Intent is the parsed representation of a typed player command.
type Intent struct {
	Verb   string
	Object string // skill or item name, or attack target
	Target string // optional
}

// EventCategory classifies narration for display.
type EventCategory string

const (
	EventDamage EventCategory = "damage"
	EventHeal   EventCategory = "heal"
	EventStatus EventCategory = "status"
	EventAction EventCategory = "action"
	EventInfo   EventCategory = "info"
)

// Event is one narrated line of the battle log.
type Event struct {
	Turn     int           `json:"turn"`
	Category EventCategory `json:"category"`
	Message  string        `json:"message"`
	EntityID string        `json:"entity_id,omitempty"`
	Amount   int           `json:"amount,omitempty"`
}

// Result is the output of a single battle step.
type Result struct {
	Events   []Event
	Phase    Phase
	Outcome  Outcome
	Consumed bool // the submitted item was used up
}

// FinalStats is the end-of-battle HP/MP of one player entity.
type FinalStats struct {
	ID        string `json:"id"`
	CurrentHP int    `json:"current_hp"`
	CurrentMP int    `json:"current_mp"`
}

// Summary is the end-of-battle output merged back by the caller.
type Summary struct {
	Outcome Outcome      `json:"outcome"`
	Turns   int          `json:"turns"`
	Party   []FinalStats `json:"party"`
}

// Rewards is computed by the caller after a victory.
type Rewards struct {
	Exp   int
	Gold  int
	Items []string
}
