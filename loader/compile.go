// Package loader loads Lua battle content into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua during a battle.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/types"
)

// rawDef holds a curried definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key, 0))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts collected Lua tables into Go definitions.
func compile(coll *collector) (*state.Defs, error) {
	defs := state.NewDefs()

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.members {
		if _, dup := defs.Members[raw.id]; dup {
			return nil, fmt.Errorf("member %q defined twice", raw.id)
		}
		defs.Members[raw.id] = types.MemberDef{
			ID:     raw.id,
			Name:   nameOr(raw),
			Stats:  compileStats(raw.table),
			Skills: getStrings(raw.table, "skills"),
		}
	}

	for _, raw := range coll.skills {
		if _, dup := defs.Skills[raw.id]; dup {
			return nil, fmt.Errorf("skill %q defined twice", raw.id)
		}
		skill, err := compileSkill(raw)
		if err != nil {
			return nil, err
		}
		defs.Skills[raw.id] = skill
	}

	for _, raw := range coll.items {
		if _, dup := defs.Items[raw.id]; dup {
			return nil, fmt.Errorf("item %q defined twice", raw.id)
		}
		item := types.Item{
			ID:          raw.id,
			Name:        nameOr(raw),
			Description: getString(raw.table, "description"),
			TargetType:  types.TargetType(getString(raw.table, "target")),
		}
		if item.TargetType == "" {
			item.TargetType = types.TargetSingleAlly
		}
		if tbl := getTable(raw.table, "effect"); tbl != nil {
			eff, err := compileEffect(tbl)
			if err != nil {
				return nil, fmt.Errorf("item %q: %w", raw.id, err)
			}
			item.Effect = eff
		}
		defs.Items[raw.id] = item
	}

	for _, raw := range coll.enemies {
		if _, dup := defs.Enemies[raw.id]; dup {
			return nil, fmt.Errorf("enemy %q defined twice", raw.id)
		}
		defs.Enemies[raw.id] = types.EnemyDef{
			ID:        raw.id,
			Name:      nameOr(raw),
			Stats:     compileStats(raw.table),
			Skills:    getStrings(raw.table, "skills"),
			AIPattern: getString(raw.table, "ai"),
			Loot:      compileLoot(raw.table),
			Exp:       getInt(raw.table, "exp"),
			Gold:      getInt(raw.table, "gold"),
			Boss:      getBool(raw.table, "boss", false),
		}
	}

	for _, raw := range coll.encounters {
		if _, dup := defs.Encounters[raw.id]; dup {
			return nil, fmt.Errorf("encounter %q defined twice", raw.id)
		}
		defs.Encounters[raw.id] = types.EncounterDef{
			ID:      raw.id,
			Name:    nameOr(raw),
			Enemies: getStrings(raw.table, "enemies"),
		}
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:     getString(tbl, "title"),
		Author:    getString(tbl, "author"),
		Version:   getString(tbl, "version"),
		Intro:     getString(tbl, "intro"),
		Party:     getStrings(tbl, "party"),
		Inventory: map[string]int{},
	}
	if inv := getTable(tbl, "inventory"); inv != nil {
		inv.ForEach(func(k, v lua.LValue) {
			ks, ok := k.(lua.LString)
			n, isNum := v.(lua.LNumber)
			if ok && isNum {
				g.Inventory[string(ks)] = int(n)
			}
		})
	}
	return g
}

// compileStats reads hp/mp/attack/defense/speed. Combatants start at full
// HP and MP.
func compileStats(tbl *lua.LTable) types.Stats {
	hp, mp := getInt(tbl, "hp"), getInt(tbl, "mp")
	return types.Stats{
		CurrentHP: hp,
		MaxHP:     hp,
		CurrentMP: mp,
		MaxMP:     mp,
		Attack:    getInt(tbl, "attack"),
		Defense:   getInt(tbl, "defense"),
		Speed:     getInt(tbl, "speed"),
	}
}

func compileSkill(raw rawDef) (types.Skill, error) {
	s := types.Skill{
		ID:              raw.id,
		Name:            nameOr(raw),
		TargetType:      types.TargetType(getString(raw.table, "target")),
		Category:        types.SkillCategory(getString(raw.table, "category")),
		MPCost:          getInt(raw.table, "mp_cost"),
		PowerMultiplier: getNumber(raw.table, "power", 1.0),
	}
	if s.TargetType == "" {
		s.TargetType = types.TargetSingleEnemy
	}
	if s.Category == "" {
		s.Category = types.SkillDamage
	}
	if effs := getTable(raw.table, "effects"); effs != nil {
		for i := 1; i <= effs.MaxN(); i++ {
			tbl, ok := effs.RawGetInt(i).(*lua.LTable)
			if !ok {
				return s, fmt.Errorf("skill %q: effect %d is not a table", raw.id, i)
			}
			eff, err := compileEffect(tbl)
			if err != nil {
				return s, fmt.Errorf("skill %q: %w", raw.id, err)
			}
			s.Effects = append(s.Effects, eff)
		}
	}
	return s, nil
}

// compileEffect converts a helper table such as HealHP(30) into an Effect.
func compileEffect(tbl *lua.LTable) (types.Effect, error) {
	typ := getString(tbl, "type")
	switch typ {
	case "heal_percent":
		return types.HealPercent{Percent: getInt(tbl, "percent")}, nil
	case "heal_hp":
		return types.HealHP{Amount: getInt(tbl, "amount")}, nil
	case "heal_mp":
		return types.HealMP{Amount: getInt(tbl, "amount")}, nil
	case "buff":
		return types.Buff{
			Stat:      getString(tbl, "stat"),
			Magnitude: getInt(tbl, "magnitude"),
			Duration:  getInt(tbl, "duration"),
		}, nil
	case "debuff":
		return types.Debuff{
			Stat:      getString(tbl, "stat"),
			Magnitude: getInt(tbl, "magnitude"),
			Duration:  getInt(tbl, "duration"),
		}, nil
	case "damage_over_time":
		return types.DamageOverTime{
			Name:      getString(tbl, "name"),
			Magnitude: getInt(tbl, "magnitude"),
			Duration:  getInt(tbl, "duration"),
		}, nil
	case "heal_over_time":
		return types.HealOverTime{
			Name:      getString(tbl, "name"),
			Magnitude: getInt(tbl, "magnitude"),
			Duration:  getInt(tbl, "duration"),
		}, nil
	case "cure_status":
		return types.CureStatus{Names: getStrings(tbl, "names")}, nil
	case "":
		return nil, fmt.Errorf("effect missing type")
	default:
		return nil, fmt.Errorf("unknown effect type %q", typ)
	}
}

func compileLoot(tbl *lua.LTable) []types.LootEntry {
	arr := getTable(tbl, "loot")
	if arr == nil {
		return nil
	}
	var loot []types.LootEntry
	for i := 1; i <= arr.MaxN(); i++ {
		if e, ok := arr.RawGetInt(i).(*lua.LTable); ok {
			loot = append(loot, types.LootEntry{
				ItemID:   getString(e, "item"),
				DropRate: getNumber(e, "rate", 0),
			})
		}
	}
	return loot
}

// nameOr returns the table's name field, falling back to the id.
func nameOr(raw rawDef) string {
	if n := getString(raw.table, "name"); n != "" {
		return n
	}
	return raw.id
}

// sortedLuaFiles returns files sorted: game.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
