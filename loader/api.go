package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerEffectHelpers(L)
}

// curried registers Name "id" { ... }: Name("id") returns a function that
// takes the definition table.
func curried(L *lua.LState, name string, into *[]rawDef) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*into = append(*into, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", party = {...}, inventory = {...} }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	curried(L, "Member", &coll.members)
	curried(L, "Skill", &coll.skills)
	curried(L, "Item", &coll.items)
	curried(L, "Enemy", &coll.enemies)
	curried(L, "Encounter", &coll.encounters)
}

func registerEffectHelpers(L *lua.LState) {
	// HealPercent(25)
	L.SetGlobal("HealPercent", L.NewFunction(func(L *lua.LState) int {
		pct := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("heal_percent"))
		tbl.RawSetString("percent", pct)
		L.Push(tbl)
		return 1
	}))

	// HealHP(30)
	L.SetGlobal("HealHP", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("heal_hp"))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// HealMP(15)
	L.SetGlobal("HealMP", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("heal_mp"))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// Buff("attack", 5, 3) and Debuff("defense", 3, 2)
	for name, kind := range map[string]string{"Buff": "buff", "Debuff": "debuff"} {
		kind := kind
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			stat := L.CheckString(1)
			magnitude := L.CheckNumber(2)
			duration := L.CheckNumber(3)
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(kind))
			tbl.RawSetString("stat", lua.LString(stat))
			tbl.RawSetString("magnitude", magnitude)
			tbl.RawSetString("duration", duration)
			L.Push(tbl)
			return 1
		}))
	}

	// Poison(3, 3) and Burn(4, 2) are named damage-over-time effects.
	for name, dot := range map[string]string{"Poison": "poison", "Burn": "burn"} {
		dot := dot
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			magnitude := L.CheckNumber(1)
			duration := L.CheckNumber(2)
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString("damage_over_time"))
			tbl.RawSetString("name", lua.LString(dot))
			tbl.RawSetString("magnitude", magnitude)
			tbl.RawSetString("duration", duration)
			L.Push(tbl)
			return 1
		}))
	}

	// Regen(5, 3)
	L.SetGlobal("Regen", L.NewFunction(func(L *lua.LState) int {
		magnitude := L.CheckNumber(1)
		duration := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("heal_over_time"))
		tbl.RawSetString("name", lua.LString("regen"))
		tbl.RawSetString("magnitude", magnitude)
		tbl.RawSetString("duration", duration)
		L.Push(tbl)
		return 1
	}))

	// Cure() or Cure("poison", "burn")
	L.SetGlobal("Cure", L.NewFunction(func(L *lua.LState) int {
		names := L.NewTable()
		for i := 1; i <= L.GetTop(); i++ {
			names.Append(lua.LString(L.CheckString(i)))
		}
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("cure_status"))
		tbl.RawSetString("names", names)
		L.Push(tbl)
		return 1
	}))

	// Drop("potion", 0.25)
	L.SetGlobal("Drop", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		rate := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("rate", rate)
		L.Push(tbl)
		return 1
	}))
}
