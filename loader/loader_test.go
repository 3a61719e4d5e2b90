package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/fraycore/types"
)

func TestLoad_MinimalGame(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal Test Game" {
		t.Errorf("Title = %q, want %q", defs.Game.Title, "Minimal Test Game")
	}
	hero, ok := defs.Members["hero"]
	if !ok {
		t.Fatal("member 'hero' not found")
	}
	// Name falls back to the id.
	if hero.Name != "hero" {
		t.Errorf("hero Name = %q, want hero", hero.Name)
	}
	if hero.Stats.CurrentHP != 30 || hero.Stats.MaxHP != 30 {
		t.Errorf("hero HP = %d/%d, want 30/30", hero.Stats.CurrentHP, hero.Stats.MaxHP)
	}
	if got := defs.Encounters["rats"].Enemies; len(got) != 2 {
		t.Errorf("rats enemies = %v", got)
	}
	if len(defs.Game.Inventory) != 0 {
		t.Errorf("Inventory = %v, want empty", defs.Game.Inventory)
	}
}

func TestLoad_FullGame(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Game metadata.
	if defs.Game.Author != "Tester" {
		t.Errorf("Author = %q", defs.Game.Author)
	}
	if defs.Game.Version != "0.2" {
		t.Errorf("Version = %q", defs.Game.Version)
	}
	if len(defs.Game.Party) != 2 || defs.Game.Party[0] != "knight" {
		t.Errorf("Party = %v", defs.Game.Party)
	}
	if defs.Game.Inventory["potion"] != 3 || defs.Game.Inventory["antidote"] != 1 {
		t.Errorf("Inventory = %v", defs.Game.Inventory)
	}

	// Members.
	mage := defs.Members["mage"]
	if mage.Stats.MaxMP != 30 || mage.Stats.Speed != 7 {
		t.Errorf("mage stats = %+v", mage.Stats)
	}
	if len(mage.Skills) != 2 || mage.Skills[0] != "fireball" {
		t.Errorf("mage skills = %v", mage.Skills)
	}

	// Skills.
	if len(defs.Skills) != 5 {
		t.Errorf("expected 5 skills, got %d", len(defs.Skills))
	}
	cleave := defs.Skills["cleave"]
	if cleave.TargetType != types.TargetAllEnemies || cleave.PowerMultiplier != 0.8 {
		t.Errorf("cleave = %+v", cleave)
	}
	fireball := defs.Skills["fireball"]
	if fireball.Category != types.SkillMagic {
		t.Errorf("fireball category = %q", fireball.Category)
	}
	if len(fireball.Effects) != 1 {
		t.Fatalf("fireball effects = %v", fireball.Effects)
	}
	if burn, ok := fireball.Effects[0].(types.DamageOverTime); !ok || burn.Name != "burn" || burn.Magnitude != 3 {
		t.Errorf("fireball effect = %#v", fireball.Effects[0])
	}
	mend := defs.Skills["mend"]
	if mend.PowerMultiplier != 1.0 {
		t.Errorf("mend power = %v, want default 1.0", mend.PowerMultiplier)
	}
	if len(mend.Effects) != 2 {
		t.Errorf("mend effects = %v", mend.Effects)
	}

	// Defaults for an under-specified skill.
	bite := defs.Skills["bite"]
	if bite.TargetType != types.TargetSingleEnemy || bite.Category != types.SkillDamage {
		t.Errorf("bite defaults = %q/%q", bite.TargetType, bite.Category)
	}

	// Items.
	potion := defs.Items["potion"]
	if potion.TargetType != types.TargetSingleAlly {
		t.Errorf("potion target = %q", potion.TargetType)
	}
	if heal, ok := potion.Effect.(types.HealHP); !ok || heal.Amount != 30 {
		t.Errorf("potion effect = %#v", potion.Effect)
	}
	if cure, ok := defs.Items["antidote"].Effect.(types.CureStatus); !ok || len(cure.Names) != 1 {
		t.Errorf("antidote effect = %#v", defs.Items["antidote"].Effect)
	}

	// Enemies and encounters.
	troll := defs.Enemies["troll"]
	if !troll.Boss {
		t.Error("troll should be a boss")
	}
	if len(troll.Loot) != 2 || troll.Loot[1].ItemID != "ether" || troll.Loot[1].DropRate != 0.25 {
		t.Errorf("troll loot = %+v", troll.Loot)
	}
	spider := defs.Enemies["spider"]
	if spider.AIPattern != "aggressive" || spider.Exp != 6 || spider.Gold != 2 {
		t.Errorf("spider = %+v", spider)
	}
	if defs.Encounters["nest"].Name != "Spider Nest" {
		t.Errorf("nest name = %q", defs.Encounters["nest"].Name)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	assertContains(t, ve.Errors, `member "ghost" not defined`)
	assertContains(t, ve.Errors, `skill "smite" not defined`)
	assertContains(t, ve.Errors, `item "elixir" not defined`)
	assertContains(t, ve.Errors, `loot item "cheese"`)
	assertContains(t, ve.Errors, `enemy "dragon" not defined`)
}

func TestLoad_DuplicateIDs_Fails(t *testing.T) {
	_, err := Load("testdata/duplicate_ids")
	if err == nil {
		t.Fatal("expected error for duplicate ids")
	}
	if !strings.Contains(err.Error(), `enemy "rat" defined twice`) {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua")
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_NoGameDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_game")
	if err == nil {
		t.Fatal("expected error for missing Game{} definition")
	}
	if !strings.Contains(err.Error(), "no Game{} definition") {
		t.Errorf("error = %q, expected 'no Game{} definition'", err.Error())
	}
}

func TestLoad_MissingDir_Fails(t *testing.T) {
	if _, err := Load("testdata/nowhere"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, src := range []string{
		`os.execute("echo pwned")`,
		`io.open("/etc/passwd")`,
		`dofile("x.lua")`,
		`math.randomseed(1)`,
		`return math.random()`,
	} {
		if err := L.DoString(src); err == nil {
			t.Errorf("expected sandbox to block %s", src)
		}
	}

	// Pure helpers stay available.
	if err := L.DoString(`return math.floor(2.5) + string.len("ab")`); err != nil {
		t.Errorf("math/string should be available: %v", err)
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"skills.lua", "game.lua", "enemies.lua", "party.lua"})
	if files[0] != "game.lua" {
		t.Errorf("first file = %q, want game.lua", files[0])
	}
	// Rest should be alphabetical.
	if files[1] != "enemies.lua" || files[3] != "skills.lua" {
		t.Errorf("files = %v", files)
	}
}

func TestLoad_ShippedContent(t *testing.T) {
	defs, err := Load("../games/ashen_road")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs.Encounters) == 0 {
		t.Error("expected encounters")
	}
	for _, id := range defs.Game.Party {
		if _, ok := defs.Members[id]; !ok {
			t.Errorf("party member %q missing", id)
		}
	}
}
