package character

import (
	"testing"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
)

func TestModifier(t *testing.T) {
	tcs := []struct {
		score int
		want  int
	}{
		{score: 1, want: -5},
		{score: 3, want: -4},
		{score: 8, want: -1},
		{score: 9, want: -1},
		{score: 10, want: 0},
		{score: 11, want: 0},
		{score: 12, want: 1},
		{score: 15, want: 2},
		{score: 20, want: 5},
	}
	for _, tc := range tcs {
		if got := Modifier(tc.score); got != tc.want {
			t.Fatalf("Modifier(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}

func TestModifierIsMonotonic(t *testing.T) {
	prev := Modifier(-10)
	for score := -9; score <= 40; score++ {
		got := Modifier(score)
		if got < prev {
			t.Fatalf("Modifier(%d) = %d decreased from %d", score, got, prev)
		}
		prev = got
	}
}

func TestNewHumanWarrior(t *testing.T) {
	c := New("Aria", LineageHuman, VocationWarrior, dice.Script(4))

	if c.Stats.CON != 16 {
		t.Fatalf("CON = %d, want 16", c.Stats.CON)
	}
	if want := 10 + Modifier(c.Stats.CON); c.MaxHP != want || c.CurrentHP != want {
		t.Fatalf("hp = %d/%d, want %d", c.CurrentHP, c.MaxHP, want)
	}
	if c.ArmorClass != 15 {
		t.Fatalf("ac = %d, want 15", c.ArmorClass)
	}
	if c.MaxMP != 4 || c.CurrentMP != 4 {
		t.Fatalf("mp = %d/%d, want 4/4", c.CurrentMP, c.MaxMP)
	}
	if c.Level != 1 || c.XP != 0 || c.XPToNext != StartingXPToNext {
		t.Fatalf("progress = level %d xp %d/%d", c.Level, c.XP, c.XPToNext)
	}
	if c.Gold != 120 {
		t.Fatalf("gold = %d, want 120", c.Gold)
	}

	for _, name := range []string{"Longsword", "Shield"} {
		idx := c.FindItem(name)
		if idx == -1 {
			t.Fatalf("expected %s in inventory", name)
		}
		if !c.Inventory[idx].Equipped {
			t.Fatalf("expected %s to be equipped", name)
		}
	}
}

func TestNewGoldBounds(t *testing.T) {
	low := New("Low", LineageHuman, VocationWarrior, dice.Script(1))
	if low.Gold != 30 {
		t.Fatalf("minimum gold = %d, want 30", low.Gold)
	}
	high := New("High", LineageHuman, VocationWarrior, dice.Script(6))
	if high.Gold != 180 {
		t.Fatalf("maximum gold = %d, want 180", high.Gold)
	}

	src := dice.NewSource(99)
	for i := 0; i < 200; i++ {
		c := New("Any", LineageHuman, VocationWarrior, src)
		if c.Gold < 30 || c.Gold > 180 || c.Gold%10 != 0 {
			t.Fatalf("gold = %d outside [30, 180] steps of 10", c.Gold)
		}
	}
}

func TestNewSpellcasterMana(t *testing.T) {
	mage := New("Ilya", LineageElf, VocationMage, dice.Script(3))
	if mage.Stats.INT != 17 {
		t.Fatalf("INT = %d, want 17", mage.Stats.INT)
	}
	if mage.MaxMP != 16 {
		t.Fatalf("mage mp = %d, want 16", mage.MaxMP)
	}
	if mage.MaxHP != 6 {
		t.Fatalf("mage hp = %d, want 6", mage.MaxHP)
	}

	cleric := New("Bran", LineageDwarf, VocationCleric, dice.Script(3))
	if want := 8 + 2*Modifier(cleric.Stats.WIS); cleric.MaxMP != want {
		t.Fatalf("cleric mp = %d, want %d", cleric.MaxMP, want)
	}
	if cleric.ArmorClass != 13 {
		t.Fatalf("cleric ac = %d, want 13", cleric.ArmorClass)
	}
}

func TestUnknownTagsFallBackToDefaults(t *testing.T) {
	if _, ok := ParseLineage("gnome"); ok {
		t.Fatal("expected gnome to be unknown")
	}
	if got := ResolveLineage("gnome"); got != DefaultLineage {
		t.Fatalf("ResolveLineage = %q, want %q", got, DefaultLineage)
	}
	if got := ResolveVocation("bard"); got != DefaultVocation {
		t.Fatalf("ResolveVocation = %q, want %q", got, DefaultVocation)
	}
	if got, ok := ParseVocation("  MaGe "); !ok || got != VocationMage {
		t.Fatalf("ParseVocation = %q, %v", got, ok)
	}

	fallback := New("X", Lineage("gnome"), Vocation("bard"), dice.Script(1))
	reference := New("X", LineageHuman, VocationWarrior, dice.Script(1))
	if fallback.Lineage != LineageHuman || fallback.Vocation != VocationWarrior {
		t.Fatalf("fallback tags = %q %q", fallback.Lineage, fallback.Vocation)
	}
	if fallback.Stats != reference.Stats || fallback.MaxHP != reference.MaxHP {
		t.Fatalf("fallback stats = %+v, want %+v", fallback.Stats, reference.Stats)
	}
}

func TestStartingKitIsACopy(t *testing.T) {
	kit := VocationWarrior.StartingKit()
	kit[0].Name = "Broken"
	if VocationWarrior.StartingKit()[0].Name != "Longsword" {
		t.Fatal("starting kit table was mutated through a copy")
	}
}

func TestUseItemHealsWithoutOverflow(t *testing.T) {
	c := New("Aria", LineageHuman, VocationWarrior, dice.Script(3))
	c.CurrentHP = c.MaxHP - 3

	use := c.UseItem("health potion")
	if !use.Success {
		t.Fatalf("expected success, got %+v", use)
	}
	if use.Restored != 3 {
		t.Fatalf("restored = %d, want 3", use.Restored)
	}
	if c.CurrentHP != c.MaxHP {
		t.Fatalf("hp = %d, want %d", c.CurrentHP, c.MaxHP)
	}
	if qty := c.Inventory[c.FindItem("Health Potion")].Quantity; qty != 1 {
		t.Fatalf("quantity = %d, want 1", qty)
	}
}

func TestUseItemRemovesAtZero(t *testing.T) {
	c := New("Ilya", LineageElf, VocationMage, dice.Script(3))
	c.CurrentMP = 0
	before := len(c.Inventory)

	use := c.UseItem("Health Potion")
	if !use.Success {
		t.Fatalf("expected success, got %+v", use)
	}
	if c.FindItem("Health Potion") != -1 {
		t.Fatal("expected depleted potion to be removed")
	}
	if len(c.Inventory) != before-1 {
		t.Fatalf("inventory size = %d, want %d", len(c.Inventory), before-1)
	}

	mana := c.UseItem("Mana Potion")
	if mana.Restored != 8 || c.CurrentMP != 8 {
		t.Fatalf("mana restored = %d, mp = %d", mana.Restored, c.CurrentMP)
	}
	if c.CurrentMP > c.MaxMP {
		t.Fatalf("mp %d exceeds max %d", c.CurrentMP, c.MaxMP)
	}
}

func TestUseItemMissingLeavesStateUntouched(t *testing.T) {
	c := New("Aria", LineageHuman, VocationWarrior, dice.Script(3))
	c.CurrentHP = 1
	before := c.Clone()

	use := c.UseItem("Elixir of Life")
	if use.Success {
		t.Fatal("expected failure")
	}
	if use.Message != "You don't have any Elixir of Life to use." {
		t.Fatalf("message = %q", use.Message)
	}
	if c.CurrentHP != before.CurrentHP || len(c.Inventory) != len(before.Inventory) {
		t.Fatal("missing item changed character state")
	}
	for i := range c.Inventory {
		if c.Inventory[i] != before.Inventory[i] {
			t.Fatalf("inventory[%d] = %+v, want %+v", i, c.Inventory[i], before.Inventory[i])
		}
	}
}

func TestUseItemIgnoresNonConsumables(t *testing.T) {
	c := New("Aria", LineageHuman, VocationWarrior, dice.Script(3))
	if use := c.UseItem("Longsword"); use.Success {
		t.Fatal("expected weapons to be unusable")
	}
}

func TestUseItemEscapeIsNoOp(t *testing.T) {
	c := New("Vex", LineageHalfling, VocationRogue, dice.Script(3))
	hp, mp := c.CurrentHP, c.CurrentMP
	use := c.UseItem("Smoke Bomb")
	if !use.Success || use.Restored != 0 {
		t.Fatalf("unexpected use = %+v", use)
	}
	if use.Message != "You use Smoke Bomb." {
		t.Fatalf("message = %q", use.Message)
	}
	if c.CurrentHP != hp || c.CurrentMP != mp {
		t.Fatal("escape effect changed vitals")
	}
	if c.FindItem("Smoke Bomb") != -1 {
		t.Fatal("expected smoke bomb to be consumed")
	}
}

func TestAddLootSetsQuantityOne(t *testing.T) {
	c := New("Aria", LineageHuman, VocationWarrior, dice.Script(3))
	c.AddLoot([]Item{{Name: "Goblin Dagger", Category: CategoryWeapon, Quantity: 5}, {Name: "Shadow Dust"}})
	last := c.Inventory[len(c.Inventory)-1]
	if last.Name != "Shadow Dust" || last.Quantity != 1 || last.Category != CategoryMisc {
		t.Fatalf("last loot = %+v", last)
	}
	if c.Inventory[len(c.Inventory)-2].Quantity != 1 {
		t.Fatal("expected loot quantity reset to 1")
	}
}

func TestTakeDamageClampsAtZero(t *testing.T) {
	c := Character{CurrentHP: 3, MaxHP: 10}
	if felled := c.TakeDamage(2); felled || c.CurrentHP != 1 {
		t.Fatalf("hp = %d felled = %v", c.CurrentHP, felled)
	}
	if felled := c.TakeDamage(9); !felled || c.CurrentHP != 0 {
		t.Fatalf("hp = %d felled = %v", c.CurrentHP, felled)
	}
	if !c.Defeated() {
		t.Fatal("expected defeated at 0 hp")
	}
}

func TestDefeatedOnlyWithoutHitPoints(t *testing.T) {
	c := Character{CurrentHP: 1, MaxHP: 10}
	if c.Defeated() {
		t.Fatal("expected standing at 1 hp")
	}
	c.CurrentHP = 0
	if !c.Defeated() {
		t.Fatal("expected defeated at 0 hp")
	}
}

func TestTitleUsesDisplayLabels(t *testing.T) {
	c := New("Aria", LineageHalfling, VocationRanger, dice.Script(3))
	if got := c.Title(); got != "Aria, a Level 1 Halfling Ranger" {
		t.Fatalf("Title = %q", got)
	}
}
