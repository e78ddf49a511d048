package character

import "strings"

// Lineage is the character's ancestry.
type Lineage string

const (
	LineageHuman    Lineage = "human"
	LineageElf      Lineage = "elf"
	LineageDwarf    Lineage = "dwarf"
	LineageHalfling Lineage = "halfling"
	LineageOrc      Lineage = "orc"
)

// DefaultLineage is used when a requested lineage is not recognized.
const DefaultLineage = LineageHuman

// Vocation is the character's class.
type Vocation string

const (
	VocationWarrior Vocation = "warrior"
	VocationMage    Vocation = "mage"
	VocationRogue   Vocation = "rogue"
	VocationCleric  Vocation = "cleric"
	VocationRanger  Vocation = "ranger"
)

// DefaultVocation is used when a requested vocation is not recognized.
const DefaultVocation = VocationWarrior

// Lineages lists every lineage in display order.
var Lineages = []Lineage{LineageHuman, LineageElf, LineageDwarf, LineageHalfling, LineageOrc}

// Vocations lists every vocation in display order.
var Vocations = []Vocation{VocationWarrior, VocationMage, VocationRogue, VocationCleric, VocationRanger}

var lineageBonuses = map[Lineage]Abilities{
	LineageHuman:    {STR: 1, DEX: 1, CON: 1, INT: 1, WIS: 1, CHA: 1},
	LineageElf:      {DEX: 2, INT: 1},
	LineageDwarf:    {STR: 2, CON: 2},
	LineageHalfling: {DEX: 2, CHA: 2},
	LineageOrc:      {STR: 3, CON: 2, INT: -1},
}

// vocationProfile is one row of the vocation table.
type vocationProfile struct {
	base       Abilities
	hitDie     int
	armorBonus int
	mana       func(Abilities) int
	kit        []Item
}

func flatMana(Abilities) int { return 4 }

var vocationProfiles = map[Vocation]vocationProfile{
	VocationWarrior: {
		base:       Abilities{STR: 16, DEX: 12, CON: 15, INT: 8, WIS: 10, CHA: 10},
		hitDie:     10,
		armorBonus: 4,
		mana:       flatMana,
		kit: []Item{
			{Name: "Longsword", Category: CategoryWeapon, Damage: "1d8", Equipped: true},
			{Name: "Shield", Category: CategoryArmor, ACBonus: 2, Equipped: true},
			{Name: "Health Potion", Category: CategoryConsumable, Effect: EffectHeal, Value: 10, Quantity: 2},
		},
	},
	VocationMage: {
		base:       Abilities{STR: 8, DEX: 12, CON: 10, INT: 16, WIS: 14, CHA: 10},
		hitDie:     6,
		armorBonus: 1,
		mana:       func(a Abilities) int { return 10 + 2*Modifier(a.INT) },
		kit: []Item{
			{Name: "Staff", Category: CategoryWeapon, Damage: "1d6", Equipped: true},
			{Name: "Spellbook", Category: CategoryMisc, Equipped: true},
			{Name: "Mana Potion", Category: CategoryConsumable, Effect: EffectMana, Value: 8, Quantity: 3},
			{Name: "Health Potion", Category: CategoryConsumable, Effect: EffectHeal, Value: 10, Quantity: 1},
		},
	},
	VocationRogue: {
		base:       Abilities{STR: 10, DEX: 16, CON: 12, INT: 13, WIS: 10, CHA: 14},
		hitDie:     8,
		armorBonus: 1,
		mana:       flatMana,
		kit: []Item{
			{Name: "Daggers (pair)", Category: CategoryWeapon, Damage: "1d4+1d4", Equipped: true},
			{Name: "Lockpick Set", Category: CategoryTool, Equipped: true},
			{Name: "Health Potion", Category: CategoryConsumable, Effect: EffectHeal, Value: 10, Quantity: 2},
			{Name: "Smoke Bomb", Category: CategoryConsumable, Effect: EffectEscape, Quantity: 1},
		},
	},
	VocationCleric: {
		base:       Abilities{STR: 12, DEX: 10, CON: 14, INT: 10, WIS: 16, CHA: 13},
		hitDie:     8,
		armorBonus: 3,
		mana:       func(a Abilities) int { return 8 + 2*Modifier(a.WIS) },
		kit: []Item{
			{Name: "Mace", Category: CategoryWeapon, Damage: "1d6", Equipped: true},
			{Name: "Holy Symbol", Category: CategoryFocus, Equipped: true},
			{Name: "Health Potion", Category: CategoryConsumable, Effect: EffectHeal, Value: 10, Quantity: 3},
		},
	},
	VocationRanger: {
		base:       Abilities{STR: 13, DEX: 15, CON: 12, INT: 10, WIS: 14, CHA: 10},
		hitDie:     10,
		armorBonus: 1,
		mana:       flatMana,
		kit: []Item{
			{Name: "Longbow", Category: CategoryWeapon, Damage: "1d8", Equipped: true},
			{Name: "Short Sword", Category: CategoryWeapon, Damage: "1d6"},
			{Name: "Health Potion", Category: CategoryConsumable, Effect: EffectHeal, Value: 10, Quantity: 2},
		},
	},
}

// ParseLineage resolves a case-insensitive lineage tag.
func ParseLineage(value string) (Lineage, bool) {
	l := Lineage(strings.ToLower(strings.TrimSpace(value)))
	_, ok := lineageBonuses[l]
	return l, ok
}

// ResolveLineage parses value and falls back to DefaultLineage when unknown.
func ResolveLineage(value string) Lineage {
	if l, ok := ParseLineage(value); ok {
		return l
	}
	return DefaultLineage
}

// ParseVocation resolves a case-insensitive vocation tag.
func ParseVocation(value string) (Vocation, bool) {
	v := Vocation(strings.ToLower(strings.TrimSpace(value)))
	_, ok := vocationProfiles[v]
	return v, ok
}

// ResolveVocation parses value and falls back to DefaultVocation when unknown.
func ResolveVocation(value string) Vocation {
	if v, ok := ParseVocation(value); ok {
		return v
	}
	return DefaultVocation
}

// HitDie returns the vocation's hit die size.
func (v Vocation) HitDie() int {
	return vocationProfiles[ResolveVocation(string(v))].hitDie
}

// StartingKit returns a fresh copy of the vocation's starting inventory.
func (v Vocation) StartingKit() []Item {
	kit := vocationProfiles[ResolveVocation(string(v))].kit
	return cloneItems(kit)
}
