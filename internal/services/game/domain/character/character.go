package character

import (
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
)

const (
	// StartingXPToNext is the experience threshold for the first level-up.
	StartingXPToNext = 100
	// startingGoldDice is the number of d6 rolled for starting gold.
	startingGoldDice = 3
	// startingGoldMultiplier scales the starting gold roll.
	startingGoldMultiplier = 10
)

// Abilities holds the six ability scores.
type Abilities struct {
	STR int `json:"STR"`
	DEX int `json:"DEX"`
	CON int `json:"CON"`
	INT int `json:"INT"`
	WIS int `json:"WIS"`
	CHA int `json:"CHA"`
}

// Add returns the per-score sum of a and b.
func (a Abilities) Add(b Abilities) Abilities {
	return Abilities{
		STR: a.STR + b.STR,
		DEX: a.DEX + b.DEX,
		CON: a.CON + b.CON,
		INT: a.INT + b.INT,
		WIS: a.WIS + b.WIS,
		CHA: a.CHA + b.CHA,
	}
}

// Character is the mutable player character.
//
// Invariants: 0 <= CurrentHP <= MaxHP, 0 <= CurrentMP <= MaxMP, Level >= 1,
// XP >= 0 and XPToNext >= 1.
type Character struct {
	Name       string    `json:"name"`
	Lineage    Lineage   `json:"lineage"`
	Vocation   Vocation  `json:"vocation"`
	Stats      Abilities `json:"stats"`
	Level      int       `json:"level"`
	XP         int       `json:"xp"`
	XPToNext   int       `json:"xpToNext"`
	CurrentHP  int       `json:"currentHP"`
	MaxHP      int       `json:"maxHP"`
	CurrentMP  int       `json:"currentMP"`
	MaxMP      int       `json:"maxMP"`
	ArmorClass int       `json:"ac"`
	HitDie     int       `json:"hitDie"`
	Gold       int       `json:"gold"`
	Inventory  []Item    `json:"inventory"`
}

// Modifier converts an ability score to its bonus: floor((score-10)/2).
func Modifier(score int) int {
	delta := score - 10
	if delta < 0 && delta%2 != 0 {
		return delta/2 - 1
	}
	return delta / 2
}

// New derives a level 1 character from lineage and vocation.
//
// Unknown lineage or vocation values are expected to be resolved by the
// caller with ResolveLineage and ResolveVocation; New resolves them again so
// an unrecognized tag always yields the default row rather than a zero one.
func New(name string, lineage Lineage, vocation Vocation, roller dice.Roller) Character {
	lineage = ResolveLineage(string(lineage))
	vocation = ResolveVocation(string(vocation))
	profile := vocationProfiles[vocation]

	stats := profile.base.Add(lineageBonuses[lineage])
	maxHP := profile.hitDie + Modifier(stats.CON)
	if maxHP < 1 {
		maxHP = 1
	}
	maxMP := profile.mana(stats)
	if maxMP < 0 {
		maxMP = 0
	}

	return Character{
		Name:       name,
		Lineage:    lineage,
		Vocation:   vocation,
		Stats:      stats,
		Level:      1,
		XP:         0,
		XPToNext:   StartingXPToNext,
		CurrentHP:  maxHP,
		MaxHP:      maxHP,
		CurrentMP:  maxMP,
		MaxMP:      maxMP,
		ArmorClass: 10 + Modifier(stats.DEX) + profile.armorBonus,
		HitDie:     profile.hitDie,
		Gold:       dice.MustRoll(roller, startingGoldDice, 6) * startingGoldMultiplier,
		Inventory:  vocation.StartingKit(),
	}
}

// Clone returns a deep copy of c.
func (c Character) Clone() Character {
	c.Inventory = cloneItems(c.Inventory)
	return c
}

// AttackModifier is the better of the STR and DEX modifiers.
func (c *Character) AttackModifier() int {
	return max(Modifier(c.Stats.STR), Modifier(c.Stats.DEX))
}

// SpellModifier is the better of the INT and WIS modifiers.
func (c *Character) SpellModifier() int {
	return max(Modifier(c.Stats.INT), Modifier(c.Stats.WIS))
}

// TakeDamage subtracts amount from current HP, clamping at zero. It reports
// whether the character was felled.
func (c *Character) TakeDamage(amount int) bool {
	if amount > 0 {
		c.CurrentHP -= amount
	}
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		return true
	}
	return false
}

// Heal restores up to amount HP without exceeding MaxHP and returns the
// amount actually restored.
func (c *Character) Heal(amount int) int {
	restored := min(amount, c.MaxHP-c.CurrentHP)
	if restored < 0 {
		restored = 0
	}
	c.CurrentHP += restored
	return restored
}

// RestoreMana restores up to amount MP without exceeding MaxMP and returns
// the amount actually restored.
func (c *Character) RestoreMana(amount int) int {
	restored := min(amount, c.MaxMP-c.CurrentMP)
	if restored < 0 {
		restored = 0
	}
	c.CurrentMP += restored
	return restored
}

// SpendMana deducts cost when enough MP is available.
func (c *Character) SpendMana(cost int) bool {
	if cost < 0 || c.CurrentMP < cost {
		return false
	}
	c.CurrentMP -= cost
	return true
}

// Defeated reports whether the character has no hit points left.
func (c *Character) Defeated() bool {
	return c.CurrentHP <= 0
}
