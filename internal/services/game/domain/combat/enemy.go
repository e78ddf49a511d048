package combat

import (
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
)

// Defaults applied to enemy fields the narrator leaves unset.
const (
	DefaultEnemyName        = "Unknown Foe"
	DefaultEnemyMaxHP       = 10
	DefaultEnemyArmorClass  = 12
	DefaultEnemyAttackBonus = 3
	DefaultEnemyDamageDie   = 6
	DefaultEnemyDamageBonus = 2
)

// Enemy is a single adversary in an encounter.
//
// CurrentHP may drop below zero while an exchange resolves; it is clamped to
// zero before the enemy is reported.
type Enemy struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Level       int              `json:"level"`
	CurrentHP   int              `json:"currentHP"`
	MaxHP       int              `json:"maxHP"`
	ArmorClass  int              `json:"ac"`
	AttackBonus int              `json:"attackBonus"`
	DamageDie   int              `json:"damageDie"`
	DamageBonus int              `json:"damageBonus"`
	Abilities   []string         `json:"abilities,omitempty"`
	Loot        []character.Item `json:"loot,omitempty"`
	XPReward    int              `json:"xpReward,omitempty"`
}

// Normalize repairs values that would make resolution impossible.
func (e Enemy) Normalize() Enemy {
	if e.Name == "" {
		e.Name = DefaultEnemyName
	}
	if e.Level < 1 {
		e.Level = 1
	}
	if e.MaxHP < 1 {
		e.MaxHP = DefaultEnemyMaxHP
	}
	if e.DamageDie < 1 {
		e.DamageDie = DefaultEnemyDamageDie
	}
	if e.XPReward < 0 {
		e.XPReward = 0
	}
	return e
}

// Clone returns a deep copy of e.
func (e Enemy) Clone() Enemy {
	if e.Abilities != nil {
		e.Abilities = append([]string(nil), e.Abilities...)
	}
	if e.Loot != nil {
		e.Loot = append([]character.Item(nil), e.Loot...)
	}
	return e
}

// Defeated reports whether the enemy has no hit points left.
func (e *Enemy) Defeated() bool {
	return e.CurrentHP <= 0
}

// clampHP pins a negative CurrentHP to zero.
func (e *Enemy) clampHP() {
	if e.CurrentHP < 0 {
		e.CurrentHP = 0
	}
}

// XPReward is the experience granted for defeating e: its explicit reward
// when set, otherwise level×25 + maxHP.
func XPReward(e Enemy) int {
	if e.XPReward > 0 {
		return e.XPReward
	}
	level := e.Level
	if level < 1 {
		level = 1
	}
	maxHP := e.MaxHP
	if maxHP < 1 {
		maxHP = DefaultEnemyMaxHP
	}
	return level*25 + maxHP
}
