// Package progression applies experience and level-up rules to a character.
package progression

import (
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
)

const (
	// manaPerLevel is the flat MP gained on every level-up.
	manaPerLevel = 2
	// thresholdGrowthNum/thresholdGrowthDen scale xpToNext by 1.5 per level.
	thresholdGrowthNum = 3
	thresholdGrowthDen = 2
)

// Result reports a level-up check.
type Result struct {
	LeveledUp bool `json:"leveledUp"`
	NewLevel  int  `json:"newLevel,omitempty"`
	HPGain    int  `json:"hpGain,omitempty"`
}

// AwardXP adds a non-negative amount of experience.
func AwardXP(c *character.Character, xp int) {
	if xp > 0 {
		c.XP += xp
	}
}

// NextThreshold returns floor(current × 1.5).
func NextThreshold(current int) int {
	next := current * thresholdGrowthNum / thresholdGrowthDen
	if next < 1 {
		return 1
	}
	return next
}

// CheckLevelUp applies at most one level when XP has reached XPToNext.
//
// Overflow experience carries into the next level; callers that award very
// large amounts must call again to apply further levels. On level-up the hit
// die plus CON modifier (minimum 1) is added to max HP, max MP grows by 2, and
// both vitals are fully restored.
func CheckLevelUp(roller dice.Roller, c *character.Character) Result {
	if c.XPToNext < 1 || c.XP < c.XPToNext {
		return Result{}
	}

	c.Level++
	c.XP -= c.XPToNext
	c.XPToNext = NextThreshold(c.XPToNext)

	hitDie := c.HitDie
	if hitDie < 1 {
		hitDie = c.Vocation.HitDie()
	}
	gain := dice.MustRoll(roller, 1, hitDie) + character.Modifier(c.Stats.CON)
	if gain < 1 {
		gain = 1
	}
	c.MaxHP += gain
	c.CurrentHP = c.MaxHP

	c.MaxMP += manaPerLevel
	c.CurrentMP = c.MaxMP

	return Result{LeveledUp: true, NewLevel: c.Level, HPGain: gain}
}
