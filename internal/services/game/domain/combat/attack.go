package combat

import (
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
)

const (
	naturalFumble   = 1
	naturalCritical = 20
	// PlayerWeaponDie is the damage die for player weapon attacks.
	PlayerWeaponDie = 8
)

// AttackRequest describes one attack roll against a target.
type AttackRequest struct {
	Modifier    int
	TargetAC    int
	DamageDie   int
	DamageBonus int
}

// AttackResult captures the numbers behind an attack roll.
type AttackResult struct {
	Hit         bool
	Critical    bool
	Fumble      bool
	AttackRoll  int
	TotalAttack int
	DamageRoll  int
	Damage      int
}

// ResolveAttack rolls a d20 attack and, on a hit, its damage.
//
// A natural 1 always misses for zero damage. A natural 20 always hits and
// doubles damage. Otherwise the attack hits when roll + modifier meets the
// target's armor class. Damage is max(1, die + bonus), doubled on a
// critical.
func ResolveAttack(r dice.Roller, req AttackRequest) AttackResult {
	roll := dice.D20(r)
	result := AttackResult{AttackRoll: roll, TotalAttack: roll + req.Modifier}

	switch {
	case roll == naturalFumble:
		result.Fumble = true
		return result
	case roll == naturalCritical:
		result.Critical = true
		result.Hit = true
	case result.TotalAttack >= req.TargetAC:
		result.Hit = true
	default:
		return result
	}

	die := req.DamageDie
	if die < 1 {
		die = DefaultEnemyDamageDie
	}
	result.DamageRoll = r.Roll(die)
	result.Damage = max(1, result.DamageRoll+req.DamageBonus)
	if result.Critical {
		result.Damage *= 2
	}
	return result
}
