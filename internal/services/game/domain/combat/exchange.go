package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/progression"
)

const (
	// SpellCost is the MP spent per spell.
	SpellCost = 3
	// FleeDifficulty is the d20 + DEX target to escape.
	FleeDifficulty = 12
)

// ErrNoActiveCombat indicates an exchange was requested outside an encounter.
var ErrNoActiveCombat = errors.New("no active combat")

// Action is a player combat intent.
type Action string

const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionSpell  Action = "spell"
	ActionItem   Action = "item"
	ActionFlee   Action = "flee"
)

// ParseAction resolves a case-insensitive action name.
func ParseAction(value string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(value)))
	switch a {
	case ActionAttack, ActionDefend, ActionSpell, ActionItem, ActionFlee:
		return a, true
	default:
		return a, false
	}
}

// Actor identifies who produced a combat log entry.
type Actor string

const (
	ActorPlayer Actor = "player"
	ActorEnemy  Actor = "enemy"
	ActorSystem Actor = "system"
)

// Entry is one line of the combat log.
type Entry struct {
	Actor       Actor  `json:"actor"`
	Hit         bool   `json:"hit"`
	Critical    bool   `json:"critical"`
	Fumble      bool   `json:"fumble"`
	AttackRoll  int    `json:"attackRoll,omitempty"`
	TotalAttack int    `json:"totalAttack,omitempty"`
	Damage      int    `json:"damage"`
	Message     string `json:"message"`
}

// Exchange is the result of one resolved player intent.
type Exchange struct {
	Action         Action
	Log            []Entry
	Ended          bool
	Victory        bool
	Fled           bool
	PlayerDefeated bool
	XPAwarded      int
	Loot           []character.Item
	LevelUp        progression.Result
	// Enemy is the engaged enemy after the exchange, HP clamped at zero.
	Enemy Enemy
}

// Lead returns the first log entry, which narrators describe.
func (x Exchange) Lead() Entry {
	if len(x.Log) == 0 {
		return Entry{Actor: ActorSystem}
	}
	return x.Log[0]
}

func (x *Exchange) add(e Entry) {
	x.Log = append(x.Log, e)
}

// Resolve dispatches action against the active encounter.
//
// itemName selects the consumable for ActionItem and defaults to
// character.DefaultCombatItem. Unrecognized actions produce a single system
// entry and leave all state untouched.
func Resolve(r dice.Roller, c *character.Character, st *State, action string, itemName string) (Exchange, error) {
	enemy, ok := st.Enemy()
	if !ok {
		return Exchange{}, ErrNoActiveCombat
	}
	parsed, known := ParseAction(action)

	var x Exchange
	switch {
	case !known:
		x = Exchange{Action: parsed}
		x.add(Entry{Actor: ActorSystem, Message: "Unknown action. Use: attack, defend, spell, item, or flee."})
		x.Enemy = enemy.Clone()
		return x, nil
	case parsed == ActionAttack:
		x = Attack(r, c, st)
	case parsed == ActionDefend:
		x = Defend(r, c, st)
	case parsed == ActionSpell:
		x = Spell(r, c, st)
	case parsed == ActionItem:
		x = UseItem(r, c, st, itemName)
	case parsed == ActionFlee:
		x = Flee(r, c, st)
	}
	return x, nil
}

// Attack resolves a weapon attack followed by the enemy's counter-attack
// when the enemy survives.
func Attack(r dice.Roller, c *character.Character, st *State) Exchange {
	x := Exchange{Action: ActionAttack}
	enemy, ok := st.Enemy()
	if !ok {
		return x
	}

	mod := c.AttackModifier()
	res := ResolveAttack(r, AttackRequest{
		Modifier:    mod,
		TargetAC:    enemy.ArmorClass,
		DamageDie:   PlayerWeaponDie,
		DamageBonus: mod,
	})
	x.add(Entry{
		Actor:       ActorPlayer,
		Hit:         res.Hit,
		Critical:    res.Critical,
		Fumble:      res.Fumble,
		AttackRoll:  res.AttackRoll,
		TotalAttack: res.TotalAttack,
		Damage:      res.Damage,
		Message:     playerAttackMessage(res, enemy.ArmorClass),
	})
	if res.Hit {
		enemy.CurrentHP -= res.Damage
	}

	if enemy.Defeated() {
		claimVictory(r, c, enemy, &x)
	} else {
		counterAttack(r, c, enemy, &x, false)
	}
	finishRound(st, enemy, &x)
	return x
}

// Defend skips the player's offense and halves the enemy's damage
// (floored, minimum 1).
func Defend(r dice.Roller, c *character.Character, st *State) Exchange {
	x := Exchange{Action: ActionDefend}
	enemy, ok := st.Enemy()
	if !ok {
		return x
	}
	x.add(Entry{Actor: ActorPlayer, Message: "You raise your guard and brace for impact."})
	counterAttack(r, c, enemy, &x, true)
	finishRound(st, enemy, &x)
	return x
}

// Spell spends SpellCost MP to deal 2d6 plus the better of the INT and WIS
// modifiers, with no attack roll.
//
// Without enough MP the exchange is a no-op: nothing is spent, the enemy
// does not act and the round does not advance.
func Spell(r dice.Roller, c *character.Character, st *State) Exchange {
	x := Exchange{Action: ActionSpell}
	enemy, ok := st.Enemy()
	if !ok {
		return x
	}
	if !c.SpendMana(SpellCost) {
		x.add(Entry{Actor: ActorSystem, Message: "Not enough MP to cast a spell!"})
		x.Enemy = enemy.Clone()
		return x
	}

	damage := max(0, dice.MustRoll(r, 2, 6)+c.SpellModifier())
	enemy.CurrentHP -= damage
	x.add(Entry{
		Actor:   ActorPlayer,
		Hit:     true,
		Damage:  damage,
		Message: fmt.Sprintf("You channel arcane energy and blast the enemy for %d damage!", damage),
	})

	if enemy.Defeated() {
		claimVictory(r, c, enemy, &x)
	} else {
		counterAttack(r, c, enemy, &x, false)
	}
	finishRound(st, enemy, &x)
	return x
}

// UseItem consumes an inventory item; the enemy always counter-attacks
// because using an item costs the player's turn.
func UseItem(r dice.Roller, c *character.Character, st *State, itemName string) Exchange {
	x := Exchange{Action: ActionItem}
	enemy, ok := st.Enemy()
	if !ok {
		return x
	}
	if strings.TrimSpace(itemName) == "" {
		itemName = character.DefaultCombatItem
	}
	use := c.UseItem(itemName)
	x.add(Entry{Actor: ActorPlayer, Message: use.Message})
	counterAttack(r, c, enemy, &x, false)
	finishRound(st, enemy, &x)
	return x
}

// Flee attempts to escape with d20 + DEX modifier against FleeDifficulty.
// A failed attempt gives the enemy a free attack.
func Flee(r dice.Roller, c *character.Character, st *State) Exchange {
	x := Exchange{Action: ActionFlee}
	enemy, ok := st.Enemy()
	if !ok {
		return x
	}
	check := dice.D20(r) + character.Modifier(c.Stats.DEX)
	if check >= FleeDifficulty {
		x.add(Entry{Actor: ActorSystem, Message: "You manage to escape!"})
		x.Ended = true
		x.Fled = true
	} else {
		x.add(Entry{Actor: ActorSystem, Message: "You fail to escape!"})
		counterAttack(r, c, enemy, &x, false)
	}
	finishRound(st, enemy, &x)
	return x
}

// counterAttack resolves the enemy's attack on the player. When guarded,
// damage is halved (floored, minimum 1). It reports whether the player fell.
func counterAttack(r dice.Roller, c *character.Character, enemy *Enemy, x *Exchange, guarded bool) bool {
	res := ResolveAttack(r, AttackRequest{
		Modifier:    enemy.AttackBonus,
		TargetAC:    c.ArmorClass,
		DamageDie:   enemy.DamageDie,
		DamageBonus: enemy.DamageBonus,
	})
	entry := Entry{
		Actor:       ActorEnemy,
		Hit:         res.Hit,
		Critical:    res.Critical,
		Fumble:      res.Fumble,
		AttackRoll:  res.AttackRoll,
		TotalAttack: res.TotalAttack,
		Damage:      res.Damage,
		Message:     enemyAttackMessage(res, enemy.Name),
	}
	if res.Hit && guarded {
		entry.Damage = max(1, res.Damage/2)
		entry.Message = fmt.Sprintf("%s (Reduced to %d by your guard!)", entry.Message, entry.Damage)
	}
	x.add(entry)

	if !res.Hit {
		return false
	}
	if !c.TakeDamage(entry.Damage) {
		return false
	}
	x.add(Entry{Actor: ActorSystem, Message: "You have fallen in battle..."})
	x.Ended = true
	x.PlayerDefeated = true
	return true
}

// claimVictory awards experience and loot for a defeated enemy.
func claimVictory(r dice.Roller, c *character.Character, enemy *Enemy, x *Exchange) {
	xp := XPReward(*enemy)
	progression.AwardXP(c, xp)
	c.AddLoot(enemy.Loot)
	x.XPAwarded = xp
	x.Loot = append([]character.Item(nil), enemy.Loot...)
	x.LevelUp = progression.CheckLevelUp(r, c)

	msg := fmt.Sprintf("%s defeated! Gained %d XP.", enemy.Name, xp)
	if x.LevelUp.LeveledUp {
		msg += fmt.Sprintf(" LEVEL UP! Now level %d!", x.LevelUp.NewLevel)
	}
	x.add(Entry{Actor: ActorSystem, Message: msg})
	x.Ended = true
	x.Victory = true
}

// finishRound snapshots the enemy, then either closes the encounter or
// advances the round.
func finishRound(st *State, enemy *Enemy, x *Exchange) {
	enemy.clampHP()
	x.Enemy = enemy.Clone()
	if x.Ended {
		st.End()
		return
	}
	st.Round++
}

func playerAttackMessage(res AttackResult, targetAC int) string {
	switch {
	case res.Fumble:
		return "Critical fumble! Your attack goes wildly astray!"
	case res.Critical:
		return fmt.Sprintf("CRITICAL HIT! You deal %d damage!", res.Damage)
	case res.Hit:
		return fmt.Sprintf("Hit! You deal %d damage.", res.Damage)
	default:
		return fmt.Sprintf("Miss! Your attack roll of %d doesn't beat AC %d.", res.TotalAttack, targetAC)
	}
}

func enemyAttackMessage(res AttackResult, name string) string {
	switch {
	case res.Fumble:
		return fmt.Sprintf("%s fumbles!", name)
	case res.Critical:
		return fmt.Sprintf("CRITICAL! %s hits for %d damage!", name, res.Damage)
	case res.Hit:
		return fmt.Sprintf("%s hits for %d damage.", name, res.Damage)
	default:
		return fmt.Sprintf("%s misses!", name)
	}
}
