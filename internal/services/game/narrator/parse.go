package narrator

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

// extractObject strips code fences and surrounding chatter, returning the
// outermost JSON object in raw.
func extractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return "", ErrMalformedReply
	}
	obj := raw[start : end+1]
	if !gjson.Valid(obj) {
		return "", ErrMalformedReply
	}
	return obj, nil
}

// parseScene reads a scene reply, defaulting anything missing.
func parseScene(raw string) (Scene, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return Scene{}, err
	}
	reply := gjson.Parse(obj)

	narrative := strings.TrimSpace(reply.Get("narrative").String())
	if narrative == "" {
		return Scene{}, ErrMalformedReply
	}

	actions := make([]string, 0, MaxSuggestedActions)
	for _, a := range reply.Get("suggestedActions").Array() {
		action := strings.TrimSpace(strings.TrimLeft(a.String(), "►•-* "))
		if action == "" {
			continue
		}
		actions = append(actions, action)
		if len(actions) == MaxSuggestedActions {
			break
		}
	}

	mood := strings.ToLower(strings.TrimSpace(reply.Get("mood").String()))
	if mood == "" {
		mood = DefaultSceneMood
	}

	return Scene{
		Narrative:        narrative,
		SuggestedActions: actions,
		SceneType:        session.ParseSceneType(reply.Get("sceneType").String()),
		Mood:             mood,
	}, nil
}

// parseEnemy reads an enemy reply. Missing stats take the engine defaults
// and the level defaults to the player's.
func parseEnemy(raw string, playerLevel int) (combat.Enemy, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return combat.Enemy{}, err
	}
	reply := gjson.Parse(obj)

	e := combat.Enemy{
		Name:        stringOr(reply.Get("name"), combat.DefaultEnemyName),
		Description: strings.TrimSpace(reply.Get("description").String()),
		Level:       intOr(reply.Get("level"), max(1, playerLevel)),
		MaxHP:       intOr(reply.Get("maxHP"), combat.DefaultEnemyMaxHP),
		ArmorClass:  presentOr(reply.Get("ac"), combat.DefaultEnemyArmorClass),
		AttackBonus: presentOr(reply.Get("attackBonus"), combat.DefaultEnemyAttackBonus),
		DamageDie:   intOr(reply.Get("damageDie"), combat.DefaultEnemyDamageDie),
		DamageBonus: presentOr(reply.Get("damageBonus"), combat.DefaultEnemyDamageBonus),
		XPReward:    int(reply.Get("xpReward").Int()),
	}
	for _, a := range reply.Get("abilities").Array() {
		if ability := strings.TrimSpace(a.String()); ability != "" {
			e.Abilities = append(e.Abilities, ability)
		}
	}
	for _, l := range reply.Get("loot").Array() {
		name := strings.TrimSpace(l.Get("name").String())
		if name == "" {
			continue
		}
		e.Loot = append(e.Loot, character.Item{
			Name:     name,
			Category: lootCategory(l.Get("type").String()),
			Value:    int(l.Get("value").Int()),
		})
	}
	return e.Normalize(), nil
}

// parseCombat reads a combat narration reply. An empty narrative falls back
// to the mechanical message.
func parseCombat(raw string, outcome combat.Entry) (CombatNarration, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return CombatNarration{}, err
	}
	reply := gjson.Parse(obj)
	return CombatNarration{
		Narrative:   stringOr(reply.Get("narrative"), outcome.Message),
		EnemyAction: strings.TrimSpace(reply.Get("enemyAction").String()),
		Mood:        strings.ToLower(stringOr(reply.Get("mood"), DefaultCombatMood)),
	}, nil
}

func lootCategory(value string) character.Category {
	switch c := character.Category(strings.ToLower(strings.TrimSpace(value))); c {
	case character.CategoryWeapon, character.CategoryArmor, character.CategoryConsumable,
		character.CategoryTool, character.CategoryFocus, character.CategoryMisc:
		return c
	default:
		return character.CategoryMisc
	}
}

func stringOr(r gjson.Result, fallback string) string {
	if s := strings.TrimSpace(r.String()); s != "" {
		return s
	}
	return fallback
}

// intOr accepts numbers and numeric strings; zero and absent values fall back.
func intOr(r gjson.Result, fallback int) int {
	if !r.Exists() {
		return fallback
	}
	if v := int(r.Int()); v != 0 {
		return v
	}
	return fallback
}

// presentOr keeps any value the reply states, zero included.
func presentOr(r gjson.Result, fallback int) int {
	if !r.Exists() || r.Type == gjson.Null {
		return fallback
	}
	return int(r.Int())
}
