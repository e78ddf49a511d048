package narrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/memory"
)

// combatHistoryTurns is how much conversation combat narration sees.
const combatHistoryTurns = 6

// sceneReply, enemyReply and combatReply document the reply shapes; they are
// reflected into JSON Schemas embedded in the system prompts.
type sceneReply struct {
	Narrative        string   `json:"narrative" jsonschema:"required"`
	SuggestedActions []string `json:"suggestedActions" jsonschema:"required,minItems=2,maxItems=4"`
	SceneType        string   `json:"sceneType" jsonschema:"required,enum=exploration,enum=combat,enum=dialogue,enum=rest"`
	Mood             string   `json:"mood" jsonschema:"required,enum=tense,enum=calm,enum=mysterious,enum=dangerous,enum=triumphant"`
}

type lootReply struct {
	Name  string `json:"name" jsonschema:"required"`
	Type  string `json:"type" jsonschema:"enum=weapon,enum=armor,enum=consumable,enum=misc"`
	Value int    `json:"value"`
}

type enemyReply struct {
	Name        string      `json:"name" jsonschema:"required"`
	Description string      `json:"description" jsonschema:"required"`
	Level       int         `json:"level" jsonschema:"required,minimum=1"`
	MaxHP       int         `json:"maxHP" jsonschema:"required,minimum=1"`
	AC          int         `json:"ac" jsonschema:"required"`
	AttackBonus int         `json:"attackBonus" jsonschema:"required"`
	DamageDie   int         `json:"damageDie" jsonschema:"required,enum=4,enum=6,enum=8,enum=10,enum=12"`
	DamageBonus int         `json:"damageBonus" jsonschema:"required"`
	Abilities   []string    `json:"abilities"`
	Loot        []lootReply `json:"loot"`
	XPReward    int         `json:"xpReward"`
}

type combatReply struct {
	Narrative   string `json:"narrative" jsonschema:"required"`
	EnemyAction string `json:"enemyAction" jsonschema:"required"`
	Mood        string `json:"mood" jsonschema:"required,enum=dangerous,enum=desperate,enum=triumphant,enum=tense"`
}

var (
	sceneSchema  = replySchema(&sceneReply{})
	enemySchema  = replySchema(&enemyReply{})
	combatSchema = replySchema(&combatReply{})
)

func replySchema(v any) string {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""
	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("narrator: marshal reply schema: %v", err))
	}
	return string(data)
}

const dungeonMasterPrompt = `You are an expert, dramatic, and immersive Dungeon Master for a fantasy role-playing game.

RULES:
- Narrate scenes vividly with rich sensory details (sights, sounds, smells)
- Create compelling NPCs with distinct voices and motivations
- Present meaningful choices that affect the story
- Maintain tension, mystery, and excitement
- Remember and reference past events the player has experienced
- React dynamically to player decisions and reward creativity
- Keep responses between 100 and 200 words for pacing
- Offer 2 to 4 suggested actions the player can take
- When danger is near, describe it ominously to build suspense
- Use "combat" as the scene type only when a fight cannot be avoided
- Track the player's character details and incorporate them naturally`

const combatPrompt = `You are a dramatic Dungeon Master narrating combat encounters.

RULES:
- Describe attacks, hits, and misses with dramatic flair
- Make combat feel dangerous and exciting
- Describe enemy reactions and behaviors
- Mention the environment and how it affects combat
- Keep combat narration to 50 to 100 words
- If an enemy is defeated, describe their death dramatically
- Never contradict the mechanical result you are given`

const enemyPrompt = `You are a monster creator for a fantasy role-playing game. Generate one enemy appropriate for the player's level and current scene.`

func withSchema(prompt, schema string) string {
	return prompt + "\n\nReply with a single JSON object, and nothing else, matching this JSON Schema:\n" + schema
}

// chatMessage is a provider-neutral prompt line.
type chatMessage struct {
	Role    string
	Content string
}

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

func historyMessages(history []memory.Message) []chatMessage {
	out := make([]chatMessage, 0, len(history))
	for _, m := range history {
		role := roleUser
		if m.Role == memory.RoleAssistant {
			role = roleAssistant
		}
		out = append(out, chatMessage{Role: role, Content: m.Content})
	}
	return out
}

func sceneMessages(req SceneRequest) []chatMessage {
	msgs := []chatMessage{{Role: roleSystem, Content: withSchema(dungeonMasterPrompt, sceneSchema)}}

	if summary := strings.TrimSpace(req.Context.Summary); summary != "" {
		msgs = append(msgs, chatMessage{Role: roleSystem, Content: "STORY SO FAR: " + summary})
	}

	c := req.Context.Character
	msgs = append(msgs, chatMessage{Role: roleSystem, Content: fmt.Sprintf(
		"PLAYER CHARACTER: %s. HP: %d/%d, MP: %d/%d. Stats: STR %d, DEX %d, CON %d, INT %d, WIS %d, CHA %d. Inventory: %s. Gold: %d.",
		c.Title(), c.CurrentHP, c.MaxHP, c.CurrentMP, c.MaxMP,
		c.Stats.STR, c.Stats.DEX, c.Stats.CON, c.Stats.INT, c.Stats.WIS, c.Stats.CHA,
		c.InventoryNames(), c.Gold,
	)})

	if len(req.Context.StoryFlags) > 0 {
		flags, err := json.Marshal(req.Context.StoryFlags)
		if err == nil {
			msgs = append(msgs, chatMessage{Role: roleSystem, Content: "IMPORTANT STORY EVENTS: " + string(flags)})
		}
	}

	msgs = append(msgs, historyMessages(req.Context.History)...)
	return append(msgs, chatMessage{Role: roleUser, Content: req.Intent})
}

func enemyMessages(req EnemyRequest) []chatMessage {
	return []chatMessage{
		{Role: roleSystem, Content: withSchema(enemyPrompt, enemySchema)},
		{Role: roleUser, Content: fmt.Sprintf("Player level: %d. Scene: %s. Generate an appropriate enemy.", max(1, req.PlayerLevel), req.Scene)},
	}
}

func combatMessages(req CombatRequest) []chatMessage {
	c, e := req.Character, req.Enemy
	msgs := []chatMessage{
		{Role: roleSystem, Content: withSchema(combatPrompt, combatSchema)},
		{Role: roleSystem, Content: fmt.Sprintf(
			"PLAYER: %s (%s %s), HP: %d/%d. ENEMY: %s, HP: %d/%d.",
			c.Name, c.Lineage.Label(), c.Vocation.Label(), c.CurrentHP, c.MaxHP,
			e.Name, e.CurrentHP, e.MaxHP,
		)},
	}
	history := req.History
	if len(history) > combatHistoryTurns {
		history = history[len(history)-combatHistoryTurns:]
	}
	msgs = append(msgs, historyMessages(history)...)
	return append(msgs, chatMessage{Role: roleUser, Content: describeOutcome(req.Intent, req.Outcome)})
}

func describeOutcome(intent string, outcome combat.Entry) string {
	return fmt.Sprintf("Player action: %s. Result: %s (Roll: %d, Damage: %d)",
		intent, outcome.Message, outcome.AttackRoll, outcome.Damage)
}
