package narrator

import (
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

const (
	fallbackScenePrefix     = "The path ahead shifts and changes... "
	fallbackEnemyAction     = "The enemy readies another attack."
	offlineEnemyAction      = "The enemy snarls and prepares to strike back."
	shadowGoblinBaseHP      = 8
	shadowGoblinHPPerLevel  = 5
	shadowGoblinXPReward    = 35
	shadowGoblinArmorClass  = 13
	shadowGoblinAttackBonus = 4
	shadowGoblinDamageDie   = 6
	shadowGoblinDamageBonus = 2
)

var cannedScenes = []Scene{
	{
		Narrative: "You step into a vast underground chamber. Bioluminescent mushrooms cast an eerie blue glow across jagged stalactites. " +
			"The air is thick with moisture and the distant sound of dripping water echoes through the darkness. A narrow path winds " +
			"between pools of stagnant water, and you notice strange scratch marks along the stone walls. Something large has been here recently.\n\n" +
			"Ahead, the path splits: one route leads deeper into shadow, while the other slopes upward toward a faint orange glow.",
		SuggestedActions: []string{
			"Follow the path toward the orange glow",
			"Investigate the scratch marks on the walls",
			"Descend deeper into the shadows",
			"Search the mushroom clusters for useful ingredients",
		},
		SceneType: session.SceneExploration,
		Mood:      "mysterious",
	},
	{
		Narrative: "A guttural growl reverberates through the cavern as a hulking figure emerges from behind a boulder. Matted fur, " +
			"yellow eyes, and jagged claws: a Cave Troll blocks your path. It sniffs the air, catching your scent, and lets out a " +
			"thunderous roar that shakes loose pebbles from the ceiling above.\n\n" +
			"The troll hefts a crude stone club and lurches toward you. There's no avoiding this fight.",
		SuggestedActions: []string{
			"Draw your weapon and attack!",
			"Try to dodge around the troll",
			"Look for environmental advantages",
			"Attempt to intimidate the creature",
		},
		SceneType: session.SceneCombat,
		Mood:      "dangerous",
	},
	{
		Narrative: "Beyond the iron door, you discover a small sanctuary, a forgotten shrine dedicated to an ancient goddess of healing. " +
			"Soft golden light emanates from a cracked crystal at the altar's center. Tattered prayer scrolls line the walls, and a " +
			"peaceful warmth washes over you.\n\n" +
			"A spectral figure materializes, an elderly priestess, translucent and serene. \"Weary traveler,\" she whispers, " +
			"\"I have waited long for one to find this place. Rest here, and I shall share what knowledge I possess.\"",
		SuggestedActions: []string{
			"Rest at the shrine and recover HP",
			"Ask the priestess about the dungeon's history",
			"Examine the prayer scrolls",
			"Offer a prayer at the altar",
		},
		SceneType: session.SceneDialogue,
		Mood:      "calm",
	},
}

func cannedScene(i int) Scene {
	s := cannedScenes[i%len(cannedScenes)]
	s.SuggestedActions = append([]string(nil), s.SuggestedActions...)
	return s
}

// FallbackScene is used when scene generation fails.
func FallbackScene() Scene {
	s := cannedScene(0)
	s.Narrative = fallbackScenePrefix + s.Narrative
	return s
}

// FallbackEnemy is a Shadow Goblin scaled to playerLevel.
func FallbackEnemy(playerLevel int) combat.Enemy {
	level := max(1, playerLevel)
	return combat.Enemy{
		Name:        "Shadow Goblin",
		Description: "A wiry, hunched creature with obsidian-black skin that seems to absorb light. Its eyes glow with a sickly green luminescence.",
		Level:       level,
		MaxHP:       shadowGoblinBaseHP + shadowGoblinHPPerLevel*level,
		ArmorClass:  shadowGoblinArmorClass,
		AttackBonus: shadowGoblinAttackBonus,
		DamageDie:   shadowGoblinDamageDie,
		DamageBonus: shadowGoblinDamageBonus,
		Abilities:   []string{"Shadow Step", "Poison Dagger"},
		Loot: []character.Item{
			{Name: "Goblin Dagger", Category: character.CategoryWeapon, Value: 5},
			{Name: "Shadow Dust", Category: character.CategoryMisc, Value: 15},
		},
		XPReward: shadowGoblinXPReward,
	}
}

// FallbackCombat echoes the mechanical outcome when narration fails.
func FallbackCombat(outcome combat.Entry) CombatNarration {
	return CombatNarration{
		Narrative:   outcome.Message,
		EnemyAction: fallbackEnemyAction,
		Mood:        DefaultCombatMood,
	}
}
