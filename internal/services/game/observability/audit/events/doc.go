// Package events defines canonical game audit event names.
package events

const (
	// SessionStarted is recorded when a new adventure begins.
	SessionStarted = "game.session.started"
	// EncounterStarted is recorded when a scene turns into combat.
	EncounterStarted = "game.encounter.started"
	// EncounterEnded is recorded when combat ends in victory, flight or defeat.
	EncounterEnded = "game.encounter.ended"
	// CharacterLeveled is recorded when a victory grants a new level.
	CharacterLeveled = "game.character.leveled"
	// NarratorFallback is recorded when a narrator failure was replaced by a fallback.
	NarratorFallback = "game.narrator.fallback"
)
