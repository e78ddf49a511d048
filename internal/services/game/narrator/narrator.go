// Package narrator turns game state into prose.
//
// The narrator is an external, non-deterministic oracle. Only the structured
// data it returns is relied upon; callers treat every error as recoverable
// and substitute the deterministic fallbacks in this package.
package narrator

import (
	"context"
	"errors"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/memory"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

// MaxSuggestedActions caps the suggestions kept from a scene.
const MaxSuggestedActions = 4

// Moods used when a reply omits one.
const (
	DefaultSceneMood  = "mysterious"
	DefaultCombatMood = "dangerous"
)

// ErrMalformedReply indicates a reply that is not a JSON object.
var ErrMalformedReply = errors.New("narrator reply is not a JSON object")

// Context is what the narrator knows about a session.
type Context struct {
	Character  character.Character
	StoryFlags map[string]any
	Summary    string
	History    []memory.Message
}

// SceneRequest asks for the next scene after the player's intent.
type SceneRequest struct {
	Context Context
	Intent  string
}

// Scene is a generated scene.
type Scene struct {
	Narrative        string            `json:"narrative"`
	SuggestedActions []string          `json:"suggestedActions"`
	SceneType        session.SceneType `json:"sceneType"`
	Mood             string            `json:"mood"`
}

// EnemyRequest asks for an adversary fitting the scene.
type EnemyRequest struct {
	PlayerLevel int
	Scene       string
}

// CombatRequest asks for narration of a resolved exchange.
type CombatRequest struct {
	Character character.Character
	Enemy     combat.Enemy
	Intent    string
	Outcome   combat.Entry
	History   []memory.Message
}

// CombatNarration describes a resolved exchange.
type CombatNarration struct {
	Narrative   string `json:"narrative"`
	EnemyAction string `json:"enemyAction"`
	Mood        string `json:"mood"`
}

// Narrator produces scenes, enemies and combat narration.
type Narrator interface {
	GenerateScene(ctx context.Context, req SceneRequest) (Scene, error)
	GenerateEnemy(ctx context.Context, req EnemyRequest) (combat.Enemy, error)
	NarrateCombat(ctx context.Context, req CombatRequest) (CombatNarration, error)
}
