package narrator

import (
	"context"
	"sync/atomic"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
)

// Offline is a deterministic narrator for play without a language model.
// Scenes rotate through a fixed set; enemies are level-scaled Shadow Goblins.
type Offline struct {
	next atomic.Uint64
}

// NewOffline creates an offline narrator.
func NewOffline() *Offline {
	return &Offline{}
}

// GenerateScene returns the next canned scene.
func (o *Offline) GenerateScene(ctx context.Context, _ SceneRequest) (Scene, error) {
	if err := ctx.Err(); err != nil {
		return Scene{}, err
	}
	i := o.next.Add(1) - 1
	return cannedScene(int(i % uint64(len(cannedScenes)))), nil
}

// GenerateEnemy returns a Shadow Goblin scaled to the player's level.
func (o *Offline) GenerateEnemy(ctx context.Context, req EnemyRequest) (combat.Enemy, error) {
	if err := ctx.Err(); err != nil {
		return combat.Enemy{}, err
	}
	return FallbackEnemy(req.PlayerLevel), nil
}

// NarrateCombat echoes the mechanical outcome.
func (o *Offline) NarrateCombat(ctx context.Context, req CombatRequest) (CombatNarration, error) {
	if err := ctx.Err(); err != nil {
		return CombatNarration{}, err
	}
	return CombatNarration{
		Narrative:   req.Outcome.Message,
		EnemyAction: offlineEnemyAction,
		Mood:        DefaultCombatMood,
	}, nil
}
