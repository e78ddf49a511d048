package narrator

import (
	"context"
	"testing"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

func TestOfflineRotatesScenes(t *testing.T) {
	o := NewOffline()
	ctx := context.Background()
	want := []session.SceneType{session.SceneExploration, session.SceneCombat, session.SceneDialogue, session.SceneExploration}
	for i, w := range want {
		scene, err := o.GenerateScene(ctx, SceneRequest{Intent: "look"})
		if err != nil {
			t.Fatalf("scene %d: %v", i, err)
		}
		if scene.SceneType != w {
			t.Fatalf("scene %d type = %q, want %q", i, scene.SceneType, w)
		}
		if len(scene.SuggestedActions) != MaxSuggestedActions {
			t.Fatalf("scene %d actions = %v", i, scene.SuggestedActions)
		}
	}
}

func TestOfflineScenesAreIndependentCopies(t *testing.T) {
	o := NewOffline()
	first, _ := o.GenerateScene(context.Background(), SceneRequest{})
	first.SuggestedActions[0] = "mutated"
	if cannedScenes[0].SuggestedActions[0] == "mutated" {
		t.Fatal("canned scene shared with caller")
	}
}

func TestOfflineEnemyScalesWithLevel(t *testing.T) {
	o := NewOffline()
	for _, level := range []int{1, 4} {
		e, err := o.GenerateEnemy(context.Background(), EnemyRequest{PlayerLevel: level})
		if err != nil {
			t.Fatalf("enemy: %v", err)
		}
		if e.Name != "Shadow Goblin" || e.Level != level || e.MaxHP != 8+5*level || e.XPReward != 35 {
			t.Fatalf("level %d enemy = %+v", level, e)
		}
	}
	if e := FallbackEnemy(0); e.Level != 1 || e.MaxHP != 13 {
		t.Fatalf("fallback enemy = %+v", e)
	}
}

func TestOfflineCombatEchoesOutcome(t *testing.T) {
	o := NewOffline()
	n, err := o.NarrateCombat(context.Background(), CombatRequest{Outcome: combat.Entry{Message: "Miss!"}})
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if n.Narrative != "Miss!" || n.Mood != DefaultCombatMood || n.EnemyAction == "" {
		t.Fatalf("narration = %+v", n)
	}
}

func TestOfflineHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewOffline().GenerateScene(ctx, SceneRequest{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestFallbacks(t *testing.T) {
	scene := FallbackScene()
	if scene.SceneType != session.SceneExploration || scene.Narrative[:len(fallbackScenePrefix)] != fallbackScenePrefix {
		t.Fatalf("fallback scene = %+v", scene)
	}
	again := FallbackScene()
	if again.Narrative != scene.Narrative {
		t.Fatal("fallback scene prefix accumulated")
	}
	n := FallbackCombat(combat.Entry{Message: "Hit!"})
	if n.Narrative != "Hit!" || n.EnemyAction != fallbackEnemyAction {
		t.Fatalf("fallback combat = %+v", n)
	}
}
