package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/memory"
)

type chatRequest struct {
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type fakeProvider struct {
	calls    atomic.Int32
	statuses []int
	content  string
	last     atomic.Pointer[chatRequest]
	authz    atomic.Value
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(f.calls.Add(1))
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	f.authz.Store(r.Header.Get("Authorization"))

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.last.Store(&req)

	if n <= len(f.statuses) && f.statuses[n-1] != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.statuses[n-1])
		_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1,
		"model":   req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": f.content},
		}},
	})
}

func newTestNarrator(t *testing.T, f *fakeProvider, tries uint) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	n, err := NewOpenAI(Config{
		APIKey:               "test-key",
		BaseURL:              srv.URL + "/v1",
		Model:                "test-model",
		Timeout:              5 * time.Second,
		MaxTries:             tries,
		RetryInitialInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new narrator: %v", err)
	}
	return n
}

func testContext() Context {
	c := character.New("Aria", character.LineageElf, character.VocationRogue, dice.Script(3))
	return Context{
		Character:  c,
		StoryFlags: map[string]any{"savedMerchant": true},
		Summary:    "\nThe gate fell.",
		History: []memory.Message{
			{Role: memory.RoleUser, Content: "enter"},
			{Role: memory.RoleAssistant, Content: "You enter."},
		},
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(Config{}); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestGenerateSceneRequestShape(t *testing.T) {
	f := &fakeProvider{content: "```json\n{\"narrative\":\"Dust falls.\",\"suggestedActions\":[\"Look up\"],\"sceneType\":\"rest\",\"mood\":\"calm\"}\n```"}
	n := newTestNarrator(t, f, 1)

	scene, err := n.GenerateScene(context.Background(), SceneRequest{Context: testContext(), Intent: "I sit down"})
	if err != nil {
		t.Fatalf("generate scene: %v", err)
	}
	if scene.Narrative != "Dust falls." || scene.SceneType != "rest" || scene.Mood != "calm" {
		t.Fatalf("scene = %+v", scene)
	}

	req := f.last.Load()
	if req.Model != "test-model" || req.ResponseFormat.Type != "json_object" {
		t.Fatalf("request = %+v", req)
	}
	if req.Temperature != 0.85 || req.MaxTokens != 500 {
		t.Fatalf("temperature %v max tokens %d", req.Temperature, req.MaxTokens)
	}
	if got := f.authz.Load(); got != "Bearer test-key" {
		t.Fatalf("authorization = %v", got)
	}

	msgs := req.Messages
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "JSON Schema") {
		t.Fatalf("first message = %+v", msgs[0])
	}
	var sawSummary, sawCharacter, sawFlags bool
	for _, m := range msgs {
		sawSummary = sawSummary || strings.HasPrefix(m.Content, "STORY SO FAR:")
		sawCharacter = sawCharacter || strings.Contains(m.Content, "Aria, a Level 1 Elf Rogue")
		sawFlags = sawFlags || strings.Contains(m.Content, `"savedMerchant":true`)
	}
	if !sawSummary || !sawCharacter || !sawFlags {
		t.Fatalf("context messages missing: summary %v character %v flags %v", sawSummary, sawCharacter, sawFlags)
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || last.Content != "I sit down" {
		t.Fatalf("last message = %+v", last)
	}
	if prev := msgs[len(msgs)-2]; prev.Role != "assistant" || prev.Content != "You enter." {
		t.Fatalf("history message = %+v", prev)
	}
}

func TestGenerateSceneRetriesServerErrors(t *testing.T) {
	f := &fakeProvider{statuses: []int{http.StatusInternalServerError}, content: `{"narrative":"Again."}`}
	n := newTestNarrator(t, f, 2)

	scene, err := n.GenerateScene(context.Background(), SceneRequest{Context: testContext(), Intent: "x"})
	if err != nil {
		t.Fatalf("generate scene: %v", err)
	}
	if scene.Narrative != "Again." || f.calls.Load() != 2 {
		t.Fatalf("scene %+v after %d calls", scene, f.calls.Load())
	}
}

func TestGenerateSceneStopsAfterMaxTries(t *testing.T) {
	f := &fakeProvider{statuses: []int{503, 503, 503, 503}}
	n := newTestNarrator(t, f, 3)

	_, err := n.GenerateScene(context.Background(), SceneRequest{Context: testContext(), Intent: "x"})
	if !errors.Is(err, apperrors.New(apperrors.CodeNarratorUnavailable, "")) {
		t.Fatalf("err = %v", err)
	}
	if f.calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", f.calls.Load())
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	f := &fakeProvider{statuses: []int{http.StatusBadRequest, http.StatusBadRequest}}
	n := newTestNarrator(t, f, 3)

	if _, err := n.GenerateEnemy(context.Background(), EnemyRequest{PlayerLevel: 1, Scene: "cave"}); err == nil {
		t.Fatal("expected error")
	}
	if f.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", f.calls.Load())
	}
}

func TestMalformedReplyIsUnavailable(t *testing.T) {
	f := &fakeProvider{content: "I cannot do that."}
	n := newTestNarrator(t, f, 1)

	_, err := n.GenerateScene(context.Background(), SceneRequest{Context: testContext(), Intent: "x"})
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("err = %v, want %v", err, ErrMalformedReply)
	}
	if apperrors.GetCode(err) != apperrors.CodeNarratorUnavailable {
		t.Fatalf("code = %s", apperrors.GetCode(err))
	}
}

func TestGenerateEnemyAppliesDefaults(t *testing.T) {
	f := &fakeProvider{content: `{"name":"Gloom Bat","maxHP":9}`}
	n := newTestNarrator(t, f, 1)

	e, err := n.GenerateEnemy(context.Background(), EnemyRequest{PlayerLevel: 2, Scene: "A dripping tunnel."})
	if err != nil {
		t.Fatalf("generate enemy: %v", err)
	}
	if e.Name != "Gloom Bat" || e.MaxHP != 9 || e.Level != 2 || e.DamageDie != combat.DefaultEnemyDamageDie {
		t.Fatalf("enemy = %+v", e)
	}
	req := f.last.Load()
	if req.Temperature != 0.9 || req.MaxTokens != 300 {
		t.Fatalf("temperature %v max tokens %d", req.Temperature, req.MaxTokens)
	}
	if last := req.Messages[len(req.Messages)-1].Content; !strings.Contains(last, "Player level: 2. Scene: A dripping tunnel.") {
		t.Fatalf("user message = %q", last)
	}
}

func TestNarrateCombatUsesRecentHistory(t *testing.T) {
	f := &fakeProvider{content: `{"narrative":"Steel rings.","enemyAction":"It circles.","mood":"tense"}`}
	n := newTestNarrator(t, f, 1)

	history := make([]memory.Message, 10)
	for i := range history {
		history[i] = memory.Message{Role: memory.RoleUser, Content: "turn"}
	}
	req := CombatRequest{
		Character: testContext().Character,
		Enemy:     combat.Enemy{Name: "Shadow Goblin", CurrentHP: 4, MaxHP: 13},
		Intent:    "attack",
		Outcome:   combat.Entry{Message: "Hit! You deal 9 damage.", AttackRoll: 15, Damage: 9},
		History:   history,
	}
	out, err := n.NarrateCombat(context.Background(), req)
	if err != nil {
		t.Fatalf("narrate combat: %v", err)
	}
	if out.Narrative != "Steel rings." || out.Mood != "tense" {
		t.Fatalf("narration = %+v", out)
	}

	sent := f.last.Load()
	if len(sent.Messages) != 2+combatHistoryTurns+1 {
		t.Fatalf("messages = %d, want %d", len(sent.Messages), 2+combatHistoryTurns+1)
	}
	if !strings.Contains(sent.Messages[1].Content, "ENEMY: Shadow Goblin, HP: 4/13.") {
		t.Fatalf("status message = %q", sent.Messages[1].Content)
	}
	want := "Player action: attack. Result: Hit! You deal 9 damage. (Roll: 15, Damage: 9)"
	if got := sent.Messages[len(sent.Messages)-1].Content; got != want {
		t.Fatalf("outcome message = %q, want %q", got, want)
	}
	if sent.Temperature != 0.9 || sent.MaxTokens != 200 {
		t.Fatalf("temperature %v max tokens %d", sent.Temperature, sent.MaxTokens)
	}
}

func TestRetryable(t *testing.T) {
	if retryable(context.Canceled) {
		t.Fatal("cancellation should not be retried")
	}
	if !retryable(errors.New("connection reset")) {
		t.Fatal("transport errors should be retried")
	}
}
