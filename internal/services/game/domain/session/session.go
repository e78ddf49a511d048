package session

import (
	"maps"
	"strings"
	"time"

	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/memory"
)

// ClientJournalSize is how many of the newest journal entries clients see.
const ClientJournalSize = 10

// SceneType classifies the current scene.
type SceneType string

const (
	SceneExploration SceneType = "exploration"
	SceneCombat      SceneType = "combat"
	SceneDialogue    SceneType = "dialogue"
	SceneRest        SceneType = "rest"
)

// ParseSceneType normalizes value, falling back to exploration for anything
// unrecognized.
func ParseSceneType(value string) SceneType {
	switch t := SceneType(strings.ToLower(strings.TrimSpace(value))); t {
	case SceneExploration, SceneCombat, SceneDialogue, SceneRest:
		return t
	default:
		return SceneExploration
	}
}

// Scene is what the player currently faces.
type Scene struct {
	Type        SceneType `json:"type"`
	Description string    `json:"description"`
}

// SceneUpdate merges into a Scene; zero fields are left untouched.
type SceneUpdate struct {
	Type        SceneType
	Description string
}

// JournalEntry is one timestamped line of the adventure log.
type JournalEntry struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the full mutable state of one adventure.
//
// A *Session is only reachable inside Store.Update, which holds the session's
// exclusive lock for the duration of the callback.
type Session struct {
	ID               string
	CreatedAt        time.Time
	Character        character.Character
	Combat           combat.State
	Scene            Scene
	SuggestedActions []string
	Memory           *memory.Memory
	StoryFlags       map[string]any
	Journal          []JournalEntry

	clock func() time.Time
}

func newSession(id string, c character.Character, clock func() time.Time) *Session {
	return &Session{
		ID:               id,
		CreatedAt:        clock().UTC(),
		Character:        c,
		Combat:           combat.NewState(),
		Scene:            Scene{Type: SceneExploration},
		SuggestedActions: []string{},
		Memory:           memory.New(clock),
		StoryFlags:       map[string]any{},
		Journal:          []JournalEntry{},
		clock:            clock,
	}
}

// AddMessage records a conversation turn.
func (s *Session) AddMessage(role memory.Role, content string) {
	s.Memory.Append(role, content)
}

// UpdateScene merges u into the current scene.
func (s *Session) UpdateScene(u SceneUpdate) {
	if u.Type != "" {
		s.Scene.Type = u.Type
	}
	if u.Description != "" {
		s.Scene.Description = u.Description
	}
}

// StartCombat engages enemies at full health and switches to a combat scene.
func (s *Session) StartCombat(enemies []combat.Enemy) {
	s.Combat.Start(enemies)
	s.Scene.Type = SceneCombat
}

// EndCombat resets the encounter and returns to exploration.
func (s *Session) EndCombat() {
	s.Combat.End()
	s.Scene.Type = SceneExploration
}

// SetSuggestedActions replaces the suggested next actions.
func (s *Session) SetSuggestedActions(actions []string) {
	s.SuggestedActions = append([]string{}, actions...)
}

// AddJournalEntry appends a timestamped entry.
func (s *Session) AddJournalEntry(text string) {
	s.Journal = append(s.Journal, JournalEntry{Text: text, Timestamp: s.clock().UTC()})
}

// SetStoryFlag records a story decision for later narration.
func (s *Session) SetStoryFlag(key string, value any) {
	s.StoryFlags[key] = value
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	out := *s
	out.Character = s.Character.Clone()
	out.Combat = s.Combat.Clone()
	out.SuggestedActions = append([]string{}, s.SuggestedActions...)
	out.Memory = s.Memory.Clone()
	out.StoryFlags = maps.Clone(s.StoryFlags)
	out.Journal = append([]JournalEntry{}, s.Journal...)
	return &out
}

// ClientState is the sanitized view of a session sent to clients. It never
// carries the conversation history or the story summary.
type ClientState struct {
	SessionID        string              `json:"sessionId"`
	Character        character.Character `json:"character"`
	CurrentScene     Scene               `json:"currentScene"`
	Combat           combat.State        `json:"combat"`
	Journal          []JournalEntry      `json:"journal"`
	SuggestedActions []string            `json:"suggestedActions"`
}

// ClientState returns a deep copy safe to hand outside the lock.
func (s *Session) ClientState() ClientState {
	journal := s.Journal
	if len(journal) > ClientJournalSize {
		journal = journal[len(journal)-ClientJournalSize:]
	}
	return ClientState{
		SessionID:        s.ID,
		Character:        s.Character.Clone(),
		CurrentScene:     s.Scene,
		Combat:           s.Combat.Clone(),
		Journal:          append([]JournalEntry{}, journal...),
		SuggestedActions: append([]string{}, s.SuggestedActions...),
	}
}
