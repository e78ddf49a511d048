package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
	"github.com/louisbranch/whispering.depths/internal/platform/id"
	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/character"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/memory"
)

var (
	// ErrNotFound indicates an unknown session id. Returned errors carry the
	// id as metadata and match with errors.Is.
	ErrNotFound = apperrors.New(apperrors.CodeSessionNotFound, "session not found")
	// ErrNameRequired indicates a character without a name.
	ErrNameRequired = apperrors.New(apperrors.CodeNameEmpty, "character name is required")
)

// CreateInput describes a new adventure.
type CreateInput struct {
	Name     string
	Lineage  string
	Vocation string
}

type entry struct {
	sem     *semaphore.Weighted
	session *Session
}

// Store holds live sessions in memory.
//
// The id → entry map is guarded by its own lock; each session additionally
// owns a one-slot semaphore held for the whole of an Update, so a slow turn
// on one session never delays another.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	roller dice.Roller
	clock  func() time.Time
	newID  func() (string, error)
	log    logrus.FieldLogger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides session id allocation.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = logging.Component(log, "session_store")
	}
}

// NewStore creates an empty store rolling character stats with roller.
func NewStore(roller dice.Roller, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		roller:  roller,
		clock:   time.Now,
		newID:   id.NewID,
		log:     logging.Component(nil, "session_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create derives a character and registers a new session for it.
func (s *Store) Create(ctx context.Context, in CreateInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", ErrNameRequired
	}
	sessionID, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("allocate session id: %w", err)
	}

	lineage := character.ResolveLineage(in.Lineage)
	vocation := character.ResolveVocation(in.Vocation)
	c := character.New(name, lineage, vocation, s.roller)

	s.mu.Lock()
	s.entries[sessionID] = &entry{
		sem:     semaphore.NewWeighted(1),
		session: newSession(sessionID, c, s.clock),
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"lineage":    lineage,
		"vocation":   vocation,
	}).Info("session created")
	return sessionID, nil
}

// Update runs fn with exclusive access to the session.
//
// Waiting for the session honors ctx. Changes fn makes before returning an
// error are kept; callers that need all-or-nothing semantics must validate
// before mutating.
func (s *Store) Update(ctx context.Context, sessionID string, fn func(*Session) error) error {
	e, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for session %s: %w", sessionID, err)
	}
	defer e.sem.Release(1)
	return fn(e.session)
}

// Get returns the client view of a session.
func (s *Store) Get(ctx context.Context, sessionID string) (ClientState, error) {
	var state ClientState
	err := s.Update(ctx, sessionID, func(sess *Session) error {
		state = sess.ClientState()
		return nil
	})
	return state, err
}

// Snapshot returns a deep copy of the whole session, memory included.
func (s *Store) Snapshot(ctx context.Context, sessionID string) (*Session, error) {
	var snap *Session
	err := s.Update(ctx, sessionID, func(sess *Session) error {
		snap = sess.Clone()
		return nil
	})
	return snap, err
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// AddMessage records a conversation turn.
func (s *Store) AddMessage(ctx context.Context, sessionID string, role memory.Role, content string) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.AddMessage(role, content)
		return nil
	})
}

// UpdateScene merges u into the current scene.
func (s *Store) UpdateScene(ctx context.Context, sessionID string, u SceneUpdate) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.UpdateScene(u)
		return nil
	})
}

// StartCombat engages enemies.
func (s *Store) StartCombat(ctx context.Context, sessionID string, enemies []combat.Enemy) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.StartCombat(enemies)
		return nil
	})
}

// EndCombat resets the encounter.
func (s *Store) EndCombat(ctx context.Context, sessionID string) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.EndCombat()
		return nil
	})
}

// UpdateSuggestedActions replaces the suggested next actions.
func (s *Store) UpdateSuggestedActions(ctx context.Context, sessionID string, actions []string) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.SetSuggestedActions(actions)
		return nil
	})
}

// AddJournalEntry appends a journal entry.
func (s *Store) AddJournalEntry(ctx context.Context, sessionID string, text string) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.AddJournalEntry(text)
		return nil
	})
}

// SetStoryFlag records a story decision.
func (s *Store) SetStoryFlag(ctx context.Context, sessionID string, key string, value any) error {
	return s.Update(ctx, sessionID, func(sess *Session) error {
		sess.SetStoryFlag(key, value)
		return nil
	})
}

func (s *Store) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[strings.TrimSpace(sessionID)]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(sessionID)
	}
	return e, nil
}

func notFound(sessionID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeSessionNotFound,
		fmt.Sprintf("session %q not found", sessionID),
		map[string]string{"SessionID": sessionID},
	)
}
