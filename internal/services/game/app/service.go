package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/memory"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
	"github.com/louisbranch/whispering.depths/internal/services/game/narrator"
	"github.com/louisbranch/whispering.depths/internal/services/game/observability/audit"
	"github.com/louisbranch/whispering.depths/internal/services/game/observability/audit/events"
	"github.com/louisbranch/whispering.depths/internal/services/game/storage"
)

const tracerName = "github.com/louisbranch/whispering.depths/internal/services/game/app"

const (
	openingIntent = "A new adventure begins! The player is %s, a %s %s. They stand at the entrance of the Whispering Depths, " +
		"an ancient dungeon rumored to hold untold treasures and unspeakable horrors. Set the scene dramatically and present their first choices."
	combatIntentPrefix = "[COMBAT] "

	journalStarted     = "Adventure began at the Whispering Depths."
	journalEncountered = "Encountered %s!"
	journalVictory     = "Defeated %s and gained %d XP."
	journalSpellWin    = "Defeated %s with magic."
	journalFled        = "Fled from %s."
	journalFell        = "Fell in battle against %s."
)

// Service runs game turns against a session store.
type Service struct {
	store    *session.Store
	narrator narrator.Narrator
	roller   dice.Roller
	audit    *audit.Emitter
	log      logrus.FieldLogger
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithAudit records session and encounter events through emitter.
func WithAudit(emitter *audit.Emitter) Option {
	return func(s *Service) {
		s.audit = emitter
	}
}

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithTracer overrides the global tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewService creates a turn orchestrator. roller drives combat resolution.
func NewService(store *session.Store, n narrator.Narrator, roller dice.Roller, opts ...Option) *Service {
	s := &Service{
		store:    store,
		narrator: n,
		roller:   roller,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Component(s.log, "orchestrator")
	return s
}

// Start creates a session and narrates its opening scene.
func (s *Service) Start(ctx context.Context, in StartInput) (result TurnResult, err error) {
	ctx, span := s.tracer.Start(ctx, "game.start")
	defer func() { endSpan(span, err) }()

	name := strings.TrimSpace(in.Name)
	lineage := strings.TrimSpace(in.Lineage)
	vocation := strings.TrimSpace(in.Vocation)
	switch {
	case name == "":
		return TurnResult{}, apperrors.New(apperrors.CodeNameEmpty, "name is required")
	case lineage == "":
		return TurnResult{}, apperrors.New(apperrors.CodeLineageEmpty, "lineage is required")
	case vocation == "":
		return TurnResult{}, apperrors.New(apperrors.CodeVocationEmpty, "vocation is required")
	}

	sessionID, err := s.store.Create(ctx, session.CreateInput{Name: name, Lineage: lineage, Vocation: vocation})
	if err != nil {
		return TurnResult{}, err
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	err = s.store.Update(ctx, sessionID, func(sess *session.Session) error {
		c := sess.Character
		intent := fmt.Sprintf(openingIntent, c.Name, c.Lineage.Label(), c.Vocation.Label())
		scene := s.generateScene(ctx, sess, intent, nil)
		s.recordScene(ctx, sess, intent, scene)
		sess.AddJournalEntry(journalStarted)
		result = TurnResult{ClientState: sess.ClientState(), Narrative: scene.Narrative, Mood: scene.Mood}
		return nil
	})
	if err != nil {
		return TurnResult{}, err
	}

	s.emit(ctx, events.SessionStarted, sessionID, map[string]any{
		"lineage":  string(result.Character.Lineage),
		"vocation": string(result.Character.Vocation),
	})
	return result, nil
}

// Act narrates the outcome of a free-form intent. A combat scene engages a
// generated enemy unless an encounter is already running.
func (s *Service) Act(ctx context.Context, in ActInput) (result TurnResult, err error) {
	ctx, span := s.tracer.Start(ctx, "game.act", trace.WithAttributes(attribute.String("session.id", in.SessionID)))
	defer func() { endSpan(span, err) }()

	sessionID := strings.TrimSpace(in.SessionID)
	text := strings.TrimSpace(in.Text)
	switch {
	case sessionID == "":
		return TurnResult{}, apperrors.New(apperrors.CodeSessionIDEmpty, "session id is required")
	case text == "":
		return TurnResult{}, apperrors.New(apperrors.CodeActionEmpty, "action is required")
	}

	err = s.store.Update(ctx, sessionID, func(sess *session.Session) error {
		scene := s.generateScene(ctx, sess, text, sess.Memory.History())
		s.recordScene(ctx, sess, text, scene)
		result = TurnResult{ClientState: sess.ClientState(), Narrative: scene.Narrative, Mood: scene.Mood}
		return nil
	})
	if err != nil {
		return TurnResult{}, err
	}
	return result, nil
}

// Combat resolves one combat intent against the engaged enemy.
func (s *Service) Combat(ctx context.Context, in CombatInput) (result CombatResult, err error) {
	ctx, span := s.tracer.Start(ctx, "game.combat", trace.WithAttributes(
		attribute.String("session.id", in.SessionID),
		attribute.String("combat.action", in.Action),
	))
	defer func() { endSpan(span, err) }()

	sessionID := strings.TrimSpace(in.SessionID)
	action := strings.TrimSpace(in.Action)
	switch {
	case sessionID == "":
		return CombatResult{}, apperrors.New(apperrors.CodeSessionIDEmpty, "session id is required")
	case action == "":
		return CombatResult{}, apperrors.New(apperrors.CodeActionEmpty, "action is required")
	}

	err = s.store.Update(ctx, sessionID, func(sess *session.Session) error {
		x, err := combat.Resolve(s.roller, &sess.Character, &sess.Combat, action, strings.TrimSpace(in.Item))
		if errors.Is(err, combat.ErrNoActiveCombat) {
			return apperrors.WithMetadata(
				apperrors.CodeCombatInactive,
				fmt.Sprintf("session %q has no active combat", sessionID),
				map[string]string{"SessionID": sessionID},
			)
		}
		if err != nil {
			return fmt.Errorf("resolve combat: %w", err)
		}
		if x.Ended {
			sess.EndCombat()
			s.recordEncounterEnd(ctx, sess, x)
		}

		span.SetAttributes(
			attribute.Bool("combat.ended", x.Ended),
			attribute.Bool("combat.victory", x.Victory),
		)

		narration := s.narrateCombat(ctx, sess, action, x)
		sess.AddMessage(memory.RoleUser, combatIntentPrefix+action)
		sess.AddMessage(memory.RoleAssistant, narration.Narrative)

		result = CombatResult{
			TurnResult:  TurnResult{ClientState: sess.ClientState(), Narrative: narration.Narrative, Mood: narration.Mood},
			CombatLog:   append([]combat.Entry{}, x.Log...),
			CombatEnded: x.Ended,
			Victory:     x.Victory,
			Fled:        x.Fled,
			PlayerDead:  sess.Character.Defeated(),
		}
		return nil
	})
	if err != nil {
		return CombatResult{}, err
	}
	return result, nil
}

// State returns the client view of a session.
func (s *Service) State(ctx context.Context, sessionID string) (state session.ClientState, err error) {
	ctx, span := s.tracer.Start(ctx, "game.state", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer func() { endSpan(span, err) }()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return session.ClientState{}, apperrors.New(apperrors.CodeSessionIDEmpty, "session id is required")
	}
	return s.store.Get(ctx, sessionID)
}

func (s *Service) generateScene(ctx context.Context, sess *session.Session, intent string, history []memory.Message) narrator.Scene {
	scene, err := s.narrator.GenerateScene(ctx, narrator.SceneRequest{
		Context: narratorContext(sess, history),
		Intent:  intent,
	})
	if err != nil {
		s.narratorFailed(ctx, sess.ID, "generate_scene", err)
		scene = narrator.FallbackScene()
	}
	if scene.SceneType == "" {
		scene.SceneType = session.SceneExploration
	}
	if scene.Mood == "" {
		scene.Mood = narrator.DefaultSceneMood
	}
	if scene.SuggestedActions == nil {
		scene.SuggestedActions = []string{}
	}
	return scene
}

// recordScene stores the turn in memory, applies the scene and starts an
// encounter when the scene calls for one.
func (s *Service) recordScene(ctx context.Context, sess *session.Session, intent string, scene narrator.Scene) {
	sess.AddMessage(memory.RoleUser, intent)
	sess.AddMessage(memory.RoleAssistant, scene.Narrative)
	sess.UpdateScene(session.SceneUpdate{Type: scene.SceneType, Description: scene.Narrative})
	sess.SetSuggestedActions(scene.SuggestedActions)

	if scene.SceneType == session.SceneCombat && !sess.Combat.Active {
		s.beginEncounter(ctx, sess, scene.Narrative)
	}
}

func (s *Service) beginEncounter(ctx context.Context, sess *session.Session, sceneText string) {
	enemy, err := s.narrator.GenerateEnemy(ctx, narrator.EnemyRequest{
		PlayerLevel: sess.Character.Level,
		Scene:       sceneText,
	})
	if err != nil {
		s.narratorFailed(ctx, sess.ID, "generate_enemy", err)
		enemy = narrator.FallbackEnemy(sess.Character.Level)
	}
	sess.StartCombat([]combat.Enemy{enemy})

	engaged, _ := sess.Combat.Enemy()
	sess.AddJournalEntry(fmt.Sprintf(journalEncountered, engaged.Name))
	s.emit(ctx, events.EncounterStarted, sess.ID, map[string]any{
		"enemy":       engaged.Name,
		"enemy_level": engaged.Level,
	})
}

func (s *Service) recordEncounterEnd(ctx context.Context, sess *session.Session, x combat.Exchange) {
	var outcome string
	switch {
	case x.Victory && x.Action == combat.ActionSpell:
		outcome = "victory"
		sess.AddJournalEntry(fmt.Sprintf(journalSpellWin, x.Enemy.Name))
	case x.Victory:
		outcome = "victory"
		sess.AddJournalEntry(fmt.Sprintf(journalVictory, x.Enemy.Name, x.XPAwarded))
	case x.Fled:
		outcome = "fled"
		sess.AddJournalEntry(fmt.Sprintf(journalFled, x.Enemy.Name))
	default:
		outcome = "defeat"
		sess.AddJournalEntry(fmt.Sprintf(journalFell, x.Enemy.Name))
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"enemy":      x.Enemy.Name,
		"outcome":    outcome,
	}).Info("encounter ended")
	s.emit(ctx, events.EncounterEnded, sess.ID, map[string]any{
		"enemy":      x.Enemy.Name,
		"outcome":    outcome,
		"xp_awarded": x.XPAwarded,
	})
	if x.LevelUp.LeveledUp {
		s.emit(ctx, events.CharacterLeveled, sess.ID, map[string]any{
			"level":   x.LevelUp.NewLevel,
			"hp_gain": x.LevelUp.HPGain,
		})
	}
}

func (s *Service) narrateCombat(ctx context.Context, sess *session.Session, action string, x combat.Exchange) narrator.CombatNarration {
	outcome := x.Lead()
	narration, err := s.narrator.NarrateCombat(ctx, narrator.CombatRequest{
		Character: sess.Character.Clone(),
		Enemy:     x.Enemy.Clone(),
		Intent:    action,
		Outcome:   outcome,
		History:   sess.Memory.History(),
	})
	if err != nil {
		s.narratorFailed(ctx, sess.ID, "narrate_combat", err)
		narration = narrator.FallbackCombat(outcome)
	}
	if narration.Mood == "" {
		narration.Mood = narrator.DefaultCombatMood
	}
	return narration
}

func (s *Service) narratorFailed(ctx context.Context, sessionID, op string, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"session_id": sessionID,
		"op":         op,
	}).Warn("narrator failed, using fallback")
	if emitErr := s.audit.Emit(ctx, storage.AuditEvent{
		EventName:  events.NarratorFallback,
		Severity:   string(audit.SeverityWarn),
		SessionID:  sessionID,
		Attributes: map[string]any{"op": op, "code": string(apperrors.GetCode(err))},
	}); emitErr != nil {
		s.log.WithError(emitErr).Warn("audit emit failed")
	}
}

func (s *Service) emit(ctx context.Context, name, sessionID string, attrs map[string]any) {
	if err := s.audit.Record(ctx, name, sessionID, attrs); err != nil {
		s.log.WithError(err).WithField("event", name).Warn("audit emit failed")
	}
}

func narratorContext(sess *session.Session, history []memory.Message) narrator.Context {
	return narrator.Context{
		Character:  sess.Character.Clone(),
		StoryFlags: maps.Clone(sess.StoryFlags),
		Summary:    sess.Memory.Summary(),
		History:    history,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}
