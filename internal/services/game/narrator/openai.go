package narrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/platform/timeouts"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/combat"
)

// Defaults for an OpenAI-compatible chat endpoint.
const (
	DefaultBaseURL              = "https://api.groq.com/openai/v1"
	DefaultModel                = "llama-3.3-70b-versatile"
	DefaultMaxTries             = 2
	DefaultRetryInitialInterval = 250 * time.Millisecond
)

var errEmptyChoices = errors.New("completion returned no choices")

// Config configures the OpenAI-compatible narrator.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds one narrator operation, retries included.
	Timeout              time.Duration
	MaxTries             uint
	RetryInitialInterval time.Duration
	HTTPClient           *http.Client
	Logger               logrus.FieldLogger
}

// OpenAI narrates through a chat completions endpoint.
type OpenAI struct {
	client openai.Client
	cfg    Config
	log    logrus.FieldLogger
}

type completion struct {
	op          string
	temperature float64
	maxTokens   int64
}

var (
	sceneCompletion  = completion{op: "generate_scene", temperature: 0.85, maxTokens: 500}
	combatCompletion = completion{op: "narrate_combat", temperature: 0.9, maxTokens: 200}
	enemyCompletion  = completion{op: "generate_enemy", temperature: 0.9, maxTokens: 300}
)

// NewOpenAI builds a narrator for cfg. An API key is required.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("narrator api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.NarratorRequest
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = DefaultMaxTries
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = DefaultRetryInitialInterval
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		// retries are driven by backoff so they share one deadline
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		log:    logging.Component(cfg.Logger, "narrator").WithField("model", cfg.Model),
	}, nil
}

// GenerateScene asks the model for the next scene.
func (o *OpenAI) GenerateScene(ctx context.Context, req SceneRequest) (Scene, error) {
	raw, err := o.complete(ctx, sceneCompletion, sceneMessages(req))
	if err != nil {
		return Scene{}, err
	}
	scene, err := parseScene(raw)
	if err != nil {
		return Scene{}, o.unavailable(sceneCompletion, err)
	}
	return scene, nil
}

// GenerateEnemy asks the model for an enemy.
func (o *OpenAI) GenerateEnemy(ctx context.Context, req EnemyRequest) (combat.Enemy, error) {
	raw, err := o.complete(ctx, enemyCompletion, enemyMessages(req))
	if err != nil {
		return combat.Enemy{}, err
	}
	enemy, err := parseEnemy(raw, req.PlayerLevel)
	if err != nil {
		return combat.Enemy{}, o.unavailable(enemyCompletion, err)
	}
	return enemy, nil
}

// NarrateCombat asks the model to describe a resolved exchange.
func (o *OpenAI) NarrateCombat(ctx context.Context, req CombatRequest) (CombatNarration, error) {
	raw, err := o.complete(ctx, combatCompletion, combatMessages(req))
	if err != nil {
		return CombatNarration{}, err
	}
	narration, err := parseCombat(raw, req.Outcome)
	if err != nil {
		return CombatNarration{}, o.unavailable(combatCompletion, err)
	}
	return narration, nil
}

func (o *OpenAI) complete(ctx context.Context, c completion, msgs []chatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.cfg.Model),
		Messages:    toParams(msgs),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.cfg.RetryInitialInterval

	attempt := 0
	content, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		resp, err := o.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if !retryable(err) {
				return "", backoff.Permanent(err)
			}
			o.log.WithError(err).WithFields(logrus.Fields{
				"op":      c.op,
				"attempt": attempt,
			}).Warn("narrator request failed")
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(errEmptyChoices)
		}
		return resp.Choices[0].Message.Content, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(o.cfg.MaxTries))
	if err != nil {
		return "", o.unavailable(c, err)
	}
	return content, nil
}

func (o *OpenAI) unavailable(c completion, err error) error {
	return apperrors.Wrap(apperrors.CodeNarratorUnavailable, fmt.Sprintf("narrator %s: %v", c.op, err), err)
}

func toParams(msgs []chatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case roleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case roleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// retryable reports whether a failed request is worth repeating: rate limits,
// server errors and transport failures are; other API errors and
// cancellation are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
