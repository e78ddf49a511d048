package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
	"github.com/louisbranch/whispering.depths/internal/platform/httpx"
	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/platform/timeouts"
	"github.com/louisbranch/whispering.depths/internal/services/game/app"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

const (
	maxBodyBytes  = 64 << 10
	healthMessage = "The Dungeon Master awaits..."
)

// Route paths.
const (
	RouteStart  = "/api/game/start"
	RouteAction = "/api/game/action"
	RouteCombat = "/api/game/combat"
	RouteState  = "/api/game/state/"
	RouteSocket = "/api/game/ws"
	RouteHealth = "/api/health"
)

// GameService runs game turns.
type GameService interface {
	Start(ctx context.Context, in app.StartInput) (app.TurnResult, error)
	Act(ctx context.Context, in app.ActInput) (app.TurnResult, error)
	Combat(ctx context.Context, in app.CombatInput) (app.CombatResult, error)
	State(ctx context.Context, sessionID string) (session.ClientState, error)
}

// Config configures the HTTP surface.
type Config struct {
	// AllowedOrigins lists browser origins allowed by CORS and the WebSocket
	// origin check.
	AllowedOrigins []string
	// AIEnabled is reported by the health route.
	AIEnabled bool
	// PongWait bounds how long a socket may go without a frame or pong.
	// Zero means timeouts.WebSocketPong.
	PongWait time.Duration
	Logger   logrus.FieldLogger
}

// Handler serves the game API.
type Handler struct {
	game     GameService
	cfg      Config
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
	root     http.Handler
}

type startRequest struct {
	Name      string `json:"name"`
	Race      string `json:"race"`
	Lineage   string `json:"lineage"`
	CharClass string `json:"charClass"`
	Vocation  string `json:"vocation"`
}

type actionRequest struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
}

type combatRequest struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
	Item      string `json:"item"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	AIEnabled bool   `json:"aiEnabled"`
}

// NewHandler builds the routed and middleware-wrapped API handler.
func NewHandler(game GameService, cfg Config) *Handler {
	h := &Handler{
		game: game,
		cfg:  cfg,
		log:  logging.Component(cfg.Logger, "http"),
	}
	if h.cfg.PongWait <= 0 {
		h.cfg.PongWait = timeouts.WebSocketPong
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || httpx.OriginAllowed(h.cfg.AllowedOrigins, origin)
		},
	}
	h.root = httpx.Chain(h.routes(),
		httpx.RequestID(),
		httpx.RecoverPanic(cfg.Logger),
		httpx.CORS(cfg.AllowedOrigins),
	)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

func (h *Handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RouteStart, h.handleStart)
	mux.HandleFunc("POST "+RouteAction, h.handleAction)
	mux.HandleFunc("POST "+RouteCombat, h.handleCombat)
	mux.HandleFunc("GET "+RouteState+"{sessionId}", h.handleState)
	mux.HandleFunc("GET "+RouteSocket, h.handleSocket)
	mux.HandleFunc("GET "+RouteHealth, h.handleHealth)
	return mux
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.game.Start(r.Context(), app.StartInput{
		Name:     req.Name,
		Lineage:  firstNonEmpty(req.Race, req.Lineage),
		Vocation: firstNonEmpty(req.CharClass, req.Vocation),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, result)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.game.Act(r.Context(), app.ActInput{SessionID: req.SessionID, Text: req.Action})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, result)
}

func (h *Handler) handleCombat(w http.ResponseWriter, r *http.Request) {
	var req combatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.game.Combat(r.Context(), app.CombatInput{
		SessionID: req.SessionID,
		Action:    req.Action,
		Item:      req.Item,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, result)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.State(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, state)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, healthResponse{Status: "ok", Message: healthMessage, AIEnabled: h.cfg.AIEnabled})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	if err := httpx.WriteJSON(w, http.StatusOK, payload); err != nil {
		h.log.WithError(err).WithField("path", r.URL.Path).Warn("write response")
	}
}

// writeError answers with the public view of err. Server-side failures are
// logged with their internal message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	public := httpx.WriteError(w, r, err)
	if status := apperrors.HTTPStatus(public.Status); status >= http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"request_id": r.Header.Get(httpx.RequestIDHeader),
		}).Error("request failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.Wrap(apperrors.CodeMalformedBody, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		}
		return apperrors.Wrap(apperrors.CodeMalformedBody, "decode request body", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
