package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/whispering.depths/internal/platform/errors"
	"github.com/louisbranch/whispering.depths/internal/platform/httpx"
	"github.com/louisbranch/whispering.depths/internal/platform/requestctx"
	"github.com/louisbranch/whispering.depths/internal/platform/timeouts"
	"github.com/louisbranch/whispering.depths/internal/services/game/app"
)

// Frame types exchanged on the game socket.
const (
	FrameAction = "action"
	FrameCombat = "combat"
	FrameState  = "state"
	FrameError  = "error"
)

// ClientFrame is a player intent sent over the socket.
type ClientFrame struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Item   string `json:"item,omitempty"`
}

// ServerFrame answers a ClientFrame. Data carries the same payload as the
// matching HTTP route; Error and Code are set on error frames only.
type ServerFrame struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

type socket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *socket) send(frame ServerFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", frame.Type, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeouts.WebSocketWrite)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *socket) ping() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WebSocketWrite))
}

// handleSocket upgrades to a WebSocket bound to one session. The session must
// exist before the upgrade; the first frame is its current state.
func (h *Handler) handleSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	state, err := h.game.State(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	locale := httpx.Locale(r)
	requestID := requestctx.RequestIDFromContext(r.Context())
	log := h.log.WithFields(logrus.Fields{"session_id": sessionID, "request_id": requestID})

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	pongWait := h.cfg.PongWait
	conn.SetReadLimit(maxBodyBytes)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sock := &socket{conn: conn}
	// Pings must go out before the pong deadline lapses.
	go keepAlive(ctx, sock, pongWait*9/10)

	if err := sock.send(ServerFrame{Type: FrameState, Data: state}); err != nil {
		log.WithError(err).Debug("send initial state")
		return
	}
	log.Info("socket opened")

	for seq := 1; ; seq++ {
		// Turns run inline, so the deadline restarts after each reply.
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.WithError(err).Debug("set read deadline")
			return
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("socket closed unexpectedly")
			} else {
				log.Info("socket closed")
			}
			return
		}

		frameCtx := requestctx.WithRequestID(ctx, fmt.Sprintf("%s/%d", requestID, seq))
		reply := h.dispatch(frameCtx, sessionID, locale, payload)
		if reply.Type == FrameError {
			log.WithField("code", reply.Code).Debug("frame rejected")
		}
		if err := sock.send(reply); err != nil {
			log.WithError(err).Debug("send reply")
			return
		}
	}
}

// dispatch runs one client frame against the game and builds its reply.
func (h *Handler) dispatch(ctx context.Context, sessionID, locale string, payload []byte) ServerFrame {
	var frame ClientFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return errorFrame(apperrors.Wrap(apperrors.CodeMalformedBody, "decode socket frame", err), locale)
	}

	var (
		data any
		err  error
	)
	switch frame.Type {
	case FrameAction:
		data, err = h.game.Act(ctx, app.ActInput{SessionID: sessionID, Text: frame.Action})
	case FrameCombat:
		data, err = h.game.Combat(ctx, app.CombatInput{SessionID: sessionID, Action: frame.Action, Item: frame.Item})
	case FrameState:
		data, err = h.game.State(ctx, sessionID)
	default:
		err = apperrors.New(apperrors.CodeMalformedBody, fmt.Sprintf("unknown frame type %q", frame.Type))
	}
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeUnknown && !errors.Is(err, context.Canceled) {
			h.log.WithError(err).WithField("session_id", sessionID).Error("socket frame failed")
		}
		return errorFrame(err, locale)
	}
	return ServerFrame{Type: frame.Type, Data: data}
}

func errorFrame(err error, locale string) ServerFrame {
	public := apperrors.Describe(err, locale)
	return ServerFrame{Type: FrameError, Error: public.Message, Code: string(public.Reason)}
}

func keepAlive(ctx context.Context, sock *socket, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sock.ping(); err != nil {
				return
			}
		}
	}
}
