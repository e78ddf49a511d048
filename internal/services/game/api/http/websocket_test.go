package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/platform/timeouts"
	"github.com/louisbranch/whispering.depths/internal/services/game/app"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
)

type socketFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

func socketURL(t *testing.T, serverURL, sessionID string) string {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	u.Scheme = "ws"
	u.Path = RouteSocket
	u.RawQuery = url.Values{"sessionId": {sessionID}}.Encode()
	return u.String()
}

func dialSocket(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	header := http.Header{"Origin": {testOrigin}}
	conn, resp, err := websocket.DefaultDialer.Dial(socketURL(t, srv.URL, sessionID), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("dial socket: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) socketFrame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	var frame socketFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestSocketSendsInitialStateAndAnswersFrames(t *testing.T) {
	h, svc := newTestHandler(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	started, err := svc.Start(context.Background(), app.StartInput{Name: "Aria", Lineage: "elf", Vocation: "mage"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	conn := dialSocket(t, srv, started.SessionID)

	initial := readFrame(t, conn)
	if initial.Type != FrameState {
		t.Fatalf("initial frame = %+v", initial)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameCombat, Action: "attack"}); err != nil {
		t.Fatalf("write combat: %v", err)
	}
	rejected := readFrame(t, conn)
	if rejected.Type != FrameError || rejected.Code != "COMBAT_INACTIVE" || rejected.Error == "" {
		t.Fatalf("combat frame = %+v", rejected)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameAction, Action: "search the chamber"}); err != nil {
		t.Fatalf("write action: %v", err)
	}
	acted := readFrame(t, conn)
	if acted.Type != FrameAction {
		t.Fatalf("action frame = %+v", acted)
	}
	var turn app.TurnResult
	if err := json.Unmarshal(acted.Data, &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.SessionID != started.SessionID || turn.Narrative == "" || !turn.Combat.Active {
		t.Fatalf("turn = %+v", turn)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameCombat, Action: "defend"}); err != nil {
		t.Fatalf("write defend: %v", err)
	}
	fought := readFrame(t, conn)
	if fought.Type != FrameCombat {
		t.Fatalf("combat frame = %+v", fought)
	}
	var round app.CombatResult
	if err := json.Unmarshal(fought.Data, &round); err != nil {
		t.Fatalf("decode combat: %v", err)
	}
	if len(round.CombatLog) == 0 {
		t.Fatalf("round = %+v", round)
	}
}

func TestSocketRejectsBadFrames(t *testing.T) {
	h, svc := newTestHandler(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	started, err := svc.Start(context.Background(), app.StartInput{Name: "Aria", Lineage: "elf", Vocation: "mage"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	conn := dialSocket(t, srv, started.SessionID)
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{oops")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frame := readFrame(t, conn); frame.Type != FrameError || frame.Code != "MALFORMED_BODY" {
		t.Fatalf("malformed frame = %+v", frame)
	}

	if err := conn.WriteJSON(ClientFrame{Type: "teleport"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frame := readFrame(t, conn); frame.Type != FrameError || frame.Code != "MALFORMED_BODY" {
		t.Fatalf("unknown frame = %+v", frame)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameAction}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frame := readFrame(t, conn); frame.Type != FrameError || frame.Code != "ACTION_EMPTY" {
		t.Fatalf("empty action frame = %+v", frame)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameState}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frame := readFrame(t, conn); frame.Type != FrameState || len(frame.Data) == 0 {
		t.Fatalf("state frame = %+v", frame)
	}
}

func TestSocketUnknownSessionIsNotUpgraded(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial(socketURL(t, srv.URL, "nope"), http.Header{"Origin": {testOrigin}})
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil {
		t.Fatalf("expected http response, got error %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSocketRejectsForeignOrigin(t *testing.T) {
	h, svc := newTestHandler(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	started, err := svc.Start(context.Background(), app.StartInput{Name: "Aria", Lineage: "elf", Vocation: "mage"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_, resp, err := websocket.DefaultDialer.Dial(socketURL(t, srv.URL, started.SessionID), http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil {
		t.Fatalf("expected http response, got error %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

// slowGame wraps a real service and delays every Act call.
type slowGame struct {
	*app.Service
	delay time.Duration
}

func (g slowGame) Act(ctx context.Context, in app.ActInput) (app.TurnResult, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return app.TurnResult{}, ctx.Err()
	}
	return g.Service.Act(ctx, in)
}

var _ GameService = slowGame{}

func TestSocketSurvivesTurnLongerThanPongWait(t *testing.T) {
	_, svc := newTestHandler(t)
	pongWait := 200 * time.Millisecond
	h := NewHandler(slowGame{Service: svc, delay: 3 * pongWait}, Config{
		AllowedOrigins: []string{testOrigin},
		PongWait:       pongWait,
		Logger:         logging.Discard(),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	started, err := svc.Start(context.Background(), app.StartInput{Name: "Aria", Lineage: "elf", Vocation: "mage"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	conn := dialSocket(t, srv, started.SessionID)
	readFrame(t, conn)

	if err := conn.WriteJSON(ClientFrame{Type: FrameAction, Action: "listen at the door"}); err != nil {
		t.Fatalf("write action: %v", err)
	}
	if frame := readFrame(t, conn); frame.Type != FrameAction {
		t.Fatalf("action frame = %+v", frame)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameState}); err != nil {
		t.Fatalf("write state: %v", err)
	}
	frame := readFrame(t, conn)
	if frame.Type != FrameState {
		t.Fatalf("state frame = %+v", frame)
	}
	var state session.ClientState
	if err := json.Unmarshal(frame.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
}

func TestNewHandlerDefaultsPongWait(t *testing.T) {
	h, _ := newTestHandler(t)
	if h.cfg.PongWait != timeouts.WebSocketPong {
		t.Fatalf("pong wait = %v, want %v", h.cfg.PongWait, timeouts.WebSocketPong)
	}
}
