package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
	"github.com/ziadkadry99/riskdesk/internal/db"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

type staticGenerator string

func (g staticGenerator) Generate(ctx context.Context, prompt string, params assistant.GenerationParams) (string, error) {
	return string(g), nil
}

type testDeps struct {
	events   *events.Store
	audit    *audit.Store
	sessions *chat.Store
}

func setupTest(t *testing.T, withAssistant bool) (*Dashboard, testDeps) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	deps := testDeps{
		events:   events.NewStore(database),
		audit:    audit.NewStore(database),
		sessions: chat.NewStore(database),
	}

	ctx := context.Background()
	for i, level := range []events.RiskLevel{events.LevelCritical, events.LevelHigh, events.LevelLow} {
		impact := float64(1000 * (3 - i))
		err := deps.events.Insert(ctx, events.Event{
			ID:              fmt.Sprintf("EVT-2024010110000%d-%04d", i, i+1),
			OccurredAt:      time.Date(2024, 1, 1, 10, 0, i, 0, time.UTC),
			Level:           level,
			Description:     "Evento de teste",
			FinancialImpact: &impact,
			Status:          events.StatusOpen,
		})
		if err != nil {
			t.Fatalf("inserting event: %v", err)
		}
	}

	var svc *chat.Service
	if withAssistant {
		orch := assistant.New(deps.events, staticGenerator("Resposta de teste."), assistant.DefaultConfig())
		svc = chat.NewService(orch, deps.sessions, deps.audit, nil)
	}
	return New(svc, deps.events, deps.audit, nil), deps
}

func setupRouter(d *Dashboard) chi.Router {
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func dial(t *testing.T, r chi.Router) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg chatRequest) chatResponse {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestStatsEndpoint(t *testing.T) {
	d, deps := setupTest(t, true)
	r := setupRouter(d)

	if _, err := deps.sessions.CreateSession(t.Context()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}

	if stats.Statistics.Total != 3 {
		t.Errorf("expected 3 events, got %d", stats.Statistics.Total)
	}
	if stats.Statistics.Critical != 1 {
		t.Errorf("expected 1 critical, got %d", stats.Statistics.Critical)
	}
	if len(stats.Levels) != 4 {
		t.Errorf("expected 4 level rows, got %d", len(stats.Levels))
	}
	if stats.TotalSessions != 1 {
		t.Errorf("expected 1 session, got %d", stats.TotalSessions)
	}
}

func TestRecentEndpoint(t *testing.T) {
	d, deps := setupTest(t, false)
	r := setupRouter(d)

	deps.audit.Log(t.Context(), audit.Entry{
		ActorType: audit.ActorUser, ActorID: "ana",
		Action: audit.ActionStatusChanged, Scope: audit.ScopeEvent,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var recent recentResponse
	if err := json.NewDecoder(w.Body).Decode(&recent); err != nil {
		t.Fatalf("decoding recent: %v", err)
	}

	// Only Crítico and Alto rank as critical.
	if len(recent.Critical) != 2 {
		t.Errorf("expected 2 critical events, got %d", len(recent.Critical))
	}
	if len(recent.Audit) != 1 {
		t.Errorf("expected 1 audit entry, got %d", len(recent.Audit))
	}
}

func TestWebSocketChatCreatesSession(t *testing.T) {
	d, deps := setupTest(t, true)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", Content: chat.BootstrapMessage})
	if resp.Type != "response" {
		t.Fatalf("expected response type, got %q: %s", resp.Type, resp.Content)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if resp.Turn == nil || resp.Turn.State != assistant.StateAwaitingName {
		t.Errorf("expected AGUARDANDO_NOME, got %+v", resp.Turn)
	}

	resp = roundTrip(t, conn, chatRequest{Type: "message", SessionID: resp.SessionID, Content: "sou a Ana"})
	if resp.Turn == nil || resp.Turn.UserName != "Ana" {
		t.Errorf("expected name Ana, got %+v", resp.Turn)
	}

	resp = roundTrip(t, conn, chatRequest{Type: "message", SessionID: resp.SessionID, Content: "quais são os críticos?"})
	if resp.Content != "Resposta de teste." {
		t.Errorf("content = %q", resp.Content)
	}

	messages, err := deps.sessions.GetMessages(t.Context(), resp.SessionID)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != 5 {
		t.Errorf("expected 5 stored messages, got %d", len(messages))
	}
}

func TestWebSocketStatusUpdate(t *testing.T) {
	d, deps := setupTest(t, true)
	conn := dial(t, setupRouter(d))

	const id = "EVT-20240101100000-0001"
	resp := roundTrip(t, conn, chatRequest{Type: "status", EventID: id, Status: "resolvido", UserName: "Ana"})
	if resp.Type != "status" || resp.Update == nil || !resp.Update.Success {
		t.Fatalf("unexpected response: %+v", resp)
	}

	e, err := deps.events.GetByID(t.Context(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if e.Status != events.StatusResolved {
		t.Errorf("status = %q, want resolvido", e.Status)
	}

	resp = roundTrip(t, conn, chatRequest{Type: "status", EventID: id, Status: "arquivado"})
	if resp.Update == nil || resp.Update.Success {
		t.Errorf("expected rejected update, got %+v", resp.Update)
	}
}

func TestWebSocketNoAssistant(t *testing.T) {
	d, _ := setupTest(t, false)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", Content: "hello"})
	if resp.Type != "error" {
		t.Errorf("expected error type, got %q", resp.Type)
	}
	if !strings.Contains(resp.Content, "assistant not configured") {
		t.Errorf("expected configuration error, got %q", resp.Content)
	}
}

func TestWebSocketEmptyContent(t *testing.T) {
	d, _ := setupTest(t, true)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", Content: ""})
	if resp.Type != "error" {
		t.Errorf("expected error type, got %q", resp.Type)
	}
	if !strings.Contains(resp.Content, "content is required") {
		t.Errorf("expected content error, got %q", resp.Content)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	d, _ := setupTest(t, true)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "unknown", Content: "hello"})
	if resp.Type != "error" {
		t.Errorf("expected error type, got %q", resp.Type)
	}
	if !strings.Contains(resp.Content, "unknown message type") {
		t.Errorf("expected unknown type error, got %q", resp.Content)
	}
}

func TestServeIndex(t *testing.T) {
	d, _ := setupTest(t, false)
	r := setupRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "RiskDesk Dashboard") {
		t.Error("expected HTML to contain 'RiskDesk Dashboard'")
	}
}
