package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/riskdesk/internal/db"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:            "test-1",
		ActorType:     ActorUser,
		ActorID:       "ana",
		Action:        ActionStatusChanged,
		Scope:         ScopeEvent,
		ScopeID:       "EVT-20240115103000-0001",
		Summary:       "Status alterado",
		PreviousValue: "aberto",
		NewValue:      "resolvido",
		SessionID:     "sess-1",
	}

	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if got.ActorID != "ana" {
		t.Errorf("ActorID = %q, want %q", got.ActorID, "ana")
	}
	if got.Action != ActionStatusChanged {
		t.Errorf("Action = %q, want %q", got.Action, ActionStatusChanged)
	}
	if got.Scope != ScopeEvent {
		t.Errorf("Scope = %q, want %q", got.Scope, ScopeEvent)
	}
	if got.ScopeID != "EVT-20240115103000-0001" {
		t.Errorf("ScopeID = %q", got.ScopeID)
	}
	if got.PreviousValue != "aberto" || got.NewValue != "resolvido" {
		t.Errorf("values = %q -> %q, want aberto -> resolvido", got.PreviousValue, got.NewValue)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "sess-1")
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestLogGeneratesUUID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ActorType: ActorSystem,
		ActorID:   "seed",
		Action:    ActionEventsImported,
		Scope:     ScopeDataset,
		Summary:   "5000 eventos importados",
	}

	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := store.Query(ctx, QueryFilter{ActorID: "seed"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID, got empty string")
	}
	if entries[0].SessionID != "" {
		t.Errorf("SessionID = %q, want empty", entries[0].SessionID)
	}
}

func TestStatusChangeEntry(t *testing.T) {
	change := events.StatusChange{
		EventID:  "EVT-20240115103000-0001",
		Previous: events.StatusOpen,
		Current:  events.StatusInProgress,
	}

	e := StatusChangeEntry(change, ActorAgent, "", "")
	if e.ActorID != "anonymous" {
		t.Errorf("ActorID = %q, want anonymous", e.ActorID)
	}
	if e.Action != ActionStatusChanged || e.Scope != ScopeEvent {
		t.Errorf("Action/Scope = %q/%q", e.Action, e.Scope)
	}
	if e.ScopeID != change.EventID {
		t.Errorf("ScopeID = %q, want %q", e.ScopeID, change.EventID)
	}
	if e.PreviousValue != "aberto" || e.NewValue != "em_andamento" {
		t.Errorf("values = %q -> %q", e.PreviousValue, e.NewValue)
	}
	want := "Status de EVT-20240115103000-0001 alterado de aberto para em_andamento"
	if e.Summary != want {
		t.Errorf("Summary = %q, want %q", e.Summary, want)
	}

	store := setupStore(t)
	if err := store.Log(context.Background(), e); err != nil {
		t.Fatalf("Log: %v", err)
	}
}

func TestImportEntry(t *testing.T) {
	e := ImportEntry("eventos.json", 250, ActorUser, "ana")
	if e.Action != ActionEventsImported || e.Scope != ScopeDataset {
		t.Errorf("Action/Scope = %q/%q", e.Action, e.Scope)
	}
	if e.ScopeID != "eventos.json" || e.NewValue != "250" {
		t.Errorf("ScopeID/NewValue = %q/%q", e.ScopeID, e.NewValue)
	}
	if e.Summary != "250 eventos importados de eventos.json" {
		t.Errorf("Summary = %q", e.Summary)
	}
	if got := ImportEntry("x.json", 1, ActorSystem, "").ActorID; got != "anonymous" {
		t.Errorf("ActorID = %q, want anonymous", got)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []Entry{
		{ActorType: ActorUser, ActorID: "ana", Action: ActionStatusChanged, Scope: ScopeEvent, ScopeID: "EVT-1", SessionID: "s1"},
		{ActorType: ActorUser, ActorID: "bruno", Action: ActionStatusChanged, Scope: ScopeEvent, ScopeID: "EVT-2", SessionID: "s2"},
		{ActorType: ActorAgent, ActorID: "mcp", Action: ActionStatusChanged, Scope: ScopeEvent, ScopeID: "EVT-1"},
		{ActorType: ActorSystem, ActorID: "seed", Action: ActionEventsImported, Scope: ScopeDataset},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   int
	}{
		{"all", QueryFilter{}, 4},
		{"actor", QueryFilter{ActorID: "ana"}, 1},
		{"scope", QueryFilter{Scope: ScopeEvent}, 3},
		{"scope id", QueryFilter{ScopeID: "EVT-1"}, 2},
		{"action", QueryFilter{Action: ActionEventsImported}, 1},
		{"session", QueryFilter{SessionID: "s2"}, 1},
		{"combined", QueryFilter{Scope: ScopeEvent, ScopeID: "EVT-1", ActorID: "mcp"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestQueryLimitOffset(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, Entry{
			ActorType: ActorUser,
			ActorID:   "ana",
			Action:    ActionStatusChanged,
			Scope:     ScopeEvent,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries with limit, got %d", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilter{Limit: 2, Offset: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries with offset, got %d", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilter{Offset: 4})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry with offset only, got %d", len(entries))
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Log(ctx, Entry{
			ActorType: ActorSystem,
			ActorID:   "system",
			Action:    ActionEventsImported,
			Scope:     ScopeDataset,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	// Everything is older than tomorrow.
	deleted, err := store.DeleteBefore(ctx, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 remaining entries, got %d", len(entries))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)

	entry := Entry{
		ID:        "http-1",
		ActorType: ActorUser,
		ActorID:   "ana",
		Action:    ActionStatusChanged,
		Scope:     ScopeEvent,
		ScopeID:   "EVT-20240115103000-0001",
		Summary:   "Status alterado",
	}
	if err := store.Log(context.Background(), entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit/http-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "http-1" {
		t.Errorf("ID = %q, want %q", got.ID, "http-1")
	}
	if got.ScopeID != "EVT-20240115103000-0001" {
		t.Errorf("ScopeID = %q", got.ScopeID)
	}
}

func TestHTTPGetByIDNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHTTPQueryEmpty(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestHTTPQueryWithFilter(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	for _, actor := range []string{"ana", "bruno", "ana"} {
		if err := store.Log(ctx, Entry{
			ActorType: ActorUser,
			ActorID:   actor,
			Action:    ActionStatusChanged,
			Scope:     ScopeEvent,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit?actor=ana&limit=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var entries []Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries for ana, got %d", len(entries))
	}
}

func TestParseQueryFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := parseQueryFilter(url.Values{})
		if err != nil {
			t.Fatalf("parseQueryFilter: %v", err)
		}
		if f.Limit != 100 || f.Since != nil || f.Until != nil {
			t.Errorf("filter = %+v", f)
		}
	})

	t.Run("date-only until covers the day", func(t *testing.T) {
		f, err := parseQueryFilter(url.Values{"since": {"2024-01-15"}, "until": {"2024-01-15"}})
		if err != nil {
			t.Fatalf("parseQueryFilter: %v", err)
		}
		if got := f.Since.Format(time.DateTime); got != "2024-01-15 00:00:00" {
			t.Errorf("since = %s", got)
		}
		if got := f.Until.Format(time.DateTime); got != "2024-01-15 23:59:59" {
			t.Errorf("until = %s", got)
		}
	})

	t.Run("limit capped", func(t *testing.T) {
		f, err := parseQueryFilter(url.Values{"limit": {"10000"}, "offset": {"20"}})
		if err != nil {
			t.Fatalf("parseQueryFilter: %v", err)
		}
		if f.Limit != maxQueryLimit || f.Offset != 20 {
			t.Errorf("limit/offset = %d/%d", f.Limit, f.Offset)
		}
	})

	for _, q := range []url.Values{
		{"since": {"ontem"}},
		{"until": {"2024-13-01"}},
		{"limit": {"0"}},
		{"limit": {"abc"}},
		{"offset": {"-1"}},
	} {
		if _, err := parseQueryFilter(q); err == nil {
			t.Errorf("parseQueryFilter(%v): expected error", q)
		}
	}
}

func TestHTTPQueryBadFilter(t *testing.T) {
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit?since=ontem", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
