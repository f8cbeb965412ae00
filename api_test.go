package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"poemrace/store"
)

func newTestAPI(t *testing.T) *APIServer {
	t.Helper()
	engine, _ := newTestEngine(t)
	mm := NewMatchmaker(testExpectationTable(t))

	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mockStore := newMockLeaderboardStore()
	persist := NewPersistenceWriter(mockStore, "leaderboard", 8)
	go persist.Run()
	t.Cleanup(func() { persist.Stop() })

	loop := NewTickLoop(NewSystemClock(), 8, mm, engine, persist, 33)
	transport := NewWSTransport(loop, persist)

	return NewAPIServer(DefaultConfig(), loop, mm, engine, transport, st)
}

func TestAPIHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := api.echo.NewContext(req, rec)

	if err := api.handleHealth(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAPIStatsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	c := api.echo.NewContext(req, rec)

	if err := api.handleStats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["pending_pool"]; !ok {
		t.Errorf("expected pending_pool in stats response, got %+v", body)
	}
}

func TestAPILeaderboardEndpointEmpty(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	c := api.echo.NewContext(req, rec)

	if err := api.handleLeaderboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var top []store.LeaderboardEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("expected empty leaderboard, got %+v", top)
	}
}

func TestAPIConfigEndpoint(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	c := api.echo.NewContext(req, rec)

	if err := api.handleConfig(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var cfg Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Area != DefaultConfig().Area {
		t.Errorf("expected default area, got %q", cfg.Area)
	}
}
