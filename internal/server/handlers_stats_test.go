package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/replens/internal/storage"
)

// TestHandleStats verifies /api/v1/stats reports the caller's totals.
func TestHandleStats(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(store)
	if rec := do(s, http.MethodPost, "/api/v1/ingest", captureJSON(t), "secret"); rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d: %s", rec.Code, rec.Body.String())
	}

	rec := do(s, http.MethodGet, "/api/v1/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats storage.DataStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if stats.TotalAnalyses != 1 {
		t.Errorf("total_analyses = %d, want 1", stats.TotalAnalyses)
	}
}

// TestHandleImportLogs verifies successful and rejected ingests both show up
// in /api/v1/import-logs with their status.
func TestHandleImportLogs(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(store)
	do(s, http.MethodPost, "/api/v1/ingest", captureJSON(t), "secret")
	do(s, http.MethodPost, "/api/v1/ingest", []byte(`{"sets":[]}`), "secret")

	rec := do(s, http.MethodGet, "/api/v1/import-logs?limit=10", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var logs []storage.ImportLog
	if err := json.NewDecoder(rec.Body).Decode(&logs); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].Status != "success" || logs[0].RepsReceived != 5 {
		t.Errorf("log 0 = %+v", logs[0])
	}
	if logs[1].Status != "error" || logs[1].ErrorMessage == nil {
		t.Errorf("log 1 = %+v", logs[1])
	}
	if logs[1].DurationMs == nil {
		t.Error("rejected ingest should still record its duration")
	}
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	rec := do(newTestServer(&fakeStore{}), http.MethodGet, "/api/v1/me", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
}
