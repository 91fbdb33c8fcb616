package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/analytics"
	"wardenbot/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	service := analytics.NewService(store, zap.NewNop())
	return New(":0", store, service, zap.NewNop()), store
}

func get(t *testing.T, server *Server, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	server.http.Handler.ServeHTTP(recorder, req)

	body := map[string]any{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return recorder.Code, body
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	code, body := get(t, server, "/healthz")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %v", code, body)
	}
}

func TestGuildConfigEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	code, body := get(t, server, "/api/guilds/g1/config")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if body["guild_id"] != "g1" {
		t.Fatalf("unexpected guild id: %v", body["guild_id"])
	}
	if body["leveling_enabled"] != true {
		t.Fatalf("expected leveling enabled by default: %v", body)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	if err := store.SetLevel(ctx, "g1", "u1", 3, 900, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.SetLevel(ctx, "g1", "u2", 5, 2500, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	code, body := get(t, server, "/api/guilds/g1/leaderboard")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	entries, ok := body["leaderboard"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", body["leaderboard"])
	}
	first := entries[0].(map[string]any)
	if first["user_id"] != "u2" {
		t.Fatalf("expected u2 first, got %v", first)
	}
}

func TestModLogsEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	err := store.AddModLog(ctx, storage.ModLogEntry{
		GuildID:     "g1",
		ActionType:  storage.ActionBan,
		ModeratorID: "mod",
		TargetID:    "bad",
		Reason:      "spam",
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	code, body := get(t, server, "/api/guilds/g1/modlogs")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	entries, ok := body["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %v", body["entries"])
	}
	entry := entries[0].(map[string]any)
	if entry["action"] != storage.ActionBan || entry["target_id"] != "bad" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestUserStatsEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	if err := store.RecordMessage(ctx, "g1", "u1", time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	code, body := get(t, server, "/api/guilds/g1/stats/u1")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if body["total_messages"] != float64(1) {
		t.Fatalf("expected 1 total message, got %v", body["total_messages"])
	}
}
