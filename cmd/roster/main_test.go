package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/center-roster/internal/config"
	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		HTTPPort:      8080,
		DevMode:       true,
		BusinessStart: "10:00",
		BusinessEnd:   "19:00",
		Increment:     15,
		MinDuration:   30,
		MaxDuration:   120,
		Seats:         scheduler.DefaultSeatConfig(),

		AvailabilityCacheTTL:        30 * time.Second,
		AvailabilityCacheMaxEntries: 256,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenRepositories_DevMode(t *testing.T) {
	cfg := testConfig(t)

	repos, closeStorage, err := openRepositories(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("openRepositories returned error: %v", err)
	}
	defer func() {
		if cerr := closeStorage(); cerr != nil {
			t.Errorf("closeStorage returned error: %v", cerr)
		}
	}()

	student := persistence.Student{ID: "student-1", Name: "Asha Patel", Email: "asha@example.com"}
	if err := repos.Students.CreateStudent(context.Background(), student); err != nil {
		t.Fatalf("CreateStudent returned error: %v", err)
	}
	got, err := repos.Students.GetStudent(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("GetStudent returned error: %v", err)
	}
	if got.Email != "asha@example.com" {
		t.Fatalf("GetStudent email = %q, want %q", got.Email, "asha@example.com")
	}
}

func TestOpenRepositories_SQLiteMigratesAndPersists(t *testing.T) {
	cfg := testConfig(t)
	cfg.DevMode = false
	dbPath := filepath.Join(t.TempDir(), "roster.db")
	cfg.SQLiteDSN = "file:" + dbPath

	ctx := context.Background()

	repos, closeStorage, err := openRepositories(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("openRepositories returned error: %v", err)
	}
	trainer := persistence.Trainer{ID: "trainer-1", Name: "Ben Okafor", Email: "ben@example.com"}
	if err := repos.Trainers.CreateTrainer(ctx, trainer); err != nil {
		t.Fatalf("CreateTrainer returned error: %v", err)
	}
	if err := closeStorage(); err != nil {
		t.Fatalf("closeStorage returned error: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file at %s: %v", dbPath, err)
	}

	// A second open runs migrations again; they must be idempotent and the
	// previously written row must survive.
	repos, closeStorage, err = openRepositories(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer func() {
		if cerr := closeStorage(); cerr != nil {
			t.Errorf("closeStorage returned error: %v", cerr)
		}
	}()

	got, err := repos.Trainers.GetTrainer(ctx, "trainer-1")
	if err != nil {
		t.Fatalf("GetTrainer after reopen returned error: %v", err)
	}
	if got.Name != "Ben Okafor" {
		t.Fatalf("GetTrainer name = %q, want %q", got.Name, "Ben Okafor")
	}
}

func TestOpenRepositories_InvalidDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.DevMode = false
	cfg.SQLiteDSN = "file:" + filepath.Join(t.TempDir(), "missing-dir", "roster.db")

	_, _, err := openRepositories(context.Background(), cfg, discardLogger())
	if err == nil {
		t.Fatal("expected error for unreachable database path, got nil")
	}
}

func TestNewHTTPHandler_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	repos, closeStorage, err := openRepositories(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("openRepositories returned error: %v", err)
	}
	t.Cleanup(func() { _ = closeStorage() })

	handler := newHTTPHandler(cfg, repos, discardLogger())
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	postJSON := func(path string, payload map[string]any) map[string]any {
		t.Helper()
		body, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s returned error: %v", path, err)
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("POST %s status = %d, body = %s", path, resp.StatusCode, raw)
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
		return decoded
	}

	trainerResp := postJSON("/trainers", map[string]any{
		"name":  "Ben Okafor",
		"email": "ben@example.com",
	})
	trainerID := trainerResp["trainer"].(map[string]any)["id"].(string)

	studentResp := postJSON("/students", map[string]any{
		"name":  "Asha Patel",
		"email": "asha@example.com",
	})
	studentID := studentResp["student"].(map[string]any)["id"].(string)

	sessionResp := postJSON("/sessions", map[string]any{
		"type":       "tabletop-training",
		"date":       "2024-06-10",
		"start_time": "13:00",
		"end_time":   "14:00",
		"seat":       1,
		"student_id": studentID,
		"trainer_id": trainerID,
	})
	session := sessionResp["session"].(map[string]any)
	if session["status"] != "scheduled" {
		t.Fatalf("session status = %v, want scheduled", session["status"])
	}

	resp, err := http.Get(fmt.Sprintf("%s/sessions?date=%s", server.URL, "2024-06-10"))
	if err != nil {
		t.Fatalf("GET /sessions returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /sessions status = %d", resp.StatusCode)
	}
	var listResp struct {
		Sessions []map[string]any `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(listResp.Sessions))
	}
	if listResp.Sessions[0]["id"] != session["id"] {
		t.Fatalf("listed session id = %v, want %v", listResp.Sessions[0]["id"], session["id"])
	}
}
