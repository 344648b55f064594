package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SignalRelay/internal/domain/models"
	xlogger "SignalRelay/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeStatus struct {
	snap models.StatusSnapshot
}

func (f *fakeStatus) Snapshot() models.StatusSnapshot { return f.snap }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(snap models.StatusSnapshot) *echo.Echo {
	e := echo.New()
	h := NewStatusEchoHandler(xlogger.Nop(), &fakeStatus{snap: snap}, "100", "200")
	h.RegisterRoutes(e)
	return e
}

func get(t *testing.T, e *echo.Echo, path string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, env
}

func TestHomeRunning(t *testing.T) {
	e := newTestServer(models.StatusSnapshot{
		State:   models.StateRunning,
		Running: true,
		Uptime:  90 * time.Second,
	})

	code, env := get(t, e, "/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var body struct {
		Status  string  `json:"status"`
		State   string  `json:"state"`
		Uptime  float64 `json:"uptime"`
		BotInfo struct {
			Polling       bool   `json:"polling"`
			SourceGroup   string `json:"source_group"`
			TargetChannel string `json:"target_channel"`
		} `json:"bot_info"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if body.Status != "Bot is running!" {
		t.Fatalf("unexpected status %q", body.Status)
	}
	if body.State != "running" || body.Uptime != 90 {
		t.Fatalf("unexpected state/uptime %q/%v", body.State, body.Uptime)
	}
	if !body.BotInfo.Polling || body.BotInfo.SourceGroup != "100" || body.BotInfo.TargetChannel != "200" {
		t.Fatalf("unexpected bot info %+v", body.BotInfo)
	}
}

func TestHealthWhileRunning(t *testing.T) {
	e := newTestServer(models.StatusSnapshot{
		State:   models.StateRunning,
		Running: true,
		Uptime:  time.Minute,
	})

	code, env := get(t, e, "/health")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var body struct {
		Status     string `json:"status"`
		BotRunning bool   `json:"bot_running"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if body.Status != "healthy" || !body.BotRunning {
		t.Fatalf("unexpected health payload %+v", body)
	}
}

func TestHealthDuringRestart(t *testing.T) {
	e := newTestServer(models.StatusSnapshot{
		State:     models.StateRestarting,
		Running:   false,
		Restarts:  2,
		LastError: "polling failed",
	})

	// restart cycles are the normal recovery path, still healthy
	code, env := get(t, e, "/health")
	if code != http.StatusOK {
		t.Fatalf("expected 200 during restart, got %d", code)
	}

	var body struct {
		Status     string `json:"status"`
		BotRunning bool   `json:"bot_running"`
		State      string `json:"state"`
		Restarts   int64  `json:"restarts"`
		LastError  string `json:"last_error"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if body.Status != "healthy" || body.BotRunning {
		t.Fatalf("unexpected health payload %+v", body)
	}
	if body.State != "restarting" || body.Restarts != 2 {
		t.Fatalf("unexpected state/restarts %q/%d", body.State, body.Restarts)
	}
	if body.LastError != "polling failed" {
		t.Fatalf("last error not exposed, got %q", body.LastError)
	}
}

func TestHealthStopped(t *testing.T) {
	e := newTestServer(models.StatusSnapshot{
		State:   models.StateStopped,
		Running: false,
	})

	code, env := get(t, e, "/health")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when stopped, got %d", code)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if body.Status != "stopped" {
		t.Fatalf("unexpected status %q", body.Status)
	}
}
