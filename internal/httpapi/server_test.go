package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimealert/internal/domain"
	"github.com/hamed0406/uptimealert/internal/monitor"
	"github.com/hamed0406/uptimealert/internal/repo/memory"
)

// ---- test helpers ----

type fixedSummary struct {
	s  monitor.Summary
	ok bool
}

func (f fixedSummary) LastSummary() (monitor.Summary, bool) { return f.s, f.ok }

type fixedState string

func (f fixedState) StateName() string { return string(f) }

func setup(t *testing.T, keys []string) (*httptest.Server, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	targets := []domain.Target{"https://a.example", "https://b.example"}
	if err := store.Init(ctx, targets); err != nil {
		t.Fatal(err)
	}
	_, _, _ = store.Update(ctx, targets[1], func(prev domain.StatusRecord) domain.StatusRecord {
		return domain.NextDown(prev, time.Now(), "connection refused")
	})

	sum := fixedSummary{s: monitor.Summary{CycleID: "01H0TEST", Up: 1, Down: 1}, ok: true}
	srv := NewServer(zap.NewNop(), store, sum, fixedState("running"), Options{
		APIKeys: keys,
		// very high rate limits to avoid flakiness in tests
		RPM:   10_000,
		Burst: 10_000,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	ts, _ := setup(t, []string{"key"})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz needs no key; got %d", resp.StatusCode)
	}
}

func TestStatus_ReportsStoreSummaryAndState(t *testing.T) {
	ts, _ := setup(t, nil)

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	var body struct {
		State   string `json:"state"`
		Summary struct {
			CycleID string `json:"cycle_id"`
			Up      int    `json:"up"`
			Down    int    `json:"down"`
		} `json:"summary"`
		Targets []struct {
			Target string `json:"target"`
			Status struct {
				IsUp                bool   `json:"is_up"`
				ConsecutiveFailures int    `json:"consecutive_failures"`
				Error               string `json:"error"`
			} `json:"status"`
		} `json:"targets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != "running" || body.Summary.CycleID != "01H0TEST" || body.Summary.Down != 1 {
		t.Fatalf("unexpected header fields: %+v", body)
	}
	if len(body.Targets) != 2 {
		t.Fatalf("want 2 targets, got %d", len(body.Targets))
	}
	b := body.Targets[1]
	if b.Target != "https://b.example" || b.Status.IsUp || b.Status.ConsecutiveFailures != 1 || b.Status.Error == "" {
		t.Fatalf("unexpected target status: %+v", b)
	}
}

func TestStatus_RequiresKeyWhenConfigured(t *testing.T) {
	ts, _ := setup(t, []string{"secret"})

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without key, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/status", nil)
	req.Header.Set("X-API-Key", "secret")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("want 200 with key, got %d", resp2.StatusCode)
	}
}

func TestStartAndShutdown(t *testing.T) {
	srv := NewServer(zap.NewNop(), memory.New(), nil, nil, Options{})
	if err := srv.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
