package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hamed0406/uptimealert/internal/ui"
)

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldErr := ui.Out, ui.Err
	ui.Out, ui.Err = &buf, &buf
	t.Cleanup(func() { ui.Out, ui.Err = oldOut, oldErr })
	return &buf
}

func baseEnv(t *testing.T, targets string) {
	t.Helper()
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/abc")
	t.Setenv("TARGETS", targets)
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("REQUEST_TIMEOUT_MS", "500")
	t.Setenv("RETRY_ATTEMPTS", "1")
	t.Setenv("ALERT_TIMEZONE", "UTC")
}

func execute(args ...string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestPreflight_ReportsInvalidConfig(t *testing.T) {
	out := captureUI(t)
	baseEnv(t, "not-a-url")

	if err := execute("preflight", "--skip-dns"); err == nil {
		t.Fatalf("expected preflight to fail")
	}
	if !strings.Contains(out.String(), "TARGETS") {
		t.Fatalf("output should name the offending key:\n%s", out.String())
	}
}

func TestPreflight_PassesAndWarnsOnOpenStatusAPI(t *testing.T) {
	out := captureUI(t)
	baseEnv(t, "https://a.example")
	t.Setenv("STATUS_ADDR", "127.0.0.1:8080")

	if err := execute("preflight", "--skip-dns"); err != nil {
		t.Fatalf("preflight: %v\n%s", err, out.String())
	}
	s := out.String()
	if !strings.Contains(s, "preflight passed") || !strings.Contains(s, "STATUS_API_KEYS") {
		t.Fatalf("unexpected output:\n%s", s)
	}
}

func TestCheck_ExitsNonZeroWhenTargetDown(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	out := captureUI(t)
	baseEnv(t, good.URL+","+bad.URL)

	err := execute("check")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 targets down") {
		t.Fatalf("want 1 of 2 down, got %v", err)
	}
	s := out.String()
	if !strings.Contains(s, bad.URL) || !strings.Contains(s, "unexpected status") {
		t.Fatalf("check output missing the failing target:\n%s", s)
	}
}

func TestCheck_AllUp(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer good.Close()

	captureUI(t)
	baseEnv(t, good.URL)

	if err := execute("check"); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestEnvFileFlag(t *testing.T) {
	captureUI(t)
	baseEnv(t, "https://a.example")
	os.Unsetenv("WEBHOOK_URL")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("WEBHOOK_URL=https://hooks.example.com/from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("WEBHOOK_URL") })

	if err := execute("preflight", "--skip-dns", "--env-file", path); err != nil {
		t.Fatalf("webhook from env file should satisfy validation: %v", err)
	}
	if err := execute("preflight", "--env-file", filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("missing explicit env file should fail")
	}
}
