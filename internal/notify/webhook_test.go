package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhook_OK(t *testing.T) {
	var got webhookPayload
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(200)
	}))
	defer ts.Close()

	wh := NewWebhook(ts.URL)
	if wh == nil {
		t.Fatal("expected webhook client")
	}
	if err := wh.Send(context.Background(), "Title", "Hello"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("want JSON content type, got %q", contentType)
	}
	if got.MsgType != "text" {
		t.Fatalf("want msg_type=text, got %q", got.MsgType)
	}
	if !strings.HasPrefix(got.Content.Text, "Title\n") || !strings.HasSuffix(got.Content.Text, "Hello") {
		t.Fatalf("payload not as expected: %q", got.Content.Text)
	}
}

func TestWebhook_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	err := NewWebhook(ts.URL).Send(context.Background(), "X", "Y")
	if err == nil {
		t.Fatalf("expected error on non-2xx")
	}
}

func TestWebhook_Disabled(t *testing.T) {
	var wh *Webhook = NewWebhook("")
	if err := wh.Send(context.Background(), "X", "Y"); err == nil {
		t.Fatalf("expected error from disabled webhook")
	}
}
