package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/uptimealert/internal/domain"
)

type sent struct{ title, text string }

type memSender struct {
	mu    sync.Mutex
	msgs  []sent
	err   error
	panic bool
}

func (m *memSender) Send(ctx context.Context, title, text string) error {
	if m.panic {
		panic("sender exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, sent{title, text})
	return m.err
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

var checkedAt = time.Date(2025, 8, 18, 12, 30, 0, 0, time.UTC)

func TestAlerter_DownBody(t *testing.T) {
	s := &memSender{}
	log, _ := observed()
	a := NewAlerter(s, log, AlerterConfig{NotifyOnRecovery: true, Location: time.UTC})

	rec := domain.NextDown(domain.InitialRecord(), checkedAt, "failed after 3 attempts: connection refused")
	a.NotifyDown(context.Background(), "https://bad.example", rec)

	if len(s.msgs) != 1 {
		t.Fatalf("want 1 message, got %d", len(s.msgs))
	}
	msg := s.msgs[0]
	if !strings.Contains(msg.title, "DOWN") {
		t.Fatalf("unexpected title %q", msg.title)
	}
	for _, want := range []string{
		"URL: https://bad.example",
		"Status: DOWN",
		"Reason: failed after 3 attempts: connection refused",
		"Consecutive failures: 1",
		"Time: 2025-08-18 12:30:00 UTC",
	} {
		if !strings.Contains(msg.text, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.text)
		}
	}
}

func TestAlerter_UpBodyUsesLocation(t *testing.T) {
	s := &memSender{}
	log, _ := observed()
	loc := time.FixedZone("CST", 8*3600)
	a := NewAlerter(s, log, AlerterConfig{NotifyOnRecovery: true, Location: loc})

	a.NotifyUp(context.Background(), "https://good.example", domain.NextUp(checkedAt, 200, 123*time.Millisecond))

	if len(s.msgs) != 1 {
		t.Fatalf("want 1 message, got %d", len(s.msgs))
	}
	for _, want := range []string{"Status: UP", "HTTP: 200", "Response time: 123 ms", "Time: 2025-08-18 20:30:00 CST"} {
		if !strings.Contains(s.msgs[0].text, want) {
			t.Fatalf("body missing %q:\n%s", want, s.msgs[0].text)
		}
	}
}

func TestAlerter_NoRecoveryIfDisabled(t *testing.T) {
	s := &memSender{}
	log, _ := observed()
	a := NewAlerter(s, log, AlerterConfig{NotifyOnRecovery: false})

	a.NotifyUp(context.Background(), "https://good.example", domain.NextUp(checkedAt, 200, time.Millisecond))
	if len(s.msgs) != 0 {
		t.Fatalf("recovery alert should be suppressed, got %d", len(s.msgs))
	}

	a.NotifyDown(context.Background(), "https://good.example", domain.NextDown(domain.InitialRecord(), checkedAt, "x"))
	if len(s.msgs) != 1 {
		t.Fatalf("down alerts are never suppressed, got %d", len(s.msgs))
	}
}

func TestAlerter_DeliveryFailureIsLoggedNotReturned(t *testing.T) {
	s := &memSender{err: errors.New("webhook returned 502 Bad Gateway")}
	log, logs := observed()
	a := NewAlerter(s, log, AlerterConfig{NotifyOnRecovery: true})

	a.NotifyDown(context.Background(), "https://bad.example", domain.NextDown(domain.InitialRecord(), checkedAt, "x"))

	if len(s.msgs) != 1 {
		t.Fatalf("want exactly one delivery attempt, got %d", len(s.msgs))
	}
	if logs.FilterMessage("notify_failed").Len() != 1 {
		t.Fatalf("want notify_failed log entry, got %v", logs.All())
	}
}

func TestAlerter_SenderPanicIsContained(t *testing.T) {
	s := &memSender{panic: true}
	log, logs := observed()
	a := NewAlerter(s, log, AlerterConfig{NotifyOnRecovery: true})

	a.NotifyDown(context.Background(), "https://bad.example", domain.NextDown(domain.InitialRecord(), checkedAt, "x"))

	if logs.FilterMessage("notify_panic").Len() != 1 {
		t.Fatalf("want notify_panic log entry, got %v", logs.All())
	}
}
