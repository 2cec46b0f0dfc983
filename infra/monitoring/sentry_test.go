package monitoring

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/standwait/config"
	coremon "github.com/kilianp07/standwait/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor got %T", m)
	}
}

func TestNewSentryMonitorInvalidDSN(t *testing.T) {
	if _, err := NewSentryMonitor(config.SentryConfig{DSN: "::not a dsn"}); err == nil {
		t.Fatal("expected error for invalid DSN")
	}
}

func TestSentryMonitorCaptureWithoutClient(t *testing.T) {
	m := &sentryMonitor{service: "standwait"}
	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("boom"), map[string]string{"op": "route"})
}

func captureEvents(t *testing.T) *[]*sentry.Event {
	t.Helper()
	var got []*sentry.Event
	opts := clientOptions(config.SentryConfig{DSN: "https://public@example.com/1", ServiceName: "standwait"})
	opts.BeforeSend = func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		got = append(got, ev)
		return nil
	}
	if err := sentry.Init(opts); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })
	return &got
}

func TestSentryMonitorReplayScope(t *testing.T) {
	events := captureEvents(t)
	m := &sentryMonitor{service: "standwait"}
	m.CaptureException(errors.New("transactions: timeout"), coremon.ReplayTags("api", "s-42", "2024-04-05"))

	if len(*events) != 1 {
		t.Fatalf("expected one event got %d", len(*events))
	}
	ev := (*events)[0]
	if ev.Tags["service"] != "standwait" || ev.Tags[coremon.TagSession] != "s-42" {
		t.Fatalf("unexpected tags %v", ev.Tags)
	}
	replay, ok := ev.Contexts["replay"]
	if !ok || replay["session_id"] != "s-42" || replay["date"] != "2024-04-05" {
		t.Fatalf("unexpected replay context %v", ev.Contexts)
	}
	if len(ev.Fingerprint) != 3 || ev.Fingerprint[2] != "api" {
		t.Fatalf("unexpected fingerprint %v", ev.Fingerprint)
	}
}

func TestSentryMonitorRequestScope(t *testing.T) {
	events := captureEvents(t)
	m := &sentryMonitor{}
	m.CaptureException(errors.New("boom"), map[string]string{coremon.TagModule: "api", coremon.TagPath: "/api/route"})

	if len(*events) != 1 {
		t.Fatalf("expected one event got %d", len(*events))
	}
	ev := (*events)[0]
	if _, ok := ev.Contexts["replay"]; ok {
		t.Fatal("request failure should not carry a replay context")
	}
	if len(ev.Fingerprint) != 0 {
		t.Fatalf("unexpected fingerprint %v", ev.Fingerprint)
	}
	if ev.Level != sentry.LevelError {
		t.Fatalf("unexpected level %s", ev.Level)
	}
}
