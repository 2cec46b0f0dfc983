package monitoring

import (
	"errors"
	"testing"
	"time"
)

type captureMonitor struct {
	NopMonitor
	errs []error
	tags []map[string]string
}

func (c *captureMonitor) CaptureException(err error, tags map[string]string) {
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
}

func TestCaptureExceptionUsesInstalledMonitor(t *testing.T) {
	m := &captureMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	CaptureException(nil, nil)
	CaptureException(errors.New("store down"), map[string]string{"op": "estimate"})
	if len(m.errs) != 1 {
		t.Fatalf("expected one capture got %d", len(m.errs))
	}
	if m.tags[0]["op"] != "estimate" {
		t.Fatalf("tags not forwarded: %v", m.tags[0])
	}
}

func TestGoRunsFunction(t *testing.T) {
	done := make(chan struct{})
	Go(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("function not run")
	}
}

func TestReplayTagsOmitEmptyValues(t *testing.T) {
	tags := ReplayTags("kafka", "s1", "")
	if tags[TagModule] != "kafka" || tags[TagSession] != "s1" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if _, ok := tags[TagDate]; ok {
		t.Fatalf("empty date should be omitted: %v", tags)
	}
}
