// Package monitoring adapts sentry-go to the core Monitor interface.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/standwait/config"
	coremon "github.com/kilianp07/standwait/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	if err := sentry.Init(clientOptions(cfg)); err != nil {
		return nil, err
	}
	return &sentryMonitor{service: cfg.ServiceName}, nil
}

func clientOptions(cfg config.SentryConfig) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		ServerName:       cfg.ServiceName,
	}
}

type sentryMonitor struct {
	service string
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		s.applyScope(scope, tags)
		sentry.CaptureException(err)
	})
}

// applyScope tags the event. Replay failures also carry a replay context and
// are grouped per module.
func (s *sentryMonitor) applyScope(scope *sentry.Scope, tags map[string]string) {
	scope.SetLevel(sentry.LevelError)
	if s.service != "" {
		scope.SetTag("service", s.service)
	}
	for k, v := range tags {
		scope.SetTag(k, v)
	}
	if id := tags[coremon.TagSession]; id != "" {
		scope.SetContext("replay", sentry.Context{
			"session_id": id,
			"date":       tags[coremon.TagDate],
		})
		scope.SetFingerprint([]string{"{{ default }}", "replay", tags[coremon.TagModule]})
	}
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
