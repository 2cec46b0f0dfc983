// Package monitoring reports server-side failures to an error tracker.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// Tag keys understood by every Monitor.
const (
	TagModule  = "module"
	TagPath    = "path"
	TagSession = "session_id"
	TagDate    = "replay_date"
)

// ReplayTags tags a failure that happened while serving or mirroring a replay
// session. Empty values are left out.
func ReplayTags(module, sessionID, date string) map[string]string {
	tags := map[string]string{TagModule: module}
	if sessionID != "" {
		tags[TagSession] = sessionID
	}
	if date != "" {
		tags[TagDate] = date
	}
	return tags
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil || current == nil {
		return
	}
	current.CaptureException(err, tags)
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Go runs fn in a goroutine that reports panics to the monitor.
func Go(fn func()) {
	go func() {
		defer Recover()
		fn()
	}()
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}
