package replay

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kilianp07/standwait/core/model"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateExhausted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrNotStreaming is returned by Tick outside the Streaming state.
var ErrNotStreaming = errors.New("session is not streaming")

// Session is one replay run over a fixed timeline. It owns its frame cursor
// and shares no mutable state with other sessions.
type Session struct {
	id      string
	frames  []Frame
	builder *SnapshotBuilder

	mu    sync.Mutex
	state State
	next  int
}

// NewSession creates an idle session over frames.
func NewSession(frames []Frame, builder *SnapshotBuilder) *Session {
	return &Session{
		id:      uuid.NewString(),
		frames:  frames,
		builder: builder,
	}
}

func (s *Session) ID() string { return s.id }

// Total returns the number of frames in the session.
func (s *Session) Total() int { return len(s.frames) }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start moves an idle session to Streaming. A session without frames is
// immediately exhausted.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("start: session %s is %s", s.id, s.state)
	}
	if len(s.frames) == 0 {
		s.state = StateExhausted
		return model.ErrNoData
	}
	s.state = StateStreaming
	return nil
}

// Tick returns the snapshot of the next frame and its zero-based sequence
// number. The session becomes Exhausted after its last frame.
func (s *Session) Tick() (model.Snapshot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStreaming {
		return model.Snapshot{}, 0, ErrNotStreaming
	}
	seq := s.next
	snap := s.builder.Build(s.frames[seq])
	s.next++
	if s.next >= len(s.frames) {
		s.state = StateExhausted
	}
	return snap, seq, nil
}

// Cancel stops an idle or streaming session. Terminal states are kept.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle || s.state == StateStreaming {
		s.state = StateCancelled
	}
}
