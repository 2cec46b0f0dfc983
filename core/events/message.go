package events

import (
	"encoding/json"
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// Message is the wire form of a ReplayEvent mirrored to external brokers.
type Message struct {
	Kind      Kind            `json:"kind"`
	SessionID string          `json:"session_id"`
	Date      string          `json:"date"`
	Seq       int             `json:"seq"`
	Total     int             `json:"total"`
	Snapshot  *model.Snapshot `json:"snapshot,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewMessage converts ev to its wire form.
func NewMessage(ev ReplayEvent) Message {
	m := Message{
		Kind:      ev.Kind,
		SessionID: ev.SessionID,
		Date:      ev.Date,
		Seq:       ev.Seq,
		Total:     ev.Total,
		Snapshot:  ev.Snapshot,
	}
	if ev.Err != nil {
		m.Error = ev.Err.Error()
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	m.Timestamp = at.UnixMilli()
	return m
}

// Encode marshals ev as JSON.
func Encode(ev ReplayEvent) ([]byte, error) {
	return json.Marshal(NewMessage(ev))
}
