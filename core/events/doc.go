// Package events defines the replay lifecycle events emitted on the event bus.
//
// Available event kinds:
//   - KindStarted: a session began streaming
//   - KindTick: a snapshot was emitted
//   - KindCompleted: the session ran out of frames
//   - KindCancelled: the session was cancelled or its client went away
package events
