// Package replay rebuilds a day of point-of-sale activity as fixed-width
// buckets and streams them on an accelerated virtual clock.
//
// BuildBuckets and Timeline are pure. A Session walks the timeline one frame
// per Tick and computes a Snapshot for each frame. A Streamer drives a Session
// from a ticker and owns the ticker for the whole run.
package replay
