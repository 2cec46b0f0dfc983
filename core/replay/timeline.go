package replay

import (
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// Frame is one tick of the virtual clock: every bucket sharing an index.
type Frame struct {
	Index   int
	Start   time.Time
	End     time.Time
	Buckets []model.TimeBucket
}

// Timeline groups ordered buckets into contiguous frames from index 0 to the
// last index. Indexes without sales yield empty frames.
func Timeline(buckets []model.TimeBucket, anchor time.Time, width time.Duration) []Frame {
	if len(buckets) == 0 {
		return nil
	}
	last := 0
	for _, b := range buckets {
		if b.Index > last {
			last = b.Index
		}
	}
	frames := make([]Frame, last+1)
	for i := range frames {
		start := anchor.Add(time.Duration(i) * width)
		frames[i] = Frame{Index: i, Start: start, End: start.Add(width)}
	}
	for _, b := range buckets {
		frames[b.Index].Buckets = append(frames[b.Index].Buckets, b)
	}
	return frames
}
