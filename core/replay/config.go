package replay

import (
	"fmt"
	"time"
)

// Config holds the replay parameters.
type Config struct {
	BucketMinutes int     `json:"bucket_minutes"`
	Speed         float64 `json:"speed"`
	// CapacityFactor scales the p75 throughput into the capacity used by the wait model.
	CapacityFactor float64 `json:"capacity_factor"`
	// MaxUtilization caps the reported utilization.
	MaxUtilization float64 `json:"max_utilization"`
	MinStepMillis  int     `json:"min_step_millis"`
	MaxStepSeconds int     `json:"max_step_seconds"`
	// MaxBucketMinutes bounds the bucket width accepted from clients.
	MaxBucketMinutes int `json:"max_bucket_minutes"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BucketMinutes <= 0 {
		c.BucketMinutes = 5
	}
	if c.Speed <= 0 {
		c.Speed = 60
	}
	if c.CapacityFactor <= 0 {
		c.CapacityFactor = 0.65
	}
	if c.MaxUtilization <= 0 {
		c.MaxUtilization = 1.5
	}
	if c.MinStepMillis <= 0 {
		c.MinStepMillis = 200
	}
	if c.MaxStepSeconds <= 0 {
		c.MaxStepSeconds = 60
	}
	if c.MaxBucketMinutes <= 0 {
		c.MaxBucketMinutes = 60
	}
}

// Validate checks the ranges.
func (c Config) Validate() error {
	if c.BucketMinutes > c.MaxBucketMinutes {
		return fmt.Errorf("bucket_minutes %d exceeds max_bucket_minutes %d", c.BucketMinutes, c.MaxBucketMinutes)
	}
	if time.Duration(c.MinStepMillis)*time.Millisecond > time.Duration(c.MaxStepSeconds)*time.Second {
		return fmt.Errorf("min_step_millis exceeds max_step_seconds")
	}
	return nil
}

// Width returns the default bucket width.
func (c Config) Width() time.Duration {
	return time.Duration(c.BucketMinutes) * time.Minute
}

// Step returns the real-time interval between frames for a bucket width and a
// speed multiplier, clamped to the configured bounds.
func (c Config) Step(width time.Duration, speed float64) time.Duration {
	lo := time.Duration(c.MinStepMillis) * time.Millisecond
	hi := time.Duration(c.MaxStepSeconds) * time.Second
	if speed <= 0 {
		return hi
	}
	step := time.Duration(float64(width) / speed)
	if step < lo {
		return lo
	}
	if step > hi {
		return hi
	}
	return step
}
