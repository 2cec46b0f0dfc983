package queue

import "fmt"

// Config holds the wait policy constants.
type Config struct {
	// WaitCap is the ceiling returned for unstable or saturated queues, in minutes.
	WaitCap float64 `json:"wait_cap_minutes"`
	// StabilityThreshold is the utilization at which the queue is treated as unstable.
	StabilityThreshold float64 `json:"stability_threshold"`
	// BaseWait is the service floor of an idle stand in the replay model, in minutes.
	BaseWait float64 `json:"base_wait_minutes"`
	// LowBelow and HighBelow split waits into traffic levels.
	LowBelow  float64 `json:"low_below_minutes"`
	HighBelow float64 `json:"high_below_minutes"`
}

// DefaultConfig returns the standard policy.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.WaitCap <= 0 {
		c.WaitCap = 30
	}
	if c.StabilityThreshold <= 0 {
		c.StabilityThreshold = 0.99
	}
	if c.BaseWait <= 0 {
		c.BaseWait = 1.2
	}
	if c.LowBelow <= 0 {
		c.LowBelow = 3
	}
	if c.HighBelow <= 0 {
		c.HighBelow = 8
	}
}

// Validate checks the ranges.
func (c Config) Validate() error {
	if c.StabilityThreshold > 1 {
		return fmt.Errorf("stability_threshold must be <= 1")
	}
	if c.BaseWait > c.WaitCap {
		return fmt.Errorf("base_wait_minutes > wait_cap_minutes")
	}
	if c.LowBelow > c.HighBelow {
		return fmt.Errorf("low_below_minutes > high_below_minutes")
	}
	return nil
}
