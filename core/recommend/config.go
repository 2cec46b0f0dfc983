package recommend

import (
	"fmt"
	"time"
)

// PeriodConfig is a named phase of a game, as minute offsets from its start.
type PeriodConfig struct {
	Name        string `json:"name"`
	StartOffset int    `json:"start_offset_minutes"`
	EndOffset   int    `json:"end_offset_minutes"`
}

// Config holds the ranking and routing policy.
type Config struct {
	// SupportThreshold is the historical quantity a stand must exceed to serve a category.
	SupportThreshold int `json:"support_threshold"`
	// WalkingSpeed in meters per minute.
	WalkingSpeed    float64 `json:"walking_speed"`
	MaxAlternatives int     `json:"max_alternatives"`
	// SlotMinutes is the width of a demand sample slot.
	SlotMinutes int `json:"slot_minutes"`
	// DefaultStart is the HH:MM game start used when no game is scheduled.
	DefaultStart string         `json:"default_start"`
	Periods      []PeriodConfig `json:"periods"`
}

// DefaultPeriods returns the standard game phases.
func DefaultPeriods() []PeriodConfig {
	return []PeriodConfig{
		{Name: "pre-game", StartOffset: -60, EndOffset: 0},
		{Name: "first half", StartOffset: 0, EndOffset: 50},
		{Name: "halftime", StartOffset: 50, EndOffset: 70},
		{Name: "second half", StartOffset: 70, EndOffset: 120},
		{Name: "post-game", StartOffset: 120, EndOffset: 150},
	}
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.SupportThreshold <= 0 {
		c.SupportThreshold = 100
	}
	if c.WalkingSpeed <= 0 {
		c.WalkingSpeed = 80
	}
	if c.MaxAlternatives <= 0 {
		c.MaxAlternatives = 5
	}
	if c.SlotMinutes <= 0 {
		c.SlotMinutes = 10
	}
	if c.DefaultStart == "" {
		c.DefaultStart = "19:00"
	}
	if len(c.Periods) == 0 {
		c.Periods = DefaultPeriods()
	}
}

// Validate checks slot width and period bounds.
func (c Config) Validate() error {
	if 60%c.SlotMinutes != 0 {
		return fmt.Errorf("slot_minutes must divide an hour")
	}
	if _, err := time.Parse("15:04", c.DefaultStart); err != nil {
		return fmt.Errorf("default_start: %w", err)
	}
	for _, p := range c.Periods {
		if p.Name == "" {
			return fmt.Errorf("period without name")
		}
		if p.EndOffset <= p.StartOffset {
			return fmt.Errorf("period %s ends before it starts", p.Name)
		}
	}
	return nil
}
