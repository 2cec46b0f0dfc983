package capacity

import (
	"fmt"
	"strings"
)

// Config holds per-category service rates and server inference bounds.
type Config struct {
	// CategoryRates maps a category to its per-server service rate in items per minute.
	CategoryRates map[string]float64 `json:"category_rates"`
	// DefaultRate is used for unknown categories and empty mixes.
	DefaultRate float64 `json:"default_rate"`
	// UtilizationFactor scales the peak/mu ratio when inferring servers.
	UtilizationFactor float64 `json:"utilization_factor"`
	MaxServers        int     `json:"max_servers"`
	// DefaultCapacity is the per-minute throughput assumed when a stand has no history.
	DefaultCapacity float64 `json:"default_capacity"`
}

// DefaultCategoryRates returns the built-in service rates.
func DefaultCategoryRates() map[string]float64 {
	return map[string]float64{
		"alcohol":        1.33,
		"beer":           1.33,
		"wine":           1.33,
		"liquor":         1.33,
		"hot food":       1.0,
		"snacks":         3.0,
		"cold beverages": 3.0,
	}
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if len(c.CategoryRates) == 0 {
		c.CategoryRates = DefaultCategoryRates()
	}
	if c.DefaultRate <= 0 {
		c.DefaultRate = 1.5
	}
	if c.UtilizationFactor <= 0 {
		c.UtilizationFactor = 0.7
	}
	if c.MaxServers <= 0 {
		c.MaxServers = 6
	}
	if c.DefaultCapacity <= 0 {
		c.DefaultCapacity = 1.0
	}
}

// Validate rejects non-positive rates.
func (c Config) Validate() error {
	for cat, r := range c.CategoryRates {
		if r <= 0 {
			return fmt.Errorf("category_rates[%s] must be > 0", cat)
		}
	}
	return nil
}

func normalize(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
