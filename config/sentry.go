package config

// SentryConfig defines settings for Sentry error monitoring.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	// ServiceName is attached as the "service" tag of every event.
	ServiceName string `json:"service_name"`
}

// SetDefaults applies sane defaults.
func (c *SentryConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "standwait"
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
}
