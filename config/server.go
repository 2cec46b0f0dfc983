package config

import "fmt"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr                 string `json:"addr"`
	ReadHeaderTimeoutSec int    `json:"read_header_timeout_sec"`
	ShutdownTimeoutSec   int    `json:"shutdown_timeout_sec"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadHeaderTimeoutSec <= 0 {
		c.ReadHeaderTimeoutSec = 5
	}
	if c.ShutdownTimeoutSec <= 0 {
		c.ShutdownTimeoutSec = 10
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server: addr is required")
	}
	return nil
}
