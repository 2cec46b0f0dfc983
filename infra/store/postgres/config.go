package postgres

import "fmt"

// Config holds the connection settings of the reference database.
type Config struct {
	DSN                 string `json:"dsn"`
	ConnectTimeoutSec   int    `json:"connect_timeout_sec"`
	StatementTimeoutSec int    `json:"statement_timeout_sec"`
	MaxConns            int32  `json:"max_conns"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ConnectTimeoutSec <= 0 {
		c.ConnectTimeoutSec = 5
	}
	if c.StatementTimeoutSec <= 0 {
		c.StatementTimeoutSec = 30
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 8
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("postgres: dsn is required")
	}
	return nil
}
