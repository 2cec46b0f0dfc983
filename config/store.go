package config

import (
	"fmt"

	"github.com/kilianp07/standwait/infra/store/postgres"
)

// Reference store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig selects where historical reference data is read from.
type StoreConfig struct {
	Driver string `json:"driver"`
	// Dataset is a YAML or JSON fixture. It backs the memory driver and seeds
	// the SQL drivers when Seed is set.
	Dataset    string          `json:"dataset"`
	Seed       bool            `json:"seed"`
	SQLitePath string          `json:"sqlite_path"`
	Postgres   postgres.Config `json:"postgres"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.Driver == DriverSQLite && c.SQLitePath == "" {
		c.SQLitePath = "standwait.db"
	}
	if c.Driver == DriverPostgres {
		c.Postgres.SetDefaults()
	}
}

// Validate checks the driver settings.
func (c StoreConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
		if c.Dataset == "" {
			return fmt.Errorf("store: dataset is required for the memory driver")
		}
	case DriverPostgres:
		if err := c.Postgres.Validate(); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("store: unknown driver %q", c.Driver)
	}
	if c.Seed && c.Dataset == "" {
		return fmt.Errorf("store: seed requires a dataset")
	}
	return nil
}
