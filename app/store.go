package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/standwait/config"
	"github.com/kilianp07/standwait/core/reference"
	"github.com/kilianp07/standwait/infra/store/postgres"
	"github.com/kilianp07/standwait/infra/store/sqlite"
)

// OpenStore opens the configured reference store. The returned func releases it.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (reference.Store, func() error, error) {
	var ds *reference.Dataset
	if cfg.Dataset != "" && (cfg.Driver == config.DriverMemory || cfg.Seed) {
		var err error
		if ds, err = reference.LoadDataset(cfg.Dataset); err != nil {
			return nil, nil, fmt.Errorf("load dataset: %w", err)
		}
	}
	switch cfg.Driver {
	case config.DriverMemory:
		if ds == nil {
			return nil, nil, fmt.Errorf("memory store requires a dataset")
		}
		return reference.NewMemoryStore(*ds), func() error { return nil }, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if ds != nil {
			if err := s.Seed(ctx, *ds); err != nil {
				_ = s.Close()
				return nil, nil, err
			}
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if ds != nil {
			if err := s.Migrate(ctx); err != nil {
				s.Close()
				return nil, nil, err
			}
			if err := s.Seed(ctx, *ds); err != nil {
				s.Close()
				return nil, nil, err
			}
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
