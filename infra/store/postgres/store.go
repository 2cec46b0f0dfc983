// Package postgres serves reference data from a PostgreSQL database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/reference"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    location  TEXT NOT NULL,
    category  TEXT NOT NULL,
    item      TEXT NOT NULL,
    quantity  INTEGER NOT NULL,
    ts        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_ts_idx ON transactions (ts);
CREATE TABLE IF NOT EXISTS demand_samples (
    location  TEXT NOT NULL,
    hour      INTEGER NOT NULL,
    slot      INTEGER NOT NULL,
    avg_items DOUBLE PRECISION NOT NULL,
    opponent  TEXT NOT NULL DEFAULT '',
    weekday   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS category_mix (
    location  TEXT NOT NULL,
    category  TEXT NOT NULL,
    avg_items DOUBLE PRECISION NOT NULL,
    opponent  TEXT NOT NULL DEFAULT '',
    weekday   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS peak_throughput (
    location         TEXT PRIMARY KEY,
    items_per_minute DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS item_sales (
    location TEXT NOT NULL,
    category TEXT NOT NULL,
    item     TEXT NOT NULL,
    quantity INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS locations (
    name TEXT PRIMARY KEY,
    x    DOUBLE PRECISION NOT NULL,
    y    DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS seat_zones (
    id    TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    x     DOUBLE PRECISION NOT NULL,
    y     DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS zone_distances (
    zone_id  TEXT NOT NULL,
    location TEXT NOT NULL,
    meters   DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
    id         TEXT PRIMARY KEY,
    opponent   TEXT NOT NULL,
    start_time TIMESTAMPTZ NOT NULL
);`

const filterClause = `($1 = '' OR lower(opponent) = lower($1)) AND ($2 = '' OR lower(weekday) = lower($2))`

// Store implements reference.Store over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ reference.Store = (*Store)(nil)

// New connects to the database and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %v", model.ErrReference, err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.ConnConfig.ConnectTimeout = time.Duration(cfg.ConnectTimeoutSec) * time.Second
	pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.Itoa(cfg.StatementTimeoutSec * 1000)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s:%d: %v", model.ErrReference, pc.ConnConfig.Host, pc.ConnConfig.Port, err)
	}
	s := NewWithPool(pool)
	pingCtx, cancel := context.WithTimeout(ctx, pc.ConnConfig.ConnectTimeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrReference, op, err)
}

// Migrate creates the reference tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return wrap("migrate", err)
	}
	return nil
}

// Seed bulk loads ds into the tables.
func (s *Store) Seed(ctx context.Context, ds reference.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrap("seed", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	copies := []struct {
		table string
		cols  []string
		src   pgx.CopyFromSource
	}{
		{"transactions", []string{"location", "category", "item", "quantity", "ts"},
			pgx.CopyFromSlice(len(ds.Transactions), func(i int) ([]any, error) {
				t := ds.Transactions[i]
				return []any{t.Location, t.Category, t.Item, t.Quantity, t.Timestamp}, nil
			})},
		{"demand_samples", []string{"location", "hour", "slot", "avg_items", "opponent", "weekday"},
			pgx.CopyFromSlice(len(ds.DemandSamples), func(i int) ([]any, error) {
				d := ds.DemandSamples[i]
				return []any{d.Location, d.Hour, d.Slot, d.AvgItems, d.Opponent, d.Weekday}, nil
			})},
		{"category_mix", []string{"location", "category", "avg_items", "opponent", "weekday"},
			pgx.CopyFromSlice(len(ds.CategoryMix), func(i int) ([]any, error) {
				c := ds.CategoryMix[i]
				return []any{c.Location, c.Category, c.AvgItems, c.Opponent, c.Weekday}, nil
			})},
		{"item_sales", []string{"location", "category", "item", "quantity"},
			pgx.CopyFromSlice(len(ds.ItemSales), func(i int) ([]any, error) {
				it := ds.ItemSales[i]
				return []any{it.Location, it.Category, it.Item, it.Quantity}, nil
			})},
		{"locations", []string{"name", "x", "y"},
			pgx.CopyFromSlice(len(ds.Locations), func(i int) ([]any, error) {
				l := ds.Locations[i]
				return []any{l.Name, l.X, l.Y}, nil
			})},
		{"seat_zones", []string{"id", "label", "x", "y"},
			pgx.CopyFromSlice(len(ds.Zones), func(i int) ([]any, error) {
				z := ds.Zones[i]
				return []any{z.ID, z.Label, z.X, z.Y}, nil
			})},
		{"zone_distances", []string{"zone_id", "location", "meters"},
			pgx.CopyFromSlice(len(ds.ZoneDistances), func(i int) ([]any, error) {
				d := ds.ZoneDistances[i]
				return []any{d.ZoneID, d.Location, d.Meters}, nil
			})},
		{"games", []string{"id", "opponent", "start_time"},
			pgx.CopyFromSlice(len(ds.Games), func(i int) ([]any, error) {
				g := ds.Games[i]
				return []any{g.ID, g.Opponent, g.Start}, nil
			})},
	}
	for _, c := range copies {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.cols, c.src); err != nil {
			return wrap("seed "+c.table, err)
		}
	}
	for loc, v := range ds.Peaks {
		if _, err := tx.Exec(ctx, `INSERT INTO peak_throughput (location, items_per_minute) VALUES ($1, $2)
            ON CONFLICT (location) DO UPDATE SET items_per_minute = excluded.items_per_minute`, loc, v); err != nil {
			return wrap("seed peak_throughput", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("seed", err)
	}
	return nil
}

func (s *Store) Transactions(ctx context.Context, date time.Time) ([]model.TransactionEvent, error) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	rows, err := s.pool.Query(ctx, `SELECT location, category, item, quantity, ts
        FROM transactions WHERE ts >= $1 AND ts < $2 ORDER BY ts`, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, wrap("transactions", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TransactionEvent, error) {
		var ev model.TransactionEvent
		err := row.Scan(&ev.Location, &ev.Category, &ev.Item, &ev.Quantity, &ev.Timestamp)
		ev.Timestamp = ev.Timestamp.UTC()
		return ev, err
	})
	if err != nil {
		return nil, wrap("transactions", err)
	}
	return out, nil
}

func (s *Store) DemandSamples(ctx context.Context, f reference.DemandFilter) ([]model.DemandSample, error) {
	rows, err := s.pool.Query(ctx, `SELECT location, hour, slot, avg_items, opponent, weekday
        FROM demand_samples WHERE `+filterClause+` ORDER BY location, hour, slot`, f.Opponent, f.Weekday)
	if err != nil {
		return nil, wrap("demand samples", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DemandSample, error) {
		var d model.DemandSample
		err := row.Scan(&d.Location, &d.Hour, &d.Slot, &d.AvgItems, &d.Opponent, &d.Weekday)
		return d, err
	})
	if err != nil {
		return nil, wrap("demand samples", err)
	}
	return out, nil
}

func (s *Store) CategoryMix(ctx context.Context, f reference.DemandFilter) ([]model.CategoryMix, error) {
	rows, err := s.pool.Query(ctx, `SELECT location, category, avg_items, opponent, weekday
        FROM category_mix WHERE `+filterClause+` ORDER BY location, category`, f.Opponent, f.Weekday)
	if err != nil {
		return nil, wrap("category mix", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CategoryMix, error) {
		var c model.CategoryMix
		err := row.Scan(&c.Location, &c.Category, &c.AvgItems, &c.Opponent, &c.Weekday)
		return c, err
	})
	if err != nil {
		return nil, wrap("category mix", err)
	}
	return out, nil
}

func (s *Store) PeakThroughput(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `SELECT location, items_per_minute FROM peak_throughput`)
	if err != nil {
		return nil, wrap("peak throughput", err)
	}
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var loc string
		var v float64
		if err := rows.Scan(&loc, &v); err != nil {
			return nil, wrap("peak throughput", err)
		}
		out[loc] = v
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("peak throughput", err)
	}
	return out, nil
}

func (s *Store) ItemSales(ctx context.Context) ([]model.ItemSale, error) {
	rows, err := s.pool.Query(ctx, `SELECT location, category, item, quantity
        FROM item_sales ORDER BY location, item`)
	if err != nil {
		return nil, wrap("item sales", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ItemSale, error) {
		var it model.ItemSale
		err := row.Scan(&it.Location, &it.Category, &it.Item, &it.Quantity)
		return it, err
	})
	if err != nil {
		return nil, wrap("item sales", err)
	}
	return out, nil
}

func (s *Store) Locations(ctx context.Context) ([]model.Location, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, x, y FROM locations ORDER BY name`)
	if err != nil {
		return nil, wrap("locations", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Location, error) {
		var l model.Location
		err := row.Scan(&l.Name, &l.X, &l.Y)
		return l, err
	})
	if err != nil {
		return nil, wrap("locations", err)
	}
	return out, nil
}

func (s *Store) Zones(ctx context.Context) ([]model.SeatZone, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, label, x, y FROM seat_zones ORDER BY id`)
	if err != nil {
		return nil, wrap("zones", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SeatZone, error) {
		var z model.SeatZone
		err := row.Scan(&z.ID, &z.Label, &z.X, &z.Y)
		return z, err
	})
	if err != nil {
		return nil, wrap("zones", err)
	}
	return out, nil
}

func (s *Store) ZoneDistances(ctx context.Context) ([]model.ZoneDistance, error) {
	rows, err := s.pool.Query(ctx, `SELECT zone_id, location, meters FROM zone_distances ORDER BY zone_id, location`)
	if err != nil {
		return nil, wrap("zone distances", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ZoneDistance, error) {
		var d model.ZoneDistance
		err := row.Scan(&d.ZoneID, &d.Location, &d.Meters)
		return d, err
	})
	if err != nil {
		return nil, wrap("zone distances", err)
	}
	return out, nil
}

func (s *Store) GameOn(ctx context.Context, date time.Time) (*model.Game, error) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	var g model.Game
	err := s.pool.QueryRow(ctx, `SELECT id, opponent, start_time FROM games
        WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time LIMIT 1`, from, from.AddDate(0, 0, 1)).
		Scan(&g.ID, &g.Opponent, &g.Start)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("game", err)
	}
	g.Start = g.Start.UTC()
	return &g, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}
