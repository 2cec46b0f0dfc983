// Package sqlite serves reference data from an embedded SQLite file. It backs
// local development and the CLI when no PostgreSQL server is configured.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/reference"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    location TEXT NOT NULL,
    category TEXT NOT NULL,
    item     TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    ts       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_ts_idx ON transactions (ts);
CREATE TABLE IF NOT EXISTS demand_samples (
    location  TEXT NOT NULL,
    hour      INTEGER NOT NULL,
    slot      INTEGER NOT NULL,
    avg_items REAL NOT NULL,
    opponent  TEXT NOT NULL DEFAULT '',
    weekday   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS category_mix (
    location  TEXT NOT NULL,
    category  TEXT NOT NULL,
    avg_items REAL NOT NULL,
    opponent  TEXT NOT NULL DEFAULT '',
    weekday   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS peak_throughput (
    location         TEXT PRIMARY KEY,
    items_per_minute REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS item_sales (
    location TEXT NOT NULL,
    category TEXT NOT NULL,
    item     TEXT NOT NULL,
    quantity INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS locations (
    name TEXT PRIMARY KEY,
    x    REAL NOT NULL,
    y    REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS seat_zones (
    id    TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    x     REAL NOT NULL,
    y     REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS zone_distances (
    zone_id  TEXT NOT NULL,
    location TEXT NOT NULL,
    meters   REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
    id         TEXT PRIMARY KEY,
    opponent   TEXT NOT NULL,
    start_time INTEGER NOT NULL
);`

const filterClause = `(?1 = '' OR lower(opponent) = lower(?1)) AND (?2 = '' OR lower(weekday) = lower(?2))`

// Store implements reference.Store over a SQLite database.
type Store struct {
	db *sql.DB
}

var _ reference.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, wrap("migrate", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrReference, op, err)
}

// Seed inserts ds in a single transaction.
func (s *Store) Seed(ctx context.Context, ds reference.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("seed", err)
	}
	defer func() { _ = tx.Rollback() }()

	exec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	for _, t := range ds.Transactions {
		if err := exec(`INSERT INTO transactions (location, category, item, quantity, ts) VALUES (?, ?, ?, ?, ?)`,
			t.Location, t.Category, t.Item, t.Quantity, t.Timestamp.UnixMilli()); err != nil {
			return wrap("seed transactions", err)
		}
	}
	for _, d := range ds.DemandSamples {
		if err := exec(`INSERT INTO demand_samples (location, hour, slot, avg_items, opponent, weekday) VALUES (?, ?, ?, ?, ?, ?)`,
			d.Location, d.Hour, d.Slot, d.AvgItems, d.Opponent, d.Weekday); err != nil {
			return wrap("seed demand_samples", err)
		}
	}
	for _, c := range ds.CategoryMix {
		if err := exec(`INSERT INTO category_mix (location, category, avg_items, opponent, weekday) VALUES (?, ?, ?, ?, ?)`,
			c.Location, c.Category, c.AvgItems, c.Opponent, c.Weekday); err != nil {
			return wrap("seed category_mix", err)
		}
	}
	for loc, v := range ds.Peaks {
		if err := exec(`INSERT INTO peak_throughput (location, items_per_minute) VALUES (?, ?)
            ON CONFLICT(location) DO UPDATE SET items_per_minute = excluded.items_per_minute`, loc, v); err != nil {
			return wrap("seed peak_throughput", err)
		}
	}
	for _, it := range ds.ItemSales {
		if err := exec(`INSERT INTO item_sales (location, category, item, quantity) VALUES (?, ?, ?, ?)`,
			it.Location, it.Category, it.Item, it.Quantity); err != nil {
			return wrap("seed item_sales", err)
		}
	}
	for _, l := range ds.Locations {
		if err := exec(`INSERT OR REPLACE INTO locations (name, x, y) VALUES (?, ?, ?)`, l.Name, l.X, l.Y); err != nil {
			return wrap("seed locations", err)
		}
	}
	for _, z := range ds.Zones {
		if err := exec(`INSERT OR REPLACE INTO seat_zones (id, label, x, y) VALUES (?, ?, ?, ?)`, z.ID, z.Label, z.X, z.Y); err != nil {
			return wrap("seed seat_zones", err)
		}
	}
	for _, d := range ds.ZoneDistances {
		if err := exec(`INSERT INTO zone_distances (zone_id, location, meters) VALUES (?, ?, ?)`, d.ZoneID, d.Location, d.Meters); err != nil {
			return wrap("seed zone_distances", err)
		}
	}
	for _, g := range ds.Games {
		if err := exec(`INSERT OR REPLACE INTO games (id, opponent, start_time) VALUES (?, ?, ?)`,
			g.ID, g.Opponent, g.Start.UnixMilli()); err != nil {
			return wrap("seed games", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrap("seed", err)
	}
	return nil
}

func dayBounds(date time.Time) (int64, int64) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return from.UnixMilli(), from.AddDate(0, 0, 1).UnixMilli()
}

func (s *Store) Transactions(ctx context.Context, date time.Time) ([]model.TransactionEvent, error) {
	from, to := dayBounds(date)
	rows, err := s.db.QueryContext(ctx, `SELECT location, category, item, quantity, ts
        FROM transactions WHERE ts >= ? AND ts < ? ORDER BY ts`, from, to)
	if err != nil {
		return nil, wrap("transactions", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.TransactionEvent
	for rows.Next() {
		var ev model.TransactionEvent
		var ts int64
		if err := rows.Scan(&ev.Location, &ev.Category, &ev.Item, &ev.Quantity, &ts); err != nil {
			return nil, wrap("transactions", err)
		}
		ev.Timestamp = time.UnixMilli(ts).UTC()
		res = append(res, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("transactions", err)
	}
	return res, nil
}

func (s *Store) DemandSamples(ctx context.Context, f reference.DemandFilter) ([]model.DemandSample, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location, hour, slot, avg_items, opponent, weekday
        FROM demand_samples WHERE `+filterClause+` ORDER BY location, hour, slot`, f.Opponent, f.Weekday)
	if err != nil {
		return nil, wrap("demand samples", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.DemandSample
	for rows.Next() {
		var d model.DemandSample
		if err := rows.Scan(&d.Location, &d.Hour, &d.Slot, &d.AvgItems, &d.Opponent, &d.Weekday); err != nil {
			return nil, wrap("demand samples", err)
		}
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("demand samples", err)
	}
	return res, nil
}

func (s *Store) CategoryMix(ctx context.Context, f reference.DemandFilter) ([]model.CategoryMix, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location, category, avg_items, opponent, weekday
        FROM category_mix WHERE `+filterClause+` ORDER BY location, category`, f.Opponent, f.Weekday)
	if err != nil {
		return nil, wrap("category mix", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.CategoryMix
	for rows.Next() {
		var c model.CategoryMix
		if err := rows.Scan(&c.Location, &c.Category, &c.AvgItems, &c.Opponent, &c.Weekday); err != nil {
			return nil, wrap("category mix", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("category mix", err)
	}
	return res, nil
}

func (s *Store) PeakThroughput(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location, items_per_minute FROM peak_throughput`)
	if err != nil {
		return nil, wrap("peak throughput", err)
	}
	defer func() { _ = rows.Close() }()
	res := make(map[string]float64)
	for rows.Next() {
		var loc string
		var v float64
		if err := rows.Scan(&loc, &v); err != nil {
			return nil, wrap("peak throughput", err)
		}
		res[loc] = v
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("peak throughput", err)
	}
	return res, nil
}

func (s *Store) ItemSales(ctx context.Context) ([]model.ItemSale, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location, category, item, quantity FROM item_sales ORDER BY location, item`)
	if err != nil {
		return nil, wrap("item sales", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.ItemSale
	for rows.Next() {
		var it model.ItemSale
		if err := rows.Scan(&it.Location, &it.Category, &it.Item, &it.Quantity); err != nil {
			return nil, wrap("item sales", err)
		}
		res = append(res, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("item sales", err)
	}
	return res, nil
}

func (s *Store) Locations(ctx context.Context) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, x, y FROM locations ORDER BY name`)
	if err != nil {
		return nil, wrap("locations", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.Name, &l.X, &l.Y); err != nil {
			return nil, wrap("locations", err)
		}
		res = append(res, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("locations", err)
	}
	return res, nil
}

func (s *Store) Zones(ctx context.Context) ([]model.SeatZone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label, x, y FROM seat_zones ORDER BY id`)
	if err != nil {
		return nil, wrap("zones", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.SeatZone
	for rows.Next() {
		var z model.SeatZone
		if err := rows.Scan(&z.ID, &z.Label, &z.X, &z.Y); err != nil {
			return nil, wrap("zones", err)
		}
		res = append(res, z)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("zones", err)
	}
	return res, nil
}

func (s *Store) ZoneDistances(ctx context.Context) ([]model.ZoneDistance, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT zone_id, location, meters FROM zone_distances ORDER BY zone_id, location`)
	if err != nil {
		return nil, wrap("zone distances", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.ZoneDistance
	for rows.Next() {
		var d model.ZoneDistance
		if err := rows.Scan(&d.ZoneID, &d.Location, &d.Meters); err != nil {
			return nil, wrap("zone distances", err)
		}
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("zone distances", err)
	}
	return res, nil
}

func (s *Store) GameOn(ctx context.Context, date time.Time) (*model.Game, error) {
	from, to := dayBounds(date)
	var g model.Game
	var start int64
	err := s.db.QueryRowContext(ctx, `SELECT id, opponent, start_time FROM games
        WHERE start_time >= ? AND start_time < ? ORDER BY start_time LIMIT 1`, from, to).
		Scan(&g.ID, &g.Opponent, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("game", err)
	}
	g.Start = time.UnixMilli(start).UTC()
	return &g, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}
