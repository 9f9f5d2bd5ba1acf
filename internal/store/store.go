// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists orders, ingest runs, generated reports and alert
// notices in a SQLite database migrated with embedded goose migrations.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const dbFile = "laundry.db"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the analytics SQLite database.
type Store struct {
	db      *sqlx.DB
	dataDir string
	now     func() time.Time
}

// Open opens or creates dataDir/laundry.db and applies pending migrations.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sqlx.Connect("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db, cfg.DataDir), nil
}

// New wraps an already migrated connection.
func New(db *sqlx.DB, dataDir string) *Store {
	return &Store{db: db, dataDir: dataDir, now: time.Now}
}

func migrate(db *sqlx.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IngestRun records one successful CSV ingest.
type IngestRun struct {
	ID         int64     `json:"id" yaml:"id" db:"id"`
	Source     string    `json:"source" yaml:"source" db:"source"`
	Hash       string    `json:"hash" yaml:"hash" db:"hash"`
	Rows       int       `json:"rows" yaml:"rows" db:"rows"`
	IngestedAt time.Time `json:"ingested_at" yaml:"ingested_at" db:"ingested_at"`
}

// IngestSummary reports the outcome of an Ingest call.
type IngestSummary struct {
	Source  string
	Hash    string
	Rows    int
	Skipped bool
}

// Ingest loads the CSV at path into the orders table. When the file's
// content hash matches the latest run for the same source the load is
// skipped; otherwise all orders previously ingested from that source are
// replaced in a single transaction. Progress lines go to w.
func (s *Store) Ingest(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	hash, err := dataset.Hash(source)
	if err != nil {
		return IngestSummary{}, err
	}
	summary := IngestSummary{Source: source, Hash: hash}

	var storedHash string
	err = s.db.GetContext(ctx, &storedHash,
		`SELECT hash FROM ingest_runs WHERE source = ? ORDER BY id DESC LIMIT 1`, source)
	switch {
	case err == nil && storedHash == hash:
		fmt.Fprintf(w, "skipped %s (unchanged)\n", path)
		summary.Skipped = true
		return summary, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return summary, fmt.Errorf("checking previous ingest: %w", err)
	}

	orders, err := dataset.LoadFile(source)
	if err != nil {
		return summary, err
	}
	if err := s.replaceOrders(ctx, source, hash, orders); err != nil {
		return summary, err
	}

	summary.Rows = len(orders)
	fmt.Fprintf(w, "ingested %s (%d orders)\n", path, len(orders))
	return summary, nil
}

func (s *Store) replaceOrders(ctx context.Context, source, hash string, orders []types.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE source = ?`, source); err != nil {
		return fmt.Errorf("deleting old orders: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx,
		`INSERT INTO orders (source, start_date, laundry_id, tenant_id, item, service,
			water_litres, electricity_kwh, is_holiday, is_weekend)
		 VALUES (:source, :start_date, :laundry_id, :tenant_id, :item, :service,
			:water_litres, :electricity_kwh, :is_holiday, :is_weekend)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range orders {
		if _, err := stmt.ExecContext(ctx, fromOrder(source, orders[i])); err != nil {
			return fmt.Errorf("inserting order %d: %w", i+1, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_runs (source, hash, rows, ingested_at) VALUES (?, ?, ?, ?)`,
		source, hash, len(orders), s.now().UTC())
	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}
	return tx.Commit()
}

// LastIngest returns the most recent ingest run.
func (s *Store) LastIngest(ctx context.Context) (*IngestRun, error) {
	var run IngestRun
	err := s.db.GetContext(ctx, &run,
		`SELECT id, source, hash, rows, ingested_at FROM ingest_runs ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ingest run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying last ingest: %w", err)
	}
	return &run, nil
}

// Filter narrows an order query. Empty fields match everything.
type Filter struct {
	TenantID  string
	LaundryID string
	Limit     int
}

// dbOrder is an order row as stored in the database.
type dbOrder struct {
	Source         string  `db:"source"`
	StartDate      string  `db:"start_date"`
	LaundryID      string  `db:"laundry_id"`
	TenantID       string  `db:"tenant_id"`
	Item           string  `db:"item"`
	Service        string  `db:"service"`
	WaterLitres    float64 `db:"water_litres"`
	ElectricityKWh float64 `db:"electricity_kwh"`
	IsHoliday      bool    `db:"is_holiday"`
	IsWeekend      bool    `db:"is_weekend"`
}

func fromOrder(source string, o types.Order) dbOrder {
	return dbOrder{
		Source:         source,
		StartDate:      o.StartDate.Format(types.DateLayout),
		LaundryID:      o.LaundryID,
		TenantID:       o.TenantID,
		Item:           o.Item,
		Service:        o.Service,
		WaterLitres:    o.WaterLitres,
		ElectricityKWh: o.ElectricityKWh,
		IsHoliday:      o.IsHoliday,
		IsWeekend:      o.IsWeekend,
	}
}

func (r dbOrder) toOrder() (types.Order, error) {
	start, err := time.Parse(types.DateLayout, r.StartDate)
	if err != nil {
		return types.Order{}, fmt.Errorf("parsing stored date %q: %w", r.StartDate, err)
	}
	return types.Order{
		StartDate:      start,
		LaundryID:      r.LaundryID,
		TenantID:       r.TenantID,
		Item:           r.Item,
		Service:        r.Service,
		WaterLitres:    r.WaterLitres,
		ElectricityKWh: r.ElectricityKWh,
		IsHoliday:      r.IsHoliday,
		IsWeekend:      r.IsWeekend,
	}, nil
}

// Orders returns the stored orders matching f in date order.
func (s *Store) Orders(ctx context.Context, f Filter) ([]types.Order, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT source, start_date, laundry_id, tenant_id, item, service,
		water_litres, electricity_kwh, is_holiday, is_weekend FROM orders WHERE 1=1`)
	if f.TenantID != "" {
		qb.WriteString(` AND tenant_id = ?`)
		args = append(args, f.TenantID)
	}
	if f.LaundryID != "" {
		qb.WriteString(` AND laundry_id = ?`)
		args = append(args, f.LaundryID)
	}
	qb.WriteString(` ORDER BY start_date, id`)
	if f.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	var rows []dbOrder
	if err := s.db.SelectContext(ctx, &rows, qb.String(), args...); err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}

	orders := make([]types.Order, len(rows))
	for i, r := range rows {
		o, err := r.toOrder()
		if err != nil {
			return nil, err
		}
		orders[i] = o
	}
	return orders, nil
}

// Sample returns the first n orders by date.
func (s *Store) Sample(ctx context.Context, n int) ([]types.Order, error) {
	if n <= 0 {
		n = 5
	}
	return s.Orders(ctx, Filter{Limit: n})
}

// Count returns the number of stored orders.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM orders`); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// Stats summarises the stored orders.
type Stats struct {
	Orders    int       `json:"orders" yaml:"orders"`
	Tenants   int       `json:"tenants" yaml:"tenants"`
	Laundries int       `json:"laundries" yaml:"laundries"`
	First     time.Time `json:"first" yaml:"first"`
	Last      time.Time `json:"last" yaml:"last"`
}

// Stats returns order, tenant and laundry counts with the covered date range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var row struct {
		Orders    int     `db:"orders"`
		Tenants   int     `db:"tenants"`
		Laundries int     `db:"laundries"`
		First     *string `db:"first"`
		Last      *string `db:"last"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT count(*) AS orders,
			count(DISTINCT tenant_id) AS tenants,
			count(DISTINCT laundry_id) AS laundries,
			min(start_date) AS first,
			max(start_date) AS last
		 FROM orders`)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}

	st := Stats{Orders: row.Orders, Tenants: row.Tenants, Laundries: row.Laundries}
	if row.First != nil {
		st.First, _ = time.Parse(types.DateLayout, *row.First)
	}
	if row.Last != nil {
		st.Last, _ = time.Parse(types.DateLayout, *row.Last)
	}
	return st, nil
}
