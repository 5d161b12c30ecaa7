// Package store wraps SQLite persistence for extracted incidents.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store owns the incidents database.
type Store struct {
	db *sql.DB
}

// ErrNotFound is returned when an incident id does not exist.
var ErrNotFound = errors.New("incident not found")

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS incidents (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            type TEXT NOT NULL,
            location TEXT NOT NULL,
            lat REAL NOT NULL,
            lon REAL NOT NULL,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_created ON incidents(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Incident is a stored incident row. The store assigns identity and
// timestamp; the pipeline hands off type/location/coordinates and retains
// nothing.
type Incident struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Location  string    `json:"location"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}

// Insert persists one finished incident record and returns it with its
// assigned id.
func (s *Store) Insert(ctx context.Context, typ, location string, lat, lon float64, ts time.Time) (Incident, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO incidents(type, location, lat, lon, created_at) VALUES(?,?,?,?,?)`,
		typ, location, lat, lon, ts)
	if err != nil {
		return Incident{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Incident{}, err
	}
	return Incident{ID: id, Type: typ, Location: location, Lat: lat, Lon: lon, CreatedAt: ts}, nil
}

// Get fetches a single incident by id.
func (s *Store) Get(ctx context.Context, id int64) (Incident, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, location, lat, lon, created_at FROM incidents WHERE id=?`, id)
	var inc Incident
	switch err := row.Scan(&inc.ID, &inc.Type, &inc.Location, &inc.Lat, &inc.Lon, &inc.CreatedAt); err {
	case nil:
		return inc, nil
	case sql.ErrNoRows:
		return Incident{}, ErrNotFound
	default:
		return Incident{}, err
	}
}

// ListRecent returns up to limit incidents, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, location, lat, lon, created_at FROM incidents ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var incidents []Incident
	for rows.Next() {
		var inc Incident
		if err := rows.Scan(&inc.ID, &inc.Type, &inc.Location, &inc.Lat, &inc.Lon, &inc.CreatedAt); err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// Health returns an error if the database is not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}
