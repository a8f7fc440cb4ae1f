package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an address is not on the watchlist.
var ErrNotFound = errors.New("watchlist entry not found")

// Store persists the watchlist in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a pgx connection pool and verifies it with a ping.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	// Modest pool, the watchlist only sees CLI and small API traffic.
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("verify database connection: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// AddEntry puts an address on the watchlist. Adding an address that is
// already watched (in any casing) updates its label and keeps the original
// casing and creation time. The resulting entry is returned either way.
func (s *Store) AddEntry(ctx context.Context, address, label string) (*WatchlistEntry, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO watchlist (address, label)
		VALUES ($1, $2)
		ON CONFLICT (lower(address)) DO UPDATE
		SET label = EXCLUDED.label, updated_at = now()
		RETURNING id, address, label, created_at, updated_at`,
		address, label,
	)

	var entry WatchlistEntry
	if err := row.Scan(&entry.ID, &entry.Address, &entry.Label, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, fmt.Errorf("add watchlist entry: %w", err)
	}
	return &entry, nil
}

// RemoveEntry takes an address off the watchlist and reports whether it was
// present. Matching ignores address casing.
func (s *Store) RemoveEntry(ctx context.Context, address string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM watchlist WHERE lower(address) = lower($1)`,
		address,
	)
	if err != nil {
		return false, fmt.Errorf("remove watchlist entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetEntry returns a single watchlist entry, or ErrNotFound when the address
// is not watched. Matching ignores address casing.
func (s *Store) GetEntry(ctx context.Context, address string) (*WatchlistEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, address, label, created_at, updated_at
		FROM watchlist
		WHERE lower(address) = lower($1)`,
		address,
	)

	var entry WatchlistEntry
	if err := row.Scan(&entry.ID, &entry.Address, &entry.Label, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get watchlist entry: %w", err)
	}
	return &entry, nil
}

// ListEntries returns the full watchlist, oldest first.
func (s *Store) ListEntries(ctx context.Context) ([]WatchlistEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, address, label, created_at, updated_at
		FROM watchlist
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]WatchlistEntry, 0)
	for rows.Next() {
		var entry WatchlistEntry
		if err := rows.Scan(&entry.ID, &entry.Address, &entry.Label, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist rows: %w", err)
	}

	return entries, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
