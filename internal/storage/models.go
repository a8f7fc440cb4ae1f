package storage

import "time"

// WatchlistEntry is one tracked wallet address. Address keeps the casing it
// was registered with; uniqueness is enforced case-insensitively in the
// database.
type WatchlistEntry struct {
	ID        int64
	Address   string
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
