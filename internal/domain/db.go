package domain

import "context"

// Database defines lifecycle operations for a persistent storage backend.
// Each implementation owns its own migration files and strategy, so a
// backend can be swapped without touching the directory service.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
