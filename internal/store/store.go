// Package store defines the persistent record store contract shared by every
// storage backend (sqlite, redis, memory).
//
// StatusCheck, WebCapture and Notebook collections are append-only logs.
// Settings is a single key/value record merged on update.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/copydock/internal/domain"
)

var (
	// ErrDuplicate is returned when appending a notebook whose id already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrUnsupportedScheme is returned for storage DSNs no backend understands.
	ErrUnsupportedScheme = errors.New("unsupported storage scheme")
	// ErrLocked is returned when another process owns the storage file.
	ErrLocked = errors.New("storage is locked by another process")
)

// Store is implemented by every backend. All methods are safe for
// concurrent use.
type Store interface {
	AddStatusCheck(ctx context.Context, rec domain.StatusCheck) error
	// StatusChecks returns every record in insertion order.
	StatusChecks(ctx context.Context) ([]domain.StatusCheck, error)

	// AddWebCapture appends a capture. A nil error means it is durable.
	AddWebCapture(ctx context.Context, rec domain.WebCapture) error
	// WebCaptures returns at most limit captures, most recent first.
	// limit <= 0 returns all of them.
	WebCaptures(ctx context.Context, limit int) ([]domain.WebCapture, error)
	CountWebCaptures(ctx context.Context) (int, error)

	// AddNotebook appends a notebook or fails with ErrDuplicate.
	AddNotebook(ctx context.Context, rec domain.Notebook) error
	// Notebooks returns every notebook in insertion order.
	Notebooks(ctx context.Context) ([]domain.Notebook, error)
	// EnsureNotebook appends rec only when no notebook exists yet.
	// The check and the append happen atomically.
	EnsureNotebook(ctx context.Context, rec domain.Notebook) (bool, error)

	// Settings returns the singleton; never nil.
	Settings(ctx context.Context) (domain.Settings, error)
	// UpdateSettings merges patch into the singleton and returns the result.
	UpdateSettings(ctx context.Context, patch map[string]string) (domain.Settings, error)

	Ping(ctx context.Context) error
	// Kind names the backend ("sqlite", "redis", "memory").
	Kind() string
	Close() error
}
