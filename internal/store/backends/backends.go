// Package backends turns a storage DSN into a store.Store.
package backends

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/copydock/internal/logger"
	redisconn "github.com/MrSnakeDoc/copydock/internal/redis"
	"github.com/MrSnakeDoc/copydock/internal/store"
	"github.com/MrSnakeDoc/copydock/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/copydock/internal/store/redis"
	"github.com/MrSnakeDoc/copydock/internal/store/sqlite"
)

// Options carries what non-file backends need.
type Options struct {
	Logger logger.Logger
	// Redis retry policy. URL is taken from the DSN.
	Redis          redisconn.ConnectOptions
	RedisKeyPrefix string
}

// Open builds the backend named by dsn:
//
//	sqlite:///abs/path.db, sqlite://rel/path.db, file://..., or a bare path
//	redis://host:port/db, rediss://...
//	memory://
func Open(ctx context.Context, dsn string, opts Options) (store.Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("storage DSN is empty")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		// Bare filesystem path
		return openSQLite(ctx, dsn)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3", "file":
		if rest == "" {
			return nil, fmt.Errorf("sqlite DSN %q has no path", dsn)
		}
		return openSQLite(ctx, rest)
	case "redis", "rediss":
		redisOpts := opts.Redis
		redisOpts.URL = dsn
		client, err := redisconn.New(ctx, redisOpts, opts.Logger)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client, opts.RedisKeyPrefix), nil
	case "memory", "mem", "inmem":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", store.ErrUnsupportedScheme, scheme)
	}
}

// openSQLite avoids handing back a typed nil inside the interface.
func openSQLite(ctx context.Context, path string) (store.Store, error) {
	s, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
