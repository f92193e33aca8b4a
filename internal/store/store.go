// Package store persists the session token. The token is the only durable
// client artifact; it is stored under the key "token" in one of several
// backends selected by configuration.
package store

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/logging"
)

// TokenKey is the storage key of the bearer token in every backend.
const TokenKey = "token"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("token store closed")

// TokenStore is a single mutable cell holding the bearer token.
// Load reports ok=false when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Remove(ctx context.Context) error
	Close() error
}

// Open returns the backend selected by cfg.Session.Backend.
func Open(ctx context.Context, cfg *config.Config) (TokenStore, error) {
	backend := cfg.Session.Backend
	if backend == "" {
		backend = config.BackendFile
	}
	logging.Store("Opening %s token store", backend)

	switch backend {
	case config.BackendFile:
		return NewFileTokenStore(cfg.SessionPath()), nil
	case config.BackendSQLite:
		return NewSQLiteTokenStore(ctx, cfg.SessionPath())
	case config.BackendRedis:
		return NewRedisTokenStoreFromURL(ctx, cfg.Session.RedisURL, cfg.Session.RedisPrefix, cfg.GetSessionTTL())
	case config.BackendMemory:
		return NewMemoryTokenStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q (valid: %v)", backend, config.ValidBackends)
	}
}
