// Package storage owns the Postgres connection pool and the single query
// entry point the rest of the service goes through.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	poolMinConns = 1
	poolMaxConns = 5
)

// ErrUnavailable marks failures to obtain a connection from the pool within
// the configured timeout. Callers surface it as a service-unavailable
// condition, distinct from a rejected statement.
var ErrUnavailable = errors.New("data source unavailable")

// QueryError wraps a database-side rejection of a statement, typically an
// unknown column from a misconfigured registry entry.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return "query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Store is the bounded connection pool shared read-only across requests.
type Store struct {
	Pool    *pgxpool.Pool
	timeout time.Duration
}

// NewStore opens the pool and verifies connectivity so a dead database fails
// at boot rather than on the first request. timeout bounds both the initial
// connect and each later acquisition.
func NewStore(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MinConns = poolMinConns
	cfg.MaxConns = poolMaxConns
	cfg.ConnConfig.ConnectTimeout = timeout
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{Pool: pool, timeout: timeout}, nil
}

// Close drains and closes the pool.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
