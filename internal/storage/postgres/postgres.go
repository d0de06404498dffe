// Package postgres provides PostgreSQL persistence for the event journal using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/survivor/internal/config"
)

// Pool wraps a pgx connection pool with health-check, transaction and
// lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a new PostgreSQL connection pool from the given configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// InTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
//
// Postcondition: Returns fn's error, or the commit error, wrapped.
func (p *Pool) InTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
