package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edkuperman/pairsort/internal/config"
	apperrors "github.com/edkuperman/pairsort/internal/errors"
)

// NewPool opens a connection pool for the configured edge database and
// checks it is reachable.
func NewPool(ctx context.Context, c config.DatabaseConfig) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(c)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "open pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(apperrors.ErrCodeDatabase, err, "ping database")
	}
	return pool, nil
}

func poolConfig(c config.DatabaseConfig) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse database.url")
	}
	cfg.MaxConns = c.MaxConns
	cfg.MinConns = c.MinConns
	cfg.MaxConnLifetime = c.MaxConnLifetime
	return cfg, nil
}
