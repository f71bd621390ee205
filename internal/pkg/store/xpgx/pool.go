package xpgx

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ougirez/nightlights/internal/pkg/logger"
)

const (
	connectRetries  = 5
	connectInterval = 500 * time.Millisecond
)

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Pool runs squirrel builders against a pgx connection pool.
type Pool struct {
	Querier
	close func()
}

func Wrap(q Querier) *Pool {
	return &Pool{Querier: q, close: func() {}}
}

// Connect opens the pool and waits for the database to accept connections.
func Connect(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	err = backoff.Retry(
		func() error {
			pingErr := pool.Ping(ctx)
			if pingErr != nil {
				logger.Warnf(ctx, "postgres not ready: %s", pingErr.Error())
			}
			return pingErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(connectInterval), connectRetries),
			ctx,
		),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return &Pool{Querier: pool, close: pool.Close}, nil
}

func (p *Pool) Close() {
	p.close()
}

func (p *Pool) Execx(ctx context.Context, query squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("query.ToSql: %w", err)
	}

	return p.Exec(ctx, sql, args...)
}

func (p *Pool) Queryx(ctx context.Context, query squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("query.ToSql: %w", err)
	}

	return p.Query(ctx, sql, args...)
}

// Getx scans exactly one row into T by db tags; pgx.ErrNoRows when empty.
func Getx[T any](ctx context.Context, p *Pool, query squirrel.Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
}

// Selectx scans all rows into T by db tags.
func Selectx[T any](ctx context.Context, p *Pool, query squirrel.Sqlizer) ([]*T, error) {
	rows, err := p.Queryx(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
}
