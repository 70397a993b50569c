// Package store provides the data access layer. All queries are built with
// squirrel (dollar placeholders) and executed on a shared pgxpool; reads that
// find nothing return (nil, nil) rather than an error.
package store

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// psql builds queries with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store is the central data access object shared by the HTTP layer and the CLI.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying pgxpool for callers that need raw access
// (health checks, tests).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// IsUniqueViolation reports whether err is a Postgres unique_violation.
// Unique indexes are the authoritative guard against duplicate titles, emails,
// and usernames; any pre-check in a handler is a fast-path only.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
