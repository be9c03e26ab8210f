// Package records is the client for the donor record store. The store
// exposes six independent collections (donor forms, medical histories,
// screening forms, physical examinations, blood collections, eligibility)
// that are only reachable through per-collection filtered list queries —
// no joins, no cross-collection transactions. Correlation between
// collections happens in memory in the callers.
package records

import (
	"context"
	"errors"

	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/metrics"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// Store provides access to the record collections.
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger
	met  *metrics.Metrics
}

// New creates a record store client.
func New(pool *pgxpool.Pool, log *logger.Logger, met *metrics.Metrics) *Store {
	return &Store{pool: pool, log: log, met: met}
}

// Ping reports whether the record store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// fetchErr wraps a failed collection round trip. A failed fetch is fatal
// for the current run and must never be treated as "no records".
func (s *Store) fetchErr(collection, operation string, err error) error {
	s.log.StoreError(collection, operation, err)
	return apperr.Unavailable("record store fetch failed: "+collection, err)
}

// writeErr maps write failures, surfacing unique violations as conflicts.
func (s *Store) writeErr(collection, operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Wrap(apperr.KindConflict, "duplicate value rejected by "+collection, err)
	}
	s.log.StoreError(collection, operation, err)
	return apperr.Unavailable("record store write failed: "+collection, err)
}

// errNoRowsPatched reports a patch that matched no row.
func errNoRowsPatched(collection string) error {
	return apperr.NotFound(collection + " record not found")
}

// rowSkipped records a malformed row that could not be decoded. The rest
// of the collection still resolves.
func (s *Store) rowSkipped(collection string, err error) {
	s.log.RowSkipped(collection, err)
	if s.met != nil {
		s.met.MalformedRowSkipped.Inc()
	}
}
