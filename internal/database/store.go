package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrEmptyQuery is returned when a cache operation gets a blank query.
var ErrEmptyQuery = errors.New("search query is empty")

// Store defines the persistence operations of the bot.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetCachedSearch returns the cached results for query fetched at or
	// after notBefore (unix seconds), ordered by position. A miss returns
	// an empty slice.
	GetCachedSearch(ctx context.Context, query string, notBefore int64) ([]SearchResult, error)

	// SaveSearch replaces the cached results for query.
	SaveSearch(ctx context.Context, query string, results []SearchResult) error

	// PurgeSearchCache deletes cached results fetched before the given unix
	// time and returns how many rows went away.
	PurgeSearchCache(ctx context.Context, before int64) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by db.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// NormalizeQuery is the cache key for a user supplied search query.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetCachedSearch(ctx context.Context, query string, notBefore int64) ([]SearchResult, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return nil, ErrEmptyQuery
	}

	var results []SearchResult
	err := s.db.SelectContext(ctx, &results, `
        SELECT id, query, position, video_id, title, channel, duration_sec, views, thumbnail, fetched_at
        FROM search_cache
        WHERE query = ? AND fetched_at >= ?
        ORDER BY position ASC;
    `, key, notBefore)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading search cache", "query", key, "error", err)
		return nil, fmt.Errorf("failed to read search cache: %w", err)
	}

	s.logger.DebugContext(ctx, "Search cache lookup", "query", key, "hits", len(results))
	return results, nil
}

func (s *sqlxStore) SaveSearch(ctx context.Context, query string, results []SearchResult) error {
	key := NormalizeQuery(query)
	if key == "" {
		return ErrEmptyQuery
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving search", "query", key, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_cache WHERE query = ?;`, key); err != nil {
		return fmt.Errorf("failed to clear cached search: %w", err)
	}

	for i := range results {
		r := results[i]
		r.Query = key
		r.Position = i
		_, err := tx.ExecContext(ctx, `
            INSERT INTO search_cache (query, position, video_id, title, channel, duration_sec, views, thumbnail, fetched_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
        `, r.Query, r.Position, r.VideoID, r.Title, r.Channel, r.DurationSec, r.Views, r.Thumbnail, r.FetchedAt)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error saving search result", "query", key, "position", i, "error", err)
			return fmt.Errorf("failed to save search result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search cache: %w", err)
	}

	s.logger.DebugContext(ctx, "Search cached", "query", key, "count", len(results))
	return nil
}

func (s *sqlxStore) PurgeSearchCache(ctx context.Context, before int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE fetched_at < ?;`, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error purging search cache", "error", err)
		return 0, fmt.Errorf("failed to purge search cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return n, nil
}

// RunSQLMaintenance runs VACUUM. It must execute outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Error running VACUUM", "error", err)
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully.")
	return nil
}
