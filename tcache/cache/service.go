// Package cache implements the artifact cache access layer in front of
// the remote store. Rows are keyed by the (original_prompt, style,
// user_id) triple; the cached value is the artifact URL.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/toon-cache/tcache"
	"github.com/ZanzyTHEbar/toon-cache/tcache/db"
	"github.com/rs/zerolog"
)

// ErrMissingOwner is returned by Store when no user id is supplied.
// Anonymous writes go through StoreAnonymous explicitly.
var ErrMissingOwner = errors.New("store requires a non-empty user id")

const (
	lookupOwnedQuery = `SELECT cartoon_url FROM ` + internal.CacheTable + `
		WHERE original_prompt = ? AND style = ? AND user_id = ?
		ORDER BY created_at DESC LIMIT 1`

	lookupAnonymousQuery = `SELECT cartoon_url FROM ` + internal.CacheTable + `
		WHERE original_prompt = ? AND style = ? AND user_id IS NULL
		ORDER BY created_at DESC LIMIT 1`

	insertQuery = `INSERT INTO ` + internal.CacheTable + ` (user_id, original_prompt, style, cartoon_url, created_at)
		VALUES (?, ?, ?, ?, ?)`
)

// Service is the cache access layer. Both operations are stateless
// request/response calls; failures propagate to the caller without
// retry, backoff, or negative caching.
type Service struct {
	store    *db.Manager
	local    LocalCache
	localTTL int
	logger   zerolog.Logger
}

// NewService creates a cache access layer on top of the store handle.
func NewService(store *db.Manager, local LocalCache, localTTLSeconds int, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		local:    local,
		localTTL: localTTLSeconds,
		logger:   logger.With().Str("component", "cache").Logger(),
	}
}

// Lookup returns the cached artifact URL for the exact (prompt, style,
// userID) triple. An empty userID matches only rows without an owner.
// A miss is reported as ok == false, never as an error; errors mean the
// store itself failed and the caller decides whether to regenerate.
func (s *Service) Lookup(ctx context.Context, prompt, style, userID string) (string, bool, error) {
	key := localKey(prompt, style, userID)
	if value, ok := s.local.Get(ctx, key); ok {
		return string(value), true, nil
	}

	conn, err := s.store.Conn(ctx)
	if err != nil {
		return "", false, err
	}

	var row *sql.Row
	if userID == "" {
		row = conn.QueryRowContext(ctx, lookupAnonymousQuery, prompt, style)
	} else {
		row = conn.QueryRowContext(ctx, lookupOwnedQuery, prompt, style, userID)
	}

	var url string
	if err := row.Scan(&url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug().Str("style", style).Msg("Cache miss")
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query cartoon cache: %w", err)
	}

	if err := s.local.Set(ctx, key, []byte(url), s.localTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Local memoization failed")
	}

	s.logger.Debug().Str("style", style).Msg("Cache hit")
	return url, true, nil
}

// Store inserts a cache entry owned by userID. It never checks for an
// existing entry: concurrent stores for the same key both succeed and
// leave duplicate rows.
func (s *Service) Store(ctx context.Context, prompt, url, style, userID string) error {
	if userID == "" {
		return ErrMissingOwner
	}
	return s.insert(ctx, &userID, prompt, url, style)
}

// StoreAnonymous inserts a cache entry without an owner. Such entries
// are only found by lookups with an empty userID.
func (s *Service) StoreAnonymous(ctx context.Context, prompt, url, style string) error {
	return s.insert(ctx, nil, prompt, url, style)
}

func (s *Service) insert(ctx context.Context, owner *string, prompt, url, style string) error {
	conn, err := s.store.Conn(ctx)
	if err != nil {
		return err
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := conn.ExecContext(ctx, insertQuery, owner, prompt, style, url, createdAt); err != nil {
		return fmt.Errorf("failed to insert cartoon cache entry: %w", err)
	}

	s.logger.Debug().Str("style", style).Msg("Cache entry stored")
	return nil
}

// localKey builds the memoization key for a lookup triple. 0x1f keeps
// the parts unambiguous without hashing.
func localKey(prompt, style, userID string) string {
	return strings.Join([]string{userID, style, prompt}, "\x1f")
}
