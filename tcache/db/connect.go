package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/toon-cache/tcache/config"
	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"
)

// Configuration errors, surfaced at construction time before any network
// call is attempted.
var (
	ErrMissingStoreURL  = errors.New("store URL is not configured")
	ErrMissingAuthToken = errors.New("remote store URL configured without an auth token")
)

// BuildDSN resolves the libsql DSN for the configured store. Remote
// endpoints carry the access key as an authToken query parameter;
// file: DSNs are passed through untouched.
func BuildDSN(cfg config.StoreConfig) (string, error) {
	if cfg.URL == "" {
		return "", ErrMissingStoreURL
	}
	if !cfg.IsRemote() {
		return cfg.URL, nil
	}
	if cfg.AuthToken == "" {
		return "", ErrMissingAuthToken
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		// Fall back to string concatenation for URLs the parser rejects
		if strings.Contains(cfg.URL, "?") {
			return cfg.URL + "&authToken=" + url.QueryEscape(cfg.AuthToken), nil
		}
		return cfg.URL + "?authToken=" + url.QueryEscape(cfg.AuthToken), nil
	}
	q := u.Query()
	q.Set("authToken", cfg.AuthToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect opens a libsql connection for the configured store and verifies
// basic connectivity.
func Connect(cfg config.StoreConfig, logger zerolog.Logger) (*sql.DB, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("url", cfg.URL).Bool("remote", cfg.IsRemote()).Msg("Connecting to libsql store")

	conn, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql connection: %w", err)
	}

	if err := verifyConnection(conn); err != nil {
		conn.Close()
		return nil, err
	}

	// Remote endpoints manage their own journaling; pragmas apply to
	// embedded databases only
	if !cfg.IsRemote() {
		if err := configurePragmaSettings(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}

	configureConnectionPooling(conn, cfg, logger)

	return conn, nil
}

// configurePragmaSettings applies PRAGMA settings to the database.
func configurePragmaSettings(conn *sql.DB) error {
	pragmaSettings := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "ON"},
	}

	for _, setting := range pragmaSettings {
		// Some PRAGMA statements return values, so they need Query
		query := fmt.Sprintf("PRAGMA %s = %s", setting.name, setting.value)
		if _, err := conn.Exec(query); err != nil {
			if strings.Contains(err.Error(), "returned rows") {
				rows, qerr := conn.Query(query)
				if qerr != nil {
					return fmt.Errorf("failed to set %s: %w", setting.name, qerr)
				}
				rows.Close()
			} else {
				return fmt.Errorf("failed to set %s: %w", setting.name, err)
			}
		}
	}

	return nil
}

// verifyConnection runs a basic connectivity check against the store.
func verifyConnection(conn *sql.DB) error {
	ctx := context.Background()

	var result int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("basic connectivity test failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("basic connectivity test failed: unexpected result %d", result)
	}
	return nil
}

// configureConnectionPooling sets up connection pooling parameters.
func configureConnectionPooling(conn *sql.DB, cfg config.StoreConfig, logger zerolog.Logger) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	conn.SetMaxOpenConns(maxOpen)

	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 25
	}
	conn.SetMaxIdleConns(maxIdle)

	idleTime := time.Duration(cfg.ConnMaxIdleSec) * time.Second
	if idleTime <= 0 {
		idleTime = 5 * time.Minute
	}
	conn.SetConnMaxIdleTime(idleTime)

	lifeTime := time.Duration(cfg.ConnMaxLifeSec) * time.Second
	if lifeTime <= 0 {
		lifeTime = time.Hour
	}
	conn.SetConnMaxLifetime(lifeTime)

	logger.Debug().
		Int("max_open", maxOpen).
		Int("max_idle", maxIdle).
		Dur("max_idle_time", idleTime).
		Dur("max_lifetime", lifeTime).
		Msg("Connection pool configured")
}
