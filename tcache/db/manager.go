package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ZanzyTHEbar/toon-cache/tcache/config"
	"github.com/rs/zerolog"
)

// Manager is the process-lifetime handle to the remote store. The
// underlying connection is opened at most once, on first use, and is
// never reinitialized; it lives until Close or process exit.
type Manager struct {
	cfg    config.StoreConfig
	logger zerolog.Logger
	mu     sync.RWMutex
	conn   *sql.DB
}

// NewManager validates the store configuration and returns a handle.
// Missing connection parameters fail here, before any network call.
func NewManager(cfg config.StoreConfig, logger zerolog.Logger) (*Manager, error) {
	if _, err := BuildDSN(cfg); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, logger: logger}, nil
}

// Conn retrieves the store connection, opening and migrating it on
// first use.
func (m *Manager) Conn(ctx context.Context) (*sql.DB, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn != nil {
		return conn, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return m.conn, nil
	}

	conn, err := Connect(m.cfg, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store connection: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}

	m.conn = conn
	return m.conn, nil
}

// Close releases the store connection, if one was ever opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}
