// Package tcache holds application-wide defaults shared across the
// toon-cache packages.
package tcache

const (
	// DefaultAppName is used for config discovery and log fields.
	DefaultAppName = "toon-cache"

	// DefaultConfigPath is the fallback directory searched for config.yaml.
	DefaultConfigPath = "/etc/toon-cache"

	// DefaultStoreURL is the embedded database used when no remote store
	// is configured. Remote stores use a libsql:// URL plus an auth token.
	DefaultStoreURL = "file:toon-cache.db"

	// CacheTable is the remote table backing the artifact cache.
	CacheTable = "cartoon_cache"
)
