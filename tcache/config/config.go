package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/toon-cache/tcache"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
}

// StoreConfig stores remote store connection details.
type StoreConfig struct {
	URL       string `mapstructure:"url"`        // libsql:// endpoint or file: DSN
	AuthToken string `mapstructure:"auth_token"` // access key for remote endpoints

	// Connection pool tuning
	MaxOpenConns   int `mapstructure:"max_open_conns"`
	MaxIdleConns   int `mapstructure:"max_idle_conns"`
	ConnMaxIdleSec int `mapstructure:"conn_max_idle_sec"`
	ConnMaxLifeSec int `mapstructure:"conn_max_life_sec"`
}

// IsRemote reports whether the store URL points at a hosted endpoint
// rather than an embedded database file.
func (s StoreConfig) IsRemote() bool {
	return !strings.HasPrefix(s.URL, "file:") && s.URL != ""
}

// CacheConfig stores cache access layer configurations.
type CacheConfig struct {
	// Local memoization tier in front of the remote store. Disabled by
	// default: every lookup is one round trip to the store.
	LocalEnabled    bool `mapstructure:"local_enabled"`
	LocalCapacity   int  `mapstructure:"local_capacity"`
	LocalTTLSeconds int  `mapstructure:"local_ttl_seconds"`
}

// SessionConfig selects the platform session storage adapter.
type SessionConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "file"
	Dir     string `mapstructure:"dir"`     // session file directory for the file backend
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Store defaults (embedded database; remote endpoints are opt-in)
	viper.SetDefault("store.url", internal.DefaultStoreURL)
	viper.SetDefault("store.auth_token", "")
	viper.SetDefault("store.max_open_conns", 25)
	viper.SetDefault("store.max_idle_conns", 25)
	viper.SetDefault("store.conn_max_idle_sec", 300)
	viper.SetDefault("store.conn_max_life_sec", 3600)

	// Cache defaults
	viper.SetDefault("cache.local_enabled", false)
	viper.SetDefault("cache.local_capacity", 1000)
	viper.SetDefault("cache.local_ttl_seconds", 3600)

	// Session defaults
	viper.SetDefault("session.backend", "memory")
	viper.SetDefault("session.dir", ".")

	viper.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. store.auth_token becomes STORE_AUTH_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults and environment variables
			// will be used. Not an error for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}

// Watch re-reads the config file on change and invokes fn with the
// freshly decoded configuration. Decode failures keep the previous
// configuration and are reported through fn's error argument.
func Watch(fn func(*Config, error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		var next Config
		if err := viper.Unmarshal(&next); err != nil {
			fn(nil, fmt.Errorf("reloading %s: %w", e.Name, err))
			return
		}
		AppConfig = next
		fn(&AppConfig, nil)
	})
	viper.WatchConfig()
}
