package session

import (
	"fmt"

	"github.com/ZanzyTHEbar/toon-cache/tcache/config"
)

// NewStore creates the session store selected by the config flag.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
