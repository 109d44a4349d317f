// Package session abstracts platform session storage. The web and
// native clients share one capability with two adapters: a
// process-lifetime memory store and a device file store, selected by
// configuration rather than conditional loading.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the persisted authentication state for the current client.
type Session struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewSession creates a session with a fresh identifier.
func NewSession(accessToken, refreshToken string, expiresAt time.Time) Session {
	return Session{
		ID:           uuid.NewString(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Store persists one session per execution context.
type Store interface {
	Persist(ctx context.Context, s Session) error
	Retrieve(ctx context.Context) (Session, bool, error)
	Clear(ctx context.Context) error
}
