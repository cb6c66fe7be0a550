package accountant

import (
	"errors"
	"time"
)

const (
	defaultSessionTTL = 24 * time.Hour
	minSessionTTL     = time.Minute
)

// Config controls session minting. Config values are read at construction
// time and treated as immutable afterwards.
type Config struct {
	// SessionTTL is the expiry window stamped on every new session.
	// Defaults to 24h. Sessions are never extended; re-login creates a new
	// window.
	SessionTTL time.Duration
}

func (c *Config) normalize() error {
	if c.SessionTTL == 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.SessionTTL < minSessionTTL {
		return errors.New("accountant: session TTL below one minute")
	}
	return nil
}
