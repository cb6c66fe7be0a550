package accountant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theaccountant/accountant/session"
)

// UserRecord is the account view the session service needs: identity,
// credential hash, and the activation flag. Providers own everything else
// about the account.
type UserRecord struct {
	Username     string
	PasswordHash string
	Activated    bool
}

// UserProvider is the collaborator interface for account lookup. Return
// [ErrUserNotFound] (possibly wrapped) when no account exists for the
// username; any other error is treated as a provider failure.
type UserProvider interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
}

// PasswordVerifier checks a plaintext password against a stored hash. The
// hash format is opaque to this package.
type PasswordVerifier interface {
	Verify(password, hash string) (bool, error)
}

// SessionStore is the persistence contract consumed by [Service]. It is
// implemented by [session.Store].
type SessionStore interface {
	Create(ctx context.Context, token, username, clientIP string, ttl time.Duration) (*session.Session, error)
	FindActive(ctx context.Context, token string) (*session.Session, error)
	Invalidate(ctx context.Context, token string) (bool, error)
	InvalidateAllForUser(ctx context.Context, username string) (int, error)
}

// Deps carries the collaborators a [Service] is built from. Users,
// Passwords, and Sessions are required; Logger, Metrics, and Now default
// when nil.
type Deps struct {
	Users     UserProvider
	Passwords PasswordVerifier
	Sessions  SessionStore

	Logger  *slog.Logger
	Metrics *Metrics
	Now     func() time.Time
}

// Service orchestrates login, logout, and per-request session validation.
// All methods are safe for concurrent use.
type Service struct {
	cfg       Config
	users     UserProvider
	passwords PasswordVerifier
	sessions  SessionStore
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

// New validates cfg and constructs a [Service].
func New(cfg Config, deps Deps) (*Service, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if deps.Users == nil || deps.Passwords == nil || deps.Sessions == nil {
		return nil, ErrServiceNotReady
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		users:     deps.Users,
		passwords: deps.Passwords,
		sessions:  deps.Sessions,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		now:       deps.Now,
	}, nil
}

// Login authenticates the credential header and mints a session bound to
// clientIP. The session token is the exact header string supplied, so the
// client authorizes subsequent requests by resending it verbatim.
//
// Errors: [ErrInvalidCredentials] for an undecodable header or password
// mismatch, [ErrUserNotFound] for an unknown account,
// [ErrAccountNotActivated] for an inactive one, [ErrSessionConflict] when
// the token collides with another user's active session.
func (s *Service) Login(ctx context.Context, authorization, clientIP string) (*session.Session, error) {
	creds, ok := session.DecodeCredentials(authorization)
	if !ok {
		s.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	match, err := s.passwords.Verify(creds.Password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.Inc(MetricLoginFailure)
		s.logger.Debug("login rejected", "username", creds.Username, "reason", "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	if !user.Activated {
		s.metrics.Inc(MetricLoginFailure)
		s.logger.Debug("login rejected", "username", creds.Username, "reason", "not_activated")
		return nil, ErrAccountNotActivated
	}

	sess, err := s.sessions.Create(ctx, authorization, user.Username, clientIP, s.cfg.SessionTTL)
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		if errors.Is(err, session.ErrConflict) {
			return nil, ErrSessionConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.metrics.Inc(MetricSessionCreated)
	s.logger.Info("session created", "username", user.Username, "client_ip", clientIP,
		"expires_at", time.Unix(sess.ExpiresAt, 0))
	return sess, nil
}

// Logout invalidates the session for token. Unlike the store's idempotent
// removal, Logout reports [ErrSessionNotFound] when the token had no live
// session, so callers can distinguish "nothing to log out".
func (s *Service) Logout(ctx context.Context, token string) error {
	removed, err := s.sessions.Invalidate(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !removed {
		return ErrSessionNotFound
	}

	s.metrics.Inc(MetricSessionInvalidated)
	return nil
}

// InvalidateAllForUser drops every session owned by username. Called when
// the account is deleted or its credentials change.
func (s *Service) InvalidateAllForUser(ctx context.Context, username string) error {
	dropped, err := s.sessions.InvalidateAllForUser(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if dropped > 0 {
		s.metrics.Inc(MetricSessionInvalidated)
		s.logger.Info("sessions invalidated", "username", username, "count", dropped)
	}
	return nil
}

// IsValid reports whether token identifies an active session bound to
// exactly clientIP. It is the hot path: one store point lookup, no side
// effects beyond the store's lazy expiry reap.
func (s *Service) IsValid(ctx context.Context, token, clientIP string) bool {
	sess, err := s.sessions.FindActive(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Error("session lookup failed", "error", err)
		}
		return false
	}

	return sess.ClientIP == clientIP
}

// ExtractCredentials decodes the credential header, delegating to the
// session codec. Used by the gate for the best-effort display username.
func (s *Service) ExtractCredentials(header string) (session.Credentials, bool) {
	return session.DecodeCredentials(header)
}
