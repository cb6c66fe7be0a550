package accountant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/theaccountant/accountant/session"
)

type fakeUsers struct {
	users map[string]UserRecord
	err   error
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (UserRecord, error) {
	if f.err != nil {
		return UserRecord{}, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

// fakeVerifier treats the stored hash as "hash:" + password.
type fakeVerifier struct{}

func (fakeVerifier) Verify(password, hash string) (bool, error) {
	return hash == "hash:"+password, nil
}

// memorySessionStore mirrors the Redis store's contract in memory, with
// a controllable clock for expiry tests.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	now      func() time.Time
	err      error
}

func newMemorySessionStore(now func() time.Time) *memorySessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*session.Session),
		now:      now,
	}
}

func (m *memorySessionStore) Create(_ context.Context, token, username, clientIP string, ttl time.Duration) (*session.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, ok := m.sessions[token]; ok {
		if !existing.Expired(now) && existing.Username != username {
			return nil, session.ErrConflict
		}
	}
	sess := &session.Session{
		Token:     token,
		Username:  username,
		ClientIP:  clientIP,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	m.sessions[token] = sess
	return sess, nil
}

func (m *memorySessionStore) FindActive(_ context.Context, token string) (*session.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	if sess.Expired(m.now()) {
		delete(m.sessions, token)
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (m *memorySessionStore) Invalidate(_ context.Context, token string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return false, nil
	}
	delete(m.sessions, token)
	return !sess.Expired(m.now()), nil
}

func (m *memorySessionStore) InvalidateAllForUser(_ context.Context, username string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for token, sess := range m.sessions {
		if sess.Username == username {
			delete(m.sessions, token)
			dropped++
		}
	}
	return dropped, nil
}

type serviceFixture struct {
	svc   *Service
	store *memorySessionStore
	now   *time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	store := newMemorySessionStore(clock)

	users := &fakeUsers{users: map[string]UserRecord{
		"alice":   {Username: "alice", PasswordHash: "hash:secret", Activated: true},
		"dormant": {Username: "dormant", PasswordHash: "hash:secret", Activated: false},
		"mallory": {Username: "mallory", PasswordHash: "hash:hunter2", Activated: true},
	}}

	svc, err := New(Config{SessionTTL: time.Hour}, Deps{
		Users:     users,
		Passwords: fakeVerifier{},
		Sessions:  store,
		Metrics:   NewMetrics(true),
		Now:       clock,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &serviceFixture{svc: svc, store: store, now: &now}
}

func authHeader(username, password string) string {
	return session.EncodeCredentials(username, password)
}

func TestLoginSuccess(t *testing.T) {
	f := newServiceFixture(t)

	sess, err := f.svc.Login(context.Background(), authHeader("alice", "secret"), "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if sess.Username != "alice" {
		t.Fatalf("username = %q", sess.Username)
	}
	if sess.ClientIP != "10.0.0.1" {
		t.Fatalf("client IP = %q", sess.ClientIP)
	}
	if sess.Token != authHeader("alice", "secret") {
		t.Fatal("session token must be the exact header value")
	}
	if sess.ExpiresAt-sess.CreatedAt != 3600 {
		t.Fatalf("expiry window = %d", sess.ExpiresAt-sess.CreatedAt)
	}
}

func TestLoginErrors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"garbage header", "!!not-base64!!", ErrInvalidCredentials},
		{"unknown user", authHeader("nobody", "secret"), ErrUserNotFound},
		{"wrong password", authHeader("alice", "wrong"), ErrInvalidCredentials},
		{"not activated", authHeader("dormant", "secret"), ErrAccountNotActivated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tc.header, "10.0.0.1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoginProviderFailure(t *testing.T) {
	now := time.Unix(1700000000, 0)
	svc, err := New(Config{}, Deps{
		Users:     &fakeUsers{err: errors.New("db down")},
		Passwords: fakeVerifier{},
		Sessions:  newMemorySessionStore(func() time.Time { return now }),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = svc.Login(context.Background(), authHeader("alice", "secret"), "10.0.0.1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestIsValidBindsClientIP(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	token := authHeader("alice", "secret")

	if _, err := f.svc.Login(ctx, token, "10.0.0.1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if !f.svc.IsValid(ctx, token, "10.0.0.1") {
		t.Fatal("session must validate from the login IP")
	}
	// A stolen token replayed from another address is rejected.
	if f.svc.IsValid(ctx, token, "10.0.0.2") {
		t.Fatal("session must not validate from a different IP")
	}
}

func TestIsValidAfterExpiry(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	token := authHeader("alice", "secret")

	if _, err := f.svc.Login(ctx, token, "10.0.0.1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	*f.now = f.now.Add(time.Hour)
	if f.svc.IsValid(ctx, token, "10.0.0.1") {
		t.Fatal("expired session must not validate")
	}
}

func TestLogout(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	token := authHeader("alice", "secret")

	if _, err := f.svc.Login(ctx, token, "10.0.0.1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := f.svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if f.svc.IsValid(ctx, token, "10.0.0.1") {
		t.Fatal("token must be dead after logout")
	}

	// Double logout surfaces the missing session.
	err := f.svc.Logout(ctx, token)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLogoutUnknownToken(t *testing.T) {
	f := newServiceFixture(t)

	err := f.svc.Logout(context.Background(), "never-seen")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionConflictAcrossUsers(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// Force a token collision by seeding the store directly; distinct
	// credentials cannot encode to the same header value.
	token := authHeader("alice", "secret")
	if _, err := f.store.Create(ctx, token, "mallory", "10.0.0.9", time.Hour); err != nil {
		t.Fatalf("seed Create failed: %v", err)
	}

	_, err := f.svc.Login(ctx, token, "10.0.0.1")
	if !errors.Is(err, ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
}

func TestReloginRefreshesSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	token := authHeader("alice", "secret")

	first, err := f.svc.Login(ctx, token, "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	*f.now = f.now.Add(30 * time.Minute)
	second, err := f.svc.Login(ctx, token, "10.0.0.1")
	if err != nil {
		t.Fatalf("re-login failed: %v", err)
	}
	if second.ExpiresAt <= first.ExpiresAt {
		t.Fatal("re-login must refresh the expiry window")
	}
}

func TestInvalidateAllForUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	token := authHeader("alice", "secret")

	if _, err := f.svc.Login(ctx, token, "10.0.0.1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := f.svc.InvalidateAllForUser(ctx, "alice"); err != nil {
		t.Fatalf("InvalidateAllForUser failed: %v", err)
	}
	if f.svc.IsValid(ctx, token, "10.0.0.1") {
		t.Fatal("sessions must be dead after mass invalidation")
	}
}

func TestLoginMetrics(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, authHeader("alice", "secret"), "10.0.0.1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_, _ = f.svc.Login(ctx, authHeader("alice", "wrong"), "10.0.0.1")

	m := f.svc.metrics
	if got := m.Get(MetricLoginSuccess); got != 1 {
		t.Fatalf("login success count = %d", got)
	}
	if got := m.Get(MetricLoginFailure); got != 1 {
		t.Fatalf("login failure count = %d", got)
	}
	if got := m.Get(MetricSessionCreated); got != 1 {
		t.Fatalf("session created count = %d", got)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{}, Deps{})
	if !errors.Is(err, ErrServiceNotReady) {
		t.Fatalf("expected ErrServiceNotReady, got %v", err)
	}
}
