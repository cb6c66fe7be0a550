package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, *time.Time) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Unix(1700000000, 0)
	st := NewStore(client, "t")
	st.now = func() time.Time { return now }
	return st, mr, &now
}

func TestStoreCreateAndFindActive(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	token := EncodeCredentials("alice", "secret")
	created, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ExpiresAt-created.CreatedAt != 3600 {
		t.Fatalf("expiry window = %d", created.ExpiresAt-created.CreatedAt)
	}

	found, err := st.FindActive(ctx, token)
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if found.Username != "alice" || found.ClientIP != "10.0.0.1" {
		t.Fatalf("got %+v", found)
	}
	if found.Token != token {
		t.Fatal("Token not restored on lookup")
	}
}

func TestStoreFindActiveUnknownToken(t *testing.T) {
	st, _, _ := newTestStore(t)

	_, err := st.FindActive(context.Background(), "no-such-token")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreCreateConflictAcrossUsers(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	// Two users whose credentials encode to the same header value cannot
	// happen with distinct usernames, but the store guards the key space
	// regardless of how the token was derived.
	token := "shared-token"
	if _, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := st.Create(ctx, token, "bob", "10.0.0.2", time.Hour)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The original owner's session is untouched.
	found, err := st.FindActive(ctx, token)
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if found.Username != "alice" {
		t.Fatalf("owner = %q", found.Username)
	}
}

func TestStoreCreateSameUserOverwrites(t *testing.T) {
	st, _, now := newTestStore(t)
	ctx := context.Background()

	token := EncodeCredentials("alice", "secret")
	first, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	*now = now.Add(10 * time.Minute)
	second, err := st.Create(ctx, token, "alice", "10.0.0.9", time.Hour)
	if err != nil {
		t.Fatalf("re-login Create failed: %v", err)
	}
	if second.ExpiresAt <= first.ExpiresAt {
		t.Fatal("re-login must refresh the expiry window")
	}

	found, err := st.FindActive(ctx, token)
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if found.ClientIP != "10.0.0.9" {
		t.Fatalf("ClientIP = %q, want the re-login binding", found.ClientIP)
	}
}

func TestStoreCreateReplacesExpiredForeignSession(t *testing.T) {
	st, _, now := newTestStore(t)
	ctx := context.Background()

	token := "recycled-token"
	if _, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	*now = now.Add(2 * time.Hour)
	if _, err := st.Create(ctx, token, "bob", "10.0.0.2", time.Hour); err != nil {
		t.Fatalf("Create over expired session failed: %v", err)
	}

	found, err := st.FindActive(ctx, token)
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if found.Username != "bob" {
		t.Fatalf("owner = %q", found.Username)
	}

	// The previous owner's index entry was dropped during takeover.
	count, err := st.ActiveSessionCount(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessionCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("stale index entries for alice: %d", count)
	}
}

func TestStoreFindActiveLazyExpiry(t *testing.T) {
	st, mr, now := newTestStore(t)
	ctx := context.Background()

	token := EncodeCredentials("alice", "secret")
	if _, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	*now = now.Add(time.Hour)
	_, err := st.FindActive(ctx, token)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound at the expiry boundary, got %v", err)
	}

	// The expired row was reaped, not just hidden.
	if mr.Exists(st.key(token)) {
		t.Fatal("expired session key still present")
	}
}

func TestStoreInvalidate(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	token := EncodeCredentials("alice", "secret")
	if _, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	removed, err := st.Invalidate(ctx, token)
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if !removed {
		t.Fatal("expected live removal")
	}

	// Second invalidate is a no-op, reported as such.
	removed, err = st.Invalidate(ctx, token)
	if err != nil {
		t.Fatalf("second Invalidate failed: %v", err)
	}
	if removed {
		t.Fatal("double logout must not report a live removal")
	}

	if _, err := st.FindActive(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after invalidate, got %v", err)
	}
}

func TestStoreInvalidateExpiredReportsNoop(t *testing.T) {
	st, _, now := newTestStore(t)
	ctx := context.Background()

	token := EncodeCredentials("alice", "secret")
	if _, err := st.Create(ctx, token, "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	*now = now.Add(2 * time.Hour)
	removed, err := st.Invalidate(ctx, token)
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if removed {
		t.Fatal("invalidating an expired session is not a live removal")
	}
}

func TestStoreInvalidateAllForUser(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	tokenA := EncodeCredentials("alice", "secret")
	tokenB := EncodeCredentials("alice", "other")
	if _, err := st.Create(ctx, tokenA, "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := st.Create(ctx, tokenB, "alice", "10.0.0.2", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	other := EncodeCredentials("bob", "secret")
	if _, err := st.Create(ctx, other, "bob", "10.0.0.3", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := st.InvalidateAllForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("InvalidateAllForUser failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("dropped %d sessions, want 2", n)
	}

	for _, token := range []string{tokenA, tokenB} {
		if _, err := st.FindActive(ctx, token); !errors.Is(err, ErrNotFound) {
			t.Fatalf("session survived mass invalidation: %v", err)
		}
	}
	if _, err := st.FindActive(ctx, other); err != nil {
		t.Fatalf("unrelated user's session was removed: %v", err)
	}

	n, err = st.InvalidateAllForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("repeat InvalidateAllForUser failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("repeat run dropped %d sessions", n)
	}
}

func TestStoreActiveSessionCount(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := st.Create(ctx, "t1", "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := st.Create(ctx, "t2", "alice", "10.0.0.1", time.Hour); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := st.ActiveSessionCount(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessionCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestStoreRedisDown(t *testing.T) {
	st, mr, _ := newTestStore(t)
	mr.Close()

	_, err := st.Create(context.Background(), "t", "alice", "10.0.0.1", time.Hour)
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	_, err = st.FindActive(context.Background(), "t")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
