package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no active session exists for a token.
var ErrNotFound = errors.New("session not found")

// ErrConflict is returned when a create collides with an active session
// owned by a different user.
var ErrConflict = errors.New("session token conflict")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const luaHelpers = `
local function read_be64(s, i)
  local b1 = string.byte(s, i)
  local b2 = string.byte(s, i + 1)
  local b3 = string.byte(s, i + 2)
  local b4 = string.byte(s, i + 3)
  local b5 = string.byte(s, i + 4)
  local b6 = string.byte(s, i + 5)
  local b7 = string.byte(s, i + 6)
  local b8 = string.byte(s, i + 7)
  if not b8 then
    return nil
  end
  return ((((((b1 * 256 + b2) * 256 + b3) * 256 + b4) * 256 + b5) * 256 + b6) * 256 + b7) * 256 + b8
end

local function parse_session(data)
  local version = string.byte(data, 1)
  if version ~= 1 then
    return nil
  end
  local name_len = string.byte(data, 2)
  if not name_len or #data < 2 + name_len then
    return nil
  end
  local username = string.sub(data, 3, 2 + name_len)
  local idx = 3 + name_len
  local ip_len = string.byte(data, idx)
  if not ip_len then
    return nil
  end
  idx = idx + 1 + ip_len
  if #data < idx + 15 then
    return nil
  end
  local expires_at = read_be64(data, idx + 8)
  if not expires_at then
    return nil
  end
  return { username = username, expires_at = expires_at }
end
`

// createSessionScript inserts a session blob unless the key already holds
// an unexpired session owned by a different user. Same-owner overwrites
// are last-writer-wins: a re-login refreshes the expiry window.
const createSessionScript = luaHelpers + `
local data = redis.call("GET", KEYS[1])
if data then
  local parsed = parse_session(data)
  if parsed then
    if parsed.expires_at > tonumber(ARGV[4]) and parsed.username ~= ARGV[5] then
      return 0
    end
    if parsed.username ~= ARGV[5] then
      redis.call("SREM", ARGV[6] .. parsed.username, ARGV[2])
    end
  end
end
redis.call("SET", KEYS[1], ARGV[1], "PX", tonumber(ARGV[3]))
redis.call("SADD", KEYS[2], ARGV[2])
return 1
`

// invalidateSessionScript removes a session and its index entry. Returns 1
// only when a live (unexpired) session was removed, so callers can
// distinguish an effective logout from a no-op.
const invalidateSessionScript = luaHelpers + `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
redis.call("DEL", KEYS[1])
local parsed = parse_session(data)
if not parsed then
  return 0
end
redis.call("SREM", ARGV[2] .. parsed.username, ARGV[1])
if parsed.expires_at <= tonumber(ARGV[3]) then
  return 0
end
return 1
`

var (
	createSessionLua     = redis.NewScript(createSessionScript)
	invalidateSessionLua = redis.NewScript(invalidateSessionScript)
)

// Store is the Redis-backed session store. Reads are single point lookups
// on the token hash; writes go through Lua scripts so concurrent creates
// and invalidations for the same token cannot leave the store
// inconsistent.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix namespaces all keys.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "acct"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

// hashToken derives the Redis key material from a token. The token is the
// client's credential encoding, so it must never appear in key space.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Store) key(token string) string {
	return s.prefix + ":s:" + hashToken(token)
}

func (s *Store) userKeyPrefix() string {
	return s.prefix + ":u:"
}

func (s *Store) userKey(username string) string {
	return s.userKeyPrefix() + username
}

// Create persists a new session for token with the given owner, bound
// client IP, and TTL. It returns [ErrConflict] when the token is already
// bound to an unexpired session owned by a different user; a same-owner
// collision is overwritten (re-login).
//
//	Performance: 1 scripted round-trip (GET + SET + SADD).
func (s *Store) Create(ctx context.Context, token, username, clientIP string, ttl time.Duration) (*Session, error) {
	now := s.now()
	sess := &Session{
		Token:     token,
		Username:  username,
		ClientIP:  clientIP,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	data, err := Encode(sess)
	if err != nil {
		return nil, err
	}

	member := hashToken(token)
	res, err := createSessionLua.Run(ctx, s.redis,
		[]string{s.key(token), s.userKey(username)},
		data, member, ttl.Milliseconds(), now.Unix(), username, s.userKeyPrefix(),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res == 0 {
		return nil, ErrConflict
	}

	return sess, nil
}

// FindActive returns the session for token only if it is unexpired.
// Expired rows are treated as absent and opportunistically reaped.
//
//	Performance: 1 Redis GET on the hot path.
func (s *Store) FindActive(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.Token = token

	if sess.Expired(s.now()) {
		// Lazy reap; failure here only delays keyspace hygiene.
		_, _ = s.Invalidate(ctx, token)
		return nil, ErrNotFound
	}

	return sess, nil
}

// Invalidate removes the session for token. It is idempotent: removing an
// absent token succeeds. The returned bool reports whether a live session
// was actually removed.
func (s *Store) Invalidate(ctx context.Context, token string) (bool, error) {
	res, err := invalidateSessionLua.Run(ctx, s.redis,
		[]string{s.key(token)},
		hashToken(token), s.userKeyPrefix(), s.now().Unix(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return res == 1, nil
}

// InvalidateAllForUser removes every tracked session for username. Used
// when credentials change or the account is deleted. Returns the number
// of sessions dropped from the user's index; the count may include
// sessions whose keys had already expired in Redis.
func (s *Store) InvalidateAllForUser(ctx context.Context, username string) (int, error) {
	userKey := s.userKey(username)

	members, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sessionKeys := make([]string, 0, len(members))
	for _, member := range members {
		sessionKeys = append(sessionKeys, s.prefix+":s:"+member)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(sessionKeys) > 0 {
			pipe.Del(ctx, sessionKeys...)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return len(members), nil
}

// ActiveSessionCount returns the number of tracked sessions for username.
// Counts may briefly include sessions that expired but have not yet been
// lazily reaped.
func (s *Store) ActiveSessionCount(ctx context.Context, username string) (int, error) {
	count, err := s.redis.SCard(ctx, s.userKey(username)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}
