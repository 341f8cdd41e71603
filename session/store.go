package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures so callers can
// distinguish store outages from domain outcomes.
var ErrRedisUnavailable = errors.New("redis unavailable")

const minRecordTTL = time.Second

const (
	deleteStatusNoMatch int64 = 0
	deleteStatusDeleted int64 = 1
)

// deleteMatchingScript atomically deletes the session record only when the
// stored access token equals the presented one. Parsing mirrors the Go binary
// codec in encoder.go: version(1) userLen(1) user tokenLen(2 BE) token ...
// Corrupt blobs are deleted outright; a record we cannot attribute to a token
// must never keep a session alive.
const deleteMatchingScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end

local version = string.byte(data, 1)
if version ~= 1 then
  redis.call("DEL", KEYS[1])
  return 1
end

local user_len = string.byte(data, 2)
if not user_len or #data < 4 + user_len then
  redis.call("DEL", KEYS[1])
  return 1
end

local hi = string.byte(data, 2 + user_len + 1)
local lo = string.byte(data, 2 + user_len + 2)
local token_len = hi * 256 + lo
local token_start = 2 + user_len + 3
if #data < token_start + token_len - 1 then
  redis.call("DEL", KEYS[1])
  return 1
end

local token = string.sub(data, token_start, token_start + token_len - 1)
if token == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end

return 0
`

var deleteMatchingLua = redis.NewScript(deleteMatchingScript)

// Store persists session records in Redis, one key per username under the
// configured prefix.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix names the logical collection holding session records.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "sessions"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(username string) string {
	return s.prefix + ":" + username
}

// Save persists a session record, replacing any prior record for the same
// username. The key TTL is set to the record's remaining lifetime as a
// backstop; expiry is still enforced by sweep-on-read.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl < minRecordTTL {
		ttl = minRecordTTL
	}

	if err := s.redis.Set(ctx, s.key(sess.Username), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get retrieves the session record for a username. Absent records return
// redis.Nil. Records observed to be expired or undecodable are deleted and
// reported absent (the sweep).
func (s *Store) Get(ctx context.Context, username string) (*Session, error) {
	key := s.key(username)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, decErr := Decode(data)
	if decErr != nil {
		if err := s.Delete(ctx, username); err != nil {
			return nil, err
		}
		return nil, redis.Nil
	}

	if time.Now().Unix() >= sess.ExpiresAt {
		if err := s.Delete(ctx, username); err != nil {
			return nil, err
		}
		return nil, redis.Nil
	}

	return sess, nil
}

// Delete removes the session record for a username. Deleting an absent record
// is not an error.
func (s *Store) Delete(ctx context.Context, username string) error {
	if err := s.redis.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DeleteMatching removes the session record for username only when its stored
// access token equals token, atomically via a Lua compare-and-delete. It
// reports whether a record was removed. Zero matches is success: logout is
// idempotent.
func (s *Store) DeleteMatching(ctx context.Context, username, token string) (bool, error) {
	result, err := deleteMatchingLua.Run(ctx, s.redis, []string{s.key(username)}, token).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("%w: invalid delete script response", ErrRedisUnavailable)
	}

	switch code {
	case deleteStatusDeleted:
		return true, nil
	case deleteStatusNoMatch:
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown delete script status", ErrRedisUnavailable)
	}
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
