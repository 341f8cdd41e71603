package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCredentialExists is returned by Insert when the username already has
	// a credential record. There is no update path.
	ErrCredentialExists = errors.New("credential already exists")

	// ErrCredentialNotFound is returned by Find for unknown usernames.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrCredentialRedisUnavailable wraps transport-level Redis failures.
	ErrCredentialRedisUnavailable = errors.New("credential redis unavailable")
)

// CredentialStore persists username → password-hash records. Records are
// created once at registration and immutable thereafter; plaintext passwords
// never reach this layer.
type CredentialStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewCredentialStore creates a credential store using prefix as the logical
// collection name.
func NewCredentialStore(client redis.UniversalClient, prefix string) *CredentialStore {
	if prefix == "" {
		prefix = "credentials"
	}
	return &CredentialStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *CredentialStore) key(username string) string {
	return s.prefix + ":" + username
}

// Insert writes a new credential record. SETNX makes the uniqueness check and
// the write a single atomic step, so concurrent registrations for one
// username cannot both succeed.
func (s *CredentialStore) Insert(ctx context.Context, username, passwordHash string) error {
	ok, err := s.redis.SetNX(ctx, s.key(username), passwordHash, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialRedisUnavailable, err)
	}
	if !ok {
		return ErrCredentialExists
	}
	return nil
}

// Find returns the stored password hash for a username.
func (s *CredentialStore) Find(ctx context.Context, username string) (string, error) {
	hash, err := s.redis.Get(ctx, s.key(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrCredentialRedisUnavailable, err)
	}
	return hash, nil
}

// Exists reports whether a credential record is present for the username.
func (s *CredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(username)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCredentialRedisUnavailable, err)
	}
	return n > 0, nil
}
