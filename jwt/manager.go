package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token's structure cannot be parsed.
var ErrMalformed = errors.New("malformed token")

// ErrInvalidSignature is returned when a token's signature does not verify
// against the configured secret.
var ErrInvalidSignature = errors.New("invalid token signature")

// Config defines the signing parameters for access tokens.
type Config struct {
	Secret    []byte
	AccessTTL time.Duration
}

// AccessClaims is the claim set carried by every access token: the subject
// username plus the registered exp/iat timestamps.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// Username returns the subject claim.
func (c *AccessClaims) Username() string {
	return c.Subject
}

// Expiry returns the exp claim and whether it is present.
func (c *AccessClaims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// Manager signs and verifies access tokens. Instances are configured once and
// safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a token manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured token lifetime.
func (j *Manager) AccessTTL() time.Duration {
	return j.config.AccessTTL
}

// CreateAccess mints a signed token for the subject, expiring AccessTTL from now.
func (j *Manager) CreateAccess(subject string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.config.Secret)
}

// ParseAccess verifies the token's signature and structure and returns its
// claims. Expiry is deliberately not validated here; callers check
// [AccessClaims.Expiry] against their own clock.
func (j *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return j.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// ExtractSubject reads the subject claim without verifying the signature.
// Logout uses it to locate the session record whose stored token is then
// compared byte-for-byte against the presented one; it must never gate access.
func ExtractSubject(tokenStr string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, &AccessClaims{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}
