package authgate

import (
	"errors"
	"time"
)

// DefaultAccessTTL is the access-token lifetime applied by [DefaultConfig]:
// tokens expire at a fixed offset of 12 hours from mint time.
const DefaultAccessTTL = 12 * time.Hour

// Config carries all engine tuning. Populate it explicitly (typically from
// environment parsing in the process bootstrap) and pass it to the Builder;
// components never read ambient environment state themselves.
type Config struct {
	Token       TokenConfig
	Credentials CredentialsConfig
	Session     SessionConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

// TokenConfig configures access-token signing.
type TokenConfig struct {
	// Secret is the shared HS256 signing secret. Required.
	Secret []byte

	// AccessTTL is the token lifetime. Defaults to [DefaultAccessTTL].
	AccessTTL time.Duration
}

// CredentialsConfig configures the credential collection.
type CredentialsConfig struct {
	// Collection is the key-namespace holding username → password-hash
	// records.
	Collection string
}

// SessionConfig configures the session collection.
type SessionConfig struct {
	// Collection is the key-namespace holding the per-username session
	// records.
	Collection string
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures in-process metrics collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a Config with production-reasonable defaults.
// Token.Secret has no default and must be supplied.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL: DefaultAccessTTL,
		},
		Credentials: CredentialsConfig{
			Collection: "users",
		},
		Session: SessionConfig{
			Collection: "active_sessions",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Token.Secret) == 0 {
		return errors.New("token secret is required")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Credentials.Collection == "" {
		return errors.New("credentials collection name is required")
	}
	if c.Session.Collection == "" {
		return errors.New("session collection name is required")
	}
	if c.Credentials.Collection == c.Session.Collection {
		return errors.New("credentials and session collections must differ")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.Token.Secret = cloneBytes(c.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
