package authgate

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authgate/authgate/internal/stores"
	"github.com/authgate/authgate/jwt"
	"github.com/authgate/authgate/password"
	"github.com/authgate/authgate/session"
)

// Builder assembles an Engine from a Config and a Redis client. Configure it
// during initialization, call Build exactly once, and discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale. The config is
// cloned, so later mutation of cfg does not affect the built engine.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing both the credential and session
// collections. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink attaches a sink for audit events. Without one, audit stays
// disabled regardless of AuditConfig.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the token-verification latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires all subsystems, and returns the
// Engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:    cfg.Token.Secret,
		AccessTTL: cfg.Token.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	var audit *auditDispatcher
	if cfg.Audit.Enabled && b.auditSink != nil {
		audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	}

	e := &Engine{
		config:          cfg,
		credentialStore: stores.NewCredentialStore(b.redis, cfg.Credentials.Collection),
		sessionStore:    session.NewStore(b.redis, cfg.Session.Collection),
		jwtManager:      jwtManager,
		passwordHash:    password.NewHasher(),
		audit:           audit,
		metrics:         NewMetrics(cfg.Metrics),
		now:             time.Now,
		ready:           true,
	}

	b.built = true
	return e, nil
}
