package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authgate/authgate/internal/stores"
	"github.com/authgate/authgate/jwt"
	"github.com/authgate/authgate/password"
	"github.com/authgate/authgate/session"
)

// Engine is the authentication core. It owns credential registration, login,
// token verification against the server-side session record, and logout.
// Construct it through the Builder; the zero value is not usable.
//
// All methods are safe for concurrent use. Cross-request consistency is
// anchored in Redis, not in engine memory, so multiple processes may share
// the same collections.
type Engine struct {
	config          Config
	credentialStore *stores.CredentialStore
	sessionStore    *session.Store
	jwtManager      *jwt.Manager
	passwordHash    *password.Hasher
	audit           *auditDispatcher
	metrics         *Metrics

	// now is the clock for expiry decisions. Tests swap it out.
	now func() time.Time

	ready bool
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close returns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Ping round-trips the backing store and reports its latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil || !e.ready {
		return 0, ErrEngineNotReady
	}
	d, err := e.sessionStore.Ping(ctx)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return d, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// storeUnavailable folds any backing-store failure into the single sentinel
// callers are expected to branch on, keeping the cause in the message.
func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// Register creates a credential record for username. The username must
// contain an "@"; the password is hashed with bcrypt before it is stored and
// the plaintext never leaves this call. Returns ErrAlreadyExists when the
// username is taken, even when racing registrations collide.
func (e *Engine) Register(ctx context.Context, username, password string) error {
	if e == nil || !e.ready {
		return ErrEngineNotReady
	}
	if !strings.Contains(username, "@") {
		return ErrInvalidFormat
	}

	hash, err := e.passwordHash.Hash(password)
	if err != nil {
		return err
	}

	err = e.credentialStore.Insert(ctx, username, hash)
	switch {
	case errors.Is(err, stores.ErrCredentialExists):
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, username, false, ErrAlreadyExists)
		return ErrAlreadyExists
	case err != nil:
		return storeUnavailable(err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, username, true, nil)
	return nil
}

// Login verifies the password against the stored hash and, on success, mints
// an access token and installs it as the username's single active session,
// replacing whatever session existed before.
//
// Unknown usernames and wrong passwords both return ErrInvalidCredentials so
// the response does not reveal which usernames are registered.
func (e *Engine) Login(ctx context.Context, username, plaintext string) (string, error) {
	if e == nil || !e.ready {
		return "", ErrEngineNotReady
	}

	hash, err := e.credentialStore.Find(ctx, username)
	switch {
	case errors.Is(err, stores.ErrCredentialNotFound):
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, username, false, ErrInvalidCredentials)
		return "", ErrInvalidCredentials
	case err != nil:
		return "", storeUnavailable(err)
	}

	ok, err := e.passwordHash.Verify(plaintext, hash)
	if err != nil {
		return "", fmt.Errorf("verify credential: %w", err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, username, false, ErrInvalidCredentials)
		return "", ErrInvalidCredentials
	}

	token, err := e.jwtManager.CreateAccess(username)
	if err != nil {
		return "", fmt.Errorf("mint access token: %w", err)
	}

	// The session record mirrors the expiry baked into the token, so both
	// are read back off the token rather than recomputed.
	claims, err := e.jwtManager.ParseAccess(token)
	if err != nil {
		return "", fmt.Errorf("decode minted token: %w", err)
	}
	expiry, hasExpiry := claims.Expiry()
	if !hasExpiry {
		return "", errors.New("minted token has no expiry")
	}

	sess := &session.Session{
		Username:    username,
		AccessToken: token,
		CreatedAt:   e.now().Unix(),
		ExpiresAt:   expiry.Unix(),
	}
	if err := e.sessionStore.Save(ctx, sess); err != nil {
		return "", storeUnavailable(err)
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, username, true, nil)
	return token, nil
}

// Authenticate validates a presented access token and returns its subject.
//
// The token must decode under the configured secret, must not be past its
// expiry, and must exactly match the username's currently installed session.
// A token that fails the expiry check also tears down the subject's session
// record before returning ErrTokenExpired; a decodable, unexpired token with
// no matching session returns ErrNoActiveSession, which is what a token
// superseded by a newer login sees.
func (e *Engine) Authenticate(ctx context.Context, token string) (string, error) {
	if e == nil || !e.ready {
		return "", ErrEngineNotReady
	}
	if e.metrics != nil && e.config.Metrics.EnableLatencyHistograms {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}()
	}

	claims, err := e.jwtManager.ParseAccess(token)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventTokenRejected, "", false, err)
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	subject := claims.Username()
	if subject == "" {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventTokenRejected, "", false, errors.New("missing subject"))
		return "", fmt.Errorf("%w: missing subject", ErrUnauthenticated)
	}

	expiry, hasExpiry := claims.Expiry()
	if !hasExpiry || !expiry.After(e.now()) {
		if delErr := e.sessionStore.Delete(ctx, subject); delErr != nil {
			return "", storeUnavailable(delErr)
		}
		e.metricInc(MetricTokenExpired)
		e.metricInc(MetricSessionSwept)
		e.emitAudit(ctx, auditEventTokenExpired, subject, false, ErrTokenExpired)
		return "", ErrTokenExpired
	}

	sess, err := e.sessionStore.Get(ctx, subject)
	switch {
	case errors.Is(err, redis.Nil):
		e.metricInc(MetricSessionMissing)
		e.emitAudit(ctx, auditEventSessionMissing, subject, false, ErrNoActiveSession)
		return "", ErrNoActiveSession
	case err != nil:
		return "", storeUnavailable(err)
	}

	if sess.AccessToken != token {
		// A newer login replaced this token's session.
		e.metricInc(MetricSessionMissing)
		e.emitAudit(ctx, auditEventSessionMissing, subject, false, ErrNoActiveSession)
		return "", ErrNoActiveSession
	}

	e.metricInc(MetricAuthenticateSuccess)
	e.emitAudit(ctx, auditEventTokenAccepted, subject, true, nil)
	return subject, nil
}

// IsSessionActive reports whether username currently has a live session.
// A session whose stored token no longer decodes or is past expiry is swept
// on the spot and reported inactive.
func (e *Engine) IsSessionActive(ctx context.Context, username string) (bool, error) {
	if e == nil || !e.ready {
		return false, ErrEngineNotReady
	}

	sess, err := e.sessionStore.Get(ctx, username)
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, storeUnavailable(err)
	}

	claims, err := e.jwtManager.ParseAccess(sess.AccessToken)
	if err != nil {
		return false, e.sweepSession(ctx, username)
	}
	expiry, hasExpiry := claims.Expiry()
	if !hasExpiry || !expiry.After(e.now()) {
		return false, e.sweepSession(ctx, username)
	}

	return true, nil
}

func (e *Engine) sweepSession(ctx context.Context, username string) error {
	if err := e.sessionStore.Delete(ctx, username); err != nil {
		return storeUnavailable(err)
	}
	e.metricInc(MetricSessionSwept)
	e.emitAudit(ctx, auditEventSessionSwept, username, true, nil)
	return nil
}

// ActiveToken returns the access token of username's current session, or
// ErrNoActiveSession when none is installed.
func (e *Engine) ActiveToken(ctx context.Context, username string) (string, error) {
	if e == nil || !e.ready {
		return "", ErrEngineNotReady
	}

	sess, err := e.sessionStore.Get(ctx, username)
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrNoActiveSession
	case err != nil:
		return "", storeUnavailable(err)
	}
	return sess.AccessToken, nil
}

// Logout removes the session whose stored token exactly matches the
// presented one. It is idempotent: an unparseable token, an unknown subject,
// or a token that is not the current session all succeed without effect.
// The signature is deliberately not verified here, so a client can log out
// with an already expired token.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil || !e.ready {
		return ErrEngineNotReady
	}

	subject, err := jwt.ExtractSubject(token)
	if err != nil || subject == "" {
		// Nothing stored can match a token we cannot attribute.
		return nil
	}

	deleted, err := e.sessionStore.DeleteMatching(ctx, subject, token)
	if err != nil {
		return storeUnavailable(err)
	}
	if deleted {
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, auditEventLogoutSession, subject, true, nil)
	}
	return nil
}
