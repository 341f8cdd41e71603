package authgate

import "errors"

var (
	// ErrAlreadyExists is returned by Register when a credential record
	// already exists for the username. Existing records are never overwritten.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidFormat is returned when a username fails caller-facing format
	// validation (it must be email-shaped, containing '@').
	ErrInvalidFormat = errors.New("invalid username format")

	// ErrInvalidCredentials is returned by Login for both unknown usernames
	// and wrong passwords; the two cases are deliberately indistinguishable
	// to resist username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned by Authenticate when the presented token
	// is missing, malformed, or carries an invalid signature.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTokenExpired is returned by Authenticate when the token's signature
	// verifies but its exp claim is absent or lapsed. Observing it sweeps the
	// subject's session record.
	ErrTokenExpired = errors.New("token expired")

	// ErrNoActiveSession is returned when a cryptographically valid token has
	// no tracked live session: the user logged out, or a later login
	// superseded this token.
	ErrNoActiveSession = errors.New("no active session")

	// ErrStoreUnavailable wraps transport-level failures of the durable store.
	// Callers should treat it as retryable infrastructure trouble, not a
	// domain outcome.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrEngineNotReady is returned when an Engine method is called on an
	// engine that was not produced by [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
)
