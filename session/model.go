package session

// Session is the durable marker that a given access token is the currently
// authorized one for a username. At most one exists per user at any time.
type Session struct {
	Username    string
	AccessToken string

	// CreatedAt and ExpiresAt are Unix seconds. ExpiresAt mirrors the token's
	// exp claim, cached here so sweeps never need to re-decode the token.
	CreatedAt int64
	ExpiresAt int64
}
