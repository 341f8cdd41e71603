package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authgate "github.com/authgate/authgate"
)

type usernameContextKey struct{}

// UsernameFromContext returns the authenticated username injected by [Guard].
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey{}).(string)
	return username, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// token. Requests carrying a token that decodes, is unexpired, and matches
// the subject's tracked session reach the wrapped handler with the username
// in the request context; everything else is answered with 401, except store
// outages which are answered with 503.
func Guard(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			username, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, authgate.ErrStoreUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameContextKey{}, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
