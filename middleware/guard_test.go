package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authgate "github.com/authgate/authgate"
)

func newGuardEngine(t *testing.T) *authgate.Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := authgate.DefaultConfig()
	cfg.Token.Secret = []byte("guard-test-secret")
	cfg.Audit.Enabled = false

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func guardedEcho(t *testing.T, engine *authgate.Engine) http.Handler {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := UsernameFromContext(r.Context())
		if !ok {
			t.Error("expected username in request context")
		}
		_, _ = w.Write([]byte(username))
	})
	return Guard(engine)(next)
}

func TestGuardPassesValidToken(t *testing.T) {
	engine := newGuardEngine(t)
	ctx := context.Background()

	if err := engine.Register(ctx, "alice@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, err := engine.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	guardedEcho(t, engine).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "alice@example.com" {
		t.Fatalf("expected username body, got %q", rec.Body.String())
	}
}

func TestGuardRejects(t *testing.T) {
	engine := newGuardEngine(t)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler := Guard(engine)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Error("handler must not run")
			}))
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestGuardRejectsLoggedOutToken(t *testing.T) {
	engine := newGuardEngine(t)
	ctx := context.Background()

	if err := engine.Register(ctx, "bob@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, err := engine.Login(ctx, "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := engine.Logout(ctx, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler := Guard(engine)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run")
	}))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
