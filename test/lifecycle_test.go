package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authgate "github.com/authgate/authgate"
	"github.com/authgate/authgate/httpapi"
	"github.com/authgate/authgate/middleware"
)

// TestAccountLifecycle walks one account through the full journey: register,
// reject the duplicate, log in, use the token, log out, and get rejected
// afterwards.
func TestAccountLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	const user = "lifecycle@example.com"

	if err := engine.Register(ctx, user, "initial-password"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := engine.Register(ctx, user, "other-password"); !errors.Is(err, authgate.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	token, err := engine.Login(ctx, user, "initial-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	active, err := engine.IsSessionActive(ctx, user)
	if err != nil || !active {
		t.Fatalf("expected active session, got active=%v err=%v", active, err)
	}

	subject, err := engine.Authenticate(ctx, token)
	if err != nil || subject != user {
		t.Fatalf("Authenticate: subject=%q err=%v", subject, err)
	}

	if err := engine.Logout(ctx, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := engine.Authenticate(ctx, token); !errors.Is(err, authgate.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after logout, got %v", err)
	}
	active, err = engine.IsSessionActive(ctx, user)
	if err != nil || active {
		t.Fatalf("expected inactive session, got active=%v err=%v", active, err)
	}
}

// TestHTTPLifecycle drives the same journey through the HTTP surface with
// the guard protecting a downstream route.
func TestHTTPLifecycle(t *testing.T) {
	engine := newTestEngine(t)

	mux := httpapi.NewHandler(engine).Mux()
	mux.Handle("GET /whoami", middleware.Guard(engine)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, _ := middleware.UsernameFromContext(r.Context())
			_, _ = w.Write([]byte(username))
		}),
	))

	post := func(path string, body map[string]string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	creds := map[string]string{
		"username": "web@example.com",
		"password": "pw-web",
	}

	if rec := post("/register", creds); rec.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d", rec.Code)
	}
	if rec := post("/register", creds); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate register: expected 422, got %d", rec.Code)
	}

	rec := post("/token", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("token: expected 200, got %d", rec.Code)
	}
	var tokenResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("token response not JSON: %v", err)
	}
	token := tokenResp["access_token"]
	if token == "" {
		t.Fatal("expected an access token")
	}

	whoami := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		out := httptest.NewRecorder()
		mux.ServeHTTP(out, req)
		return out
	}

	if rec := whoami(); rec.Code != http.StatusOK || rec.Body.String() != "web@example.com" {
		t.Fatalf("whoami: code=%d body=%q", rec.Code, rec.Body.String())
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logoutReq.Header.Set("Token", token)
	logoutRec := httptest.NewRecorder()
	mux.ServeHTTP(logoutRec, logoutReq)
	if logoutRec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", logoutRec.Code)
	}

	if rec := whoami(); rec.Code != http.StatusUnauthorized {
		t.Fatalf("whoami after logout: expected 401, got %d", rec.Code)
	}
}

// TestConcurrentLoginsConverge hammers Login for one username and checks
// that exactly one session survives and it belongs to one of the issued
// tokens.
func TestConcurrentLoginsConverge(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	const user = "racer@example.com"

	if err := engine.Register(ctx, user, "pw-race"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	const workers = 16
	tokens := make([]string, workers)
	errs := make([]error, workers)
	done := make(chan int, workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			tokens[i], errs[i] = engine.Login(ctx, user, "pw-race")
			done <- i
		}(i)
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	for i, err := range errs {
		if err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
	}

	current, err := engine.ActiveToken(ctx, user)
	if err != nil {
		t.Fatalf("ActiveToken failed: %v", err)
	}

	issued := false
	for _, tok := range tokens {
		if tok == current {
			issued = true
			break
		}
	}
	if !issued {
		t.Fatal("surviving session token was never issued by a login")
	}

	if _, err := engine.Authenticate(ctx, current); err != nil {
		t.Fatalf("surviving token rejected: %v", err)
	}
}
