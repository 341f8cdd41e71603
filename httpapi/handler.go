package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	authgate "github.com/authgate/authgate"
)

// Handler serves the registration, token, and logout endpoints backed by an
// engine.
type Handler struct {
	engine *authgate.Engine
}

// NewHandler wraps engine for HTTP serving.
func NewHandler(engine *authgate.Engine) *Handler {
	return &Handler{engine: engine}
}

// Mux returns a ServeMux with all endpoints registered.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /token", h.Token)
	mux.HandleFunc("POST /logout", h.Logout)
	return mux
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a credential record.
//
//	200 "registered"
//	400 malformed body, username without "@", or empty password
//	422 username already registered
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.Contains(body.Username, "@") {
		writeError(w, http.StatusBadRequest, "username must contain '@'")
		return
	}
	if body.Password == "" {
		writeError(w, http.StatusBadRequest, "password must not be empty")
		return
	}

	err := h.engine.Register(requestContext(r), body.Username, body.Password)
	switch {
	case errors.Is(err, authgate.ErrAlreadyExists):
		writeError(w, http.StatusUnprocessableEntity, "username already registered")
	case errors.Is(err, authgate.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "username must contain '@'")
	case errors.Is(err, authgate.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "registered"})
	}
}

// Token verifies credentials and returns a fresh access token, replacing any
// previous session for the username.
//
//	200 {"access_token": "..."}
//	400 malformed body or invalid credentials
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.engine.Login(requestContext(r), body.Username, body.Password)
	switch {
	case errors.Is(err, authgate.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "invalid username or password")
	case errors.Is(err, authgate.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
	}
}

// Logout removes the session matching the presented token. Unknown or stale
// tokens still answer 200; only a missing Token header is rejected.
//
//	200 "logged out"
//	401 missing Token header
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	err := h.engine.Logout(requestContext(r), token)
	switch {
	case errors.Is(err, authgate.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

func requestContext(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	ctx := authgate.WithClientIP(r.Context(), host)
	ctx = authgate.WithUserAgent(ctx, r.UserAgent())
	return ctx
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
