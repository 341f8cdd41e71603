// Command authgate-server runs the authentication service over HTTP.
//
// All configuration comes from the environment:
//
//	REDIS_URI                  redis connection string (default redis://localhost:6379)
//	USER_COLLECTION            key prefix for credential records (default users)
//	ACTIVE_SESSIONS_COLLECTION key prefix for session records (default active_sessions)
//	SECRET                     HS256 signing secret (required)
//	HOST                       listen host (default 0.0.0.0)
//	PORT                       listen port (default 8080)
//
// Endpoints:
//
//	POST /register — create a credential record
//	POST /token    — verify credentials, mint an access token
//	POST /logout   — remove the session matching the presented token
//	GET  /whoami   — guarded echo of the authenticated username
//	GET  /metrics  — Prometheus text exposition
//	GET  /healthz  — store connectivity probe
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	authgate "github.com/authgate/authgate"
	"github.com/authgate/authgate/httpapi"
	"github.com/authgate/authgate/metrics/export/prometheus"
	"github.com/authgate/authgate/middleware"
)

type serverConfig struct {
	redisURI           string
	userCollection     string
	sessionsCollection string
	secret             string
	host               string
	port               string
}

func configFromEnv() (serverConfig, error) {
	cfg := serverConfig{
		redisURI:           envOr("REDIS_URI", "redis://localhost:6379"),
		userCollection:     envOr("USER_COLLECTION", "users"),
		sessionsCollection: envOr("ACTIVE_SESSIONS_COLLECTION", "active_sessions"),
		secret:             os.Getenv("SECRET"),
		host:               envOr("HOST", "0.0.0.0"),
		port:               envOr("PORT", "8080"),
	}
	if cfg.secret == "" {
		return cfg, errors.New("SECRET must be set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := configFromEnv()
	if err != nil {
		return err
	}

	opts, err := redis.ParseURL(cfg.redisURI)
	if err != nil {
		return fmt.Errorf("parse REDIS_URI: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	engineCfg := authgate.DefaultConfig()
	engineCfg.Token.Secret = []byte(cfg.secret)
	engineCfg.Credentials.Collection = cfg.userCollection
	engineCfg.Session.Collection = cfg.sessionsCollection

	engine, err := authgate.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithAuditSink(authgate.NewJSONWriterSink(os.Stdout)).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	mux := httpapi.NewHandler(engine).Mux()

	whoami := middleware.Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ := middleware.UsernameFromContext(r.Context())
		_, _ = fmt.Fprintln(w, username)
	}))
	mux.Handle("GET /whoami", whoami)

	mux.Handle("GET /metrics", prometheus.NewPrometheusExporter(engine).Handler())

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := engine.Ping(r.Context()); err != nil {
			http.Error(w, "store unreachable", http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprintln(w, "ok")
	})

	addr := cfg.host + ":" + cfg.port
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
