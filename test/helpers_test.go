package test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authgate "github.com/authgate/authgate"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestEngine(t *testing.T) *authgate.Engine {
	t.Helper()

	_, rdb := newTestRedis(t)

	cfg := authgate.DefaultConfig()
	cfg.Token.Secret = []byte("public-api-test-secret")
	cfg.Audit.Enabled = false

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}
