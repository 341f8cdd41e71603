package authgate

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Token.AccessTTL != 12*time.Hour {
		t.Fatalf("expected 12h access TTL, got %v", cfg.Token.AccessTTL)
	}
	if cfg.Credentials.Collection != "users" {
		t.Fatalf("unexpected credentials collection %q", cfg.Credentials.Collection)
	}
	if cfg.Session.Collection != "active_sessions" {
		t.Fatalf("unexpected session collection %q", cfg.Session.Collection)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Token.Secret = []byte("secret")
		return cfg
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Token.Secret = nil }},
		{"zero ttl", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"negative ttl", func(c *Config) { c.Token.AccessTTL = -time.Hour }},
		{"empty credentials collection", func(c *Config) { c.Credentials.Collection = "" }},
		{"empty session collection", func(c *Config) { c.Session.Collection = "" }},
		{"colliding collections", func(c *Config) {
			c.Credentials.Collection = "shared"
			c.Session.Collection = "shared"
		}},
		{"negative audit buffer", func(c *Config) { c.Audit.BufferSize = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCloneConfigDetachesSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("secret")

	clone := cloneConfig(cfg)
	cfg.Token.Secret[0] = 'X'

	if clone.Token.Secret[0] == 'X' {
		t.Fatal("expected cloned secret to be independent")
	}
}
