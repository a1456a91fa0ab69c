package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"KV_BACKEND", "REMOTE_BACKEND", "BUSINESS_TIMEZONE", "SLOT_STEP_MINUTES", "REMOTE_TIMEOUT"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, 9, cfg.BusinessStartHour)
	assert.Equal(t, 18, cfg.BusinessEndHour)
	assert.Equal(t, 30, cfg.SlotStepMinutes)
	assert.Equal(t, 60, cfg.DefaultServiceMinutes)
	assert.Equal(t, KVGorm, cfg.KVBackend)
	assert.Equal(t, RemoteNone, cfg.RemoteBackend)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KV_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REMOTE_BACKEND", "http")
	t.Setenv("REMOTE_BASE_URL", "https://api.example.com")
	t.Setenv("REMOTE_TIMEOUT", "3s")
	t.Setenv("SLOT_STEP_MINUTES", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, KVRedis, cfg.KVBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 30, cfg.SlotStepMinutes, "unparseable numbers fall back")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func validConfig() Config {
	return Config{
		JWTSecret:             "secret",
		Timezone:              "UTC",
		BusinessStartHour:     9,
		BusinessEndHour:       18,
		SlotStepMinutes:       30,
		DefaultServiceMinutes: 60,
		KVBackend:             KVMemory,
		RemoteBackend:         RemoteNone,
	}
}

func TestValidate(t *testing.T) {
	base := validConfig()
	require.NoError(t, base.Validate())

	cases := map[string]func(*Config){
		"hours reversed":       func(c *Config) { c.BusinessStartHour, c.BusinessEndHour = 18, 9 },
		"hours out of range":   func(c *Config) { c.BusinessEndHour = 25 },
		"zero step":            func(c *Config) { c.SlotStepMinutes = 0 },
		"bad timezone":         func(c *Config) { c.Timezone = "Mars/Olympus" },
		"unknown kv":           func(c *Config) { c.KVBackend = "etcd" },
		"unknown remote":       func(c *Config) { c.RemoteBackend = "grpc" },
		"http without url":     func(c *Config) { c.RemoteBackend = RemoteHTTP },
		"supabase without key": func(c *Config) { c.RemoteBackend = RemoteSupabase; c.SupabaseURL = "https://x.supabase.co" },
		"no secret":            func(c *Config) { c.JWTSecret = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
