package config

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", MinSecretLength)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), nil, envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET": testSecret,
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10, cfg.Server.AuthRateLimit)
	assert.Equal(t, 5, cfg.Server.AuthRateBurst)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, 0, cfg.Session.RevocationCapacity)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, "https://api.openalex.org", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "scholarkeeper.db", cfg.Storage.DBPath)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_TrustedProxies(t *testing.T) {
	cfg, err := load(context.Background(), nil, envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET":  testSecret,
		"TRUSTED_PROXIES": "10.0.0.0/8,192.168.1.10,2001:db8::/32",
	}))
	require.NoError(t, err)

	prefixes, err := cfg.Server.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/8"), prefixes[0])
	assert.Equal(t, netip.MustParsePrefix("192.168.1.10/32"), prefixes[1])
	assert.True(t, prefixes[2].Contains(netip.MustParseAddr("2001:db8::1")))

	_, err = load(context.Background(), nil, envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET":  testSecret,
		"TRUSTED_PROXIES": "not-an-ip",
	}))
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}

func TestLoad_EnvironmentAndFlags(t *testing.T) {
	cfg, err := load(context.Background(),
		[]string{"-addr", ":9090", "-log-level", "debug"},
		envconfig.MapLookuper(map[string]string{
			"SESSION_SECRET": testSecret,
			"SERVER_ADDR":    ":7070",
			"SESSION_TTL":    "30m",
			"COOKIE_SECURE":  "false",
			"DB_PATH":        "/tmp/sk.db",
		}))
	require.NoError(t, err)

	// Флаг важнее переменной окружения
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "/tmp/sk.db", cfg.Storage.DBPath)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		env  map[string]string
		name string
		args []string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "short secret", env: map[string]string{"SESSION_SECRET": "short"}},
		{name: "bad ttl", env: map[string]string{"SESSION_SECRET": testSecret, "SESSION_TTL": "soon"}},
		{name: "zero ttl", env: map[string]string{"SESSION_SECRET": testSecret, "SESSION_TTL": "0s"}},
		{name: "bad log level", env: map[string]string{"SESSION_SECRET": testSecret, "LOG_LEVEL": "loud"}},
		{name: "negative revocation capacity", env: map[string]string{"SESSION_SECRET": testSecret, "REVOCATION_CAPACITY": "-1"}},
		{name: "zero rate limit", env: map[string]string{"SESSION_SECRET": testSecret, "AUTH_RATE_LIMIT": "0"}},
		{name: "unknown flag", env: map[string]string{"SESSION_SECRET": testSecret}, args: []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), tt.args, envconfig.MapLookuper(tt.env))
			assert.Error(t, err)
		})
	}
}
