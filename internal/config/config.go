// Package config loads server configuration from the environment, an
// optional .env file and command-line flags.
package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// MinSecretLength - минимальная длина секрета подписи сессий (256 бит)
const MinSecretLength = 32

// Config содержит конфигурацию сервера
type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Upstream UpstreamConfig
	Storage  StorageConfig
	Log      LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR, default=:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	// AuthRateLimit - запросов в минуту к /auth/signup и /auth/login с одного IP
	AuthRateLimit int `env:"AUTH_RATE_LIMIT, default=10"`
	AuthRateBurst int `env:"AUTH_RATE_BURST, default=5"`
	// TrustedProxies - адреса или CIDR прокси, которым разрешено
	// передавать адрес клиента в X-Forwarded-For / X-Real-IP
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// SessionConfig - настройки session credential и cookies
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL, default=1h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=true"`
	// RevocationCapacity - 0 без ограничения: отозванный jti живет до exp
	RevocationCapacity int `env:"REVOCATION_CAPACITY, default=0"`
}

// UpstreamConfig - настройки провайдера данных об ученых
type UpstreamConfig struct {
	BaseURL string        `env:"OPENALEX_URL, default=https://api.openalex.org"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT, default=10s"`
}

// StorageConfig - настройки хранилища
type StorageConfig struct {
	DBPath string `env:"DB_PATH, default=scholarkeeper.db"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level string `env:"LOG_LEVEL, default=info"`
}

// Load reads .env (if present), the process environment and then args.
// Flags take precedence over the environment.
func Load(ctx context.Context, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	return load(ctx, args, envconfig.OsLookuper())
}

func load(ctx context.Context, args []string, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup,
	}); err != nil {
		return cfg, fmt.Errorf("failed to process environment: %w", err)
	}

	fset := flag.NewFlagSet("scholarkeeper-server", flag.ContinueOnError)
	fset.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	fset.StringVar(&cfg.Storage.DBPath, "db", cfg.Storage.DBPath, "Path to SQLite database")
	fset.StringVar(&cfg.Session.Secret, "secret", cfg.Session.Secret, "Session signing secret")
	fset.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c Config) Validate() error {
	if len(c.Session.Secret) < MinSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSecretLength)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.RevocationCapacity < 0 {
		return fmt.Errorf("REVOCATION_CAPACITY must not be negative")
	}
	if c.Server.AuthRateLimit <= 0 || c.Server.AuthRateBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes разбирает TRUSTED_PROXIES; одиночный адрес
// становится префиксом из одного адреса
func (s ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// SlogLevel переводит LOG_LEVEL в slog.Level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	return level, nil
}
