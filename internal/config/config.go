package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides, e.g. HELLOSESSION_SERVER_ADDR.
const EnvPrefix = "HELLOSESSION_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	DB       DBConfig       `koanf:"db"`
	Session  SessionConfig  `koanf:"session"`
	Log      LogConfig      `koanf:"log"`
	Views    ViewsConfig    `koanf:"views"`
	Security SecurityConfig `koanf:"security"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	BodyLimit       int           `koanf:"bodylimit"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`
}

type DBConfig struct {
	Driver string `koanf:"driver"` // sqlite | postgres
	DSN    string `koanf:"dsn"`
}

type SessionConfig struct {
	Cookie string        `koanf:"cookie"`
	TTL    time.Duration `koanf:"ttl"`
	Secure bool          `koanf:"secure"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json | text
	File   string `koanf:"file"`
}

// ViewsConfig points at a template directory on disk. Empty Dir means the
// templates compiled into the binary.
type ViewsConfig struct {
	Dir    string `koanf:"dir"`
	Reload bool   `koanf:"reload"`
}

type SecurityConfig struct {
	CSRF        bool          `koanf:"csrf"`
	LoginLimit  int           `koanf:"loginlimit"`
	LoginWindow time.Duration `koanf:"loginwindow"`
	BcryptCost  int           `koanf:"bcryptcost"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BodyLimit:       1 << 20, // 1 MiB
			ShutdownTimeout: 10 * time.Second,
		},
		DB:      DBConfig{Driver: "sqlite", DSN: "hellosession.db"},
		Session: SessionConfig{Cookie: "sid", TTL: 24 * time.Hour},
		Log:     LogConfig{Level: "info", Format: "json"},
		Security: SecurityConfig{
			LoginLimit:  10,
			LoginWindow: time.Minute,
			BcryptCost:  12,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads, in increasing priority: defaults, the YAML file at path (if
// any), a .env file in the working directory, then HELLOSESSION_* variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// HELLOSESSION_SECURITY_LOGINLIMIT -> security.loginlimit
	transform := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver: unsupported %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn: required")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unsupported %q", c.Log.Format)
	}
	if c.Session.Cookie == "" {
		return errors.New("session.cookie: required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl: must be positive")
	}
	if c.Security.LoginLimit < 1 {
		return errors.New("security.loginlimit: must be at least 1")
	}
	return nil
}
