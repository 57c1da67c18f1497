package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// App block (optional in YAML).
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// AllowedOrigins is the allow-list used both for CORS and for
		// resolving the OAuth redirect origin.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	// Identity provider (GoTrue-style REST API).
	Identity struct {
		URL        string `yaml:"url"`
		AnonKey    string `yaml:"anon_key"`
		ServiceKey string `yaml:"service_key"`
	} `yaml:"identity"`

	// AppURL is the public base URL used to build reset-password links.
	AppURL string `yaml:"app_url"`

	Storage struct {
		// URL of the object storage API. Defaults to <identity.url>/storage/v1.
		URL    string `yaml:"url"`
		Bucket string `yaml:"bucket"`
	} `yaml:"storage"`

	DB struct {
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"db"`

	Redis struct {
		Addr   string `yaml:"addr"`
		DB     int    `yaml:"db"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Reset   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"reset"`
	} `yaml:"rate"`

	Cookies struct {
		Domain string `yaml:"domain"`
	} `yaml:"cookies"`

	Onboarding struct {
		MaxAvatarBytes   int64    `yaml:"max_avatar_bytes"`
		AllowedMimeTypes []string `yaml:"allowed_mime_types"`
	} `yaml:"onboarding"`
}

// IsProd reports whether the app runs in production mode.
// Controls cookie Secure flags and the localhost CORS/redirect allowance.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// Load reads the YAML file at path (missing file is fine: defaults + env),
// applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	c.applyEnvOverrides()

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "avatars"
	}
	if c.Storage.URL == "" && c.Identity.URL != "" {
		c.Storage.URL = strings.TrimRight(c.Identity.URL, "/") + "/storage/v1"
	}
	if c.Rate.Reset.Limit == 0 {
		c.Rate.Reset.Limit = 3
	}
	if c.Rate.Reset.Window == "" {
		c.Rate.Reset.Window = "15m"
	}
	if c.DB.MaxOpenConns == 0 {
		c.DB.MaxOpenConns = 10
	}
	if c.Onboarding.MaxAvatarBytes == 0 {
		c.Onboarding.MaxAvatarBytes = 5 << 20 // 5MB
	}
	if len(c.Onboarding.AllowedMimeTypes) == 0 {
		c.Onboarding.AllowedMimeTypes = []string{
			"image/jpeg", "image/png", "image/webp", "image/gif",
		}
	}
	if c.AppURL == "" {
		c.AppURL = "http://localhost:3000"
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required collaborator configuration. A failure here is a
// ConfigurationError: fatal at startup, never retried.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Identity.URL) == "" {
		return errors.New("config: identity.url is required (IDENTITY_URL)")
	}
	if strings.TrimSpace(c.Identity.AnonKey) == "" {
		return errors.New("config: identity.anon_key is required (IDENTITY_ANON_KEY)")
	}
	if strings.TrimSpace(c.Identity.ServiceKey) == "" {
		return errors.New("config: identity.service_key is required (IDENTITY_SERVICE_KEY)")
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("config: db.dsn is required (DATABASE_URL)")
	}
	if c.IsProd() && len(c.Server.AllowedOrigins) == 0 {
		return errors.New("config: server.allowed_origins is required in prod (ALLOWED_ORIGINS)")
	}
	if c.Rate.Reset.Window != "" {
		if _, err := time.ParseDuration(c.Rate.Reset.Window); err != nil {
			return fmt.Errorf("config: rate.reset.window: %w", err)
		}
	}
	if c.DB.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.DB.ConnMaxLifetime); err != nil {
			return fmt.Errorf("config: db.conn_max_lifetime: %w", err)
		}
	}
	return nil
}

// ResetWindow returns the parsed reset-password rate window.
func (c *Config) ResetWindow() time.Duration {
	d, err := time.ParseDuration(c.Rate.Reset.Window)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

func firstEnv(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := getEnvStr(k); ok {
			return v, true
		}
	}
	return "", false
}

// applyEnvOverrides lets env vars override config.yaml. The SUPABASE_* aliases
// exist so a stock provider .env works unchanged.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + v
	}
	if v, ok := getEnvCSV("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = v
	} else if v, ok := getEnvStr("ALLOWED_ORIGIN"); ok {
		c.Server.AllowedOrigins = []string{strings.TrimSpace(v)}
	}

	if v, ok := firstEnv("IDENTITY_URL", "SUPABASE_URL"); ok {
		c.Identity.URL = v
	}
	if v, ok := firstEnv("IDENTITY_ANON_KEY", "SUPABASE_ANON_KEY"); ok {
		c.Identity.AnonKey = v
	}
	if v, ok := firstEnv("IDENTITY_SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY"); ok {
		c.Identity.ServiceKey = v
	}
	if v, ok := getEnvStr("APP_URL"); ok {
		c.AppURL = v
	}
	if v, ok := getEnvStr("STORAGE_URL"); ok {
		c.Storage.URL = v
	}
	if v, ok := getEnvStr("STORAGE_BUCKET"); ok {
		c.Storage.Bucket = v
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.DB.DSN = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
		c.Rate.Enabled = true
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("COOKIE_DOMAIN"); ok {
		c.Cookies.Domain = v
	}
}
