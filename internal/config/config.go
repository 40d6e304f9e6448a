// Package config loads service configuration from an optional YAML file and the environment.
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
	Database struct {
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns"`
		// Migrate applies pending migrations before serving.
		Migrate bool `yaml:"migrate"`
	} `yaml:"database"`

	Server struct {
		Addr               string        `yaml:"addr"`
		RequestTimeout     time.Duration `yaml:"request_timeout"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	JWT struct {
		Key       string        `yaml:"key"`
		AccessTTL time.Duration `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Login struct {
		MaxFails int           `yaml:"max_fails"`
		Window   time.Duration `yaml:"window"`
		BlockFor time.Duration `yaml:"block_for"`
	} `yaml:"login"`

	Log struct {
		Level string `yaml:"level"`
		Dev   bool   `yaml:"dev"`
	} `yaml:"log"`
}

// Default returns the configuration used when neither file nor environment set a key.
func Default() *Config {
	var c Config
	c.Database.MaxConns = 10
	c.Server.Addr = ":3000"
	c.Server.RequestTimeout = 30 * time.Second
	c.JWT.AccessTTL = 15 * time.Minute
	c.Login.MaxFails = 5
	c.Login.Window = 15 * time.Minute
	c.Login.BlockFor = 15 * time.Minute
	c.Log.Level = "info"
	return &c
}

// Load reads defaults, then the YAML file at path (skipped when empty), then
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ---- Helpers env ----

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
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Database.URL = v
	}
	if v, ok := getEnvInt("DB_MAX_CONNS"); ok {
		c.Database.MaxConns = int32(v)
	}
	if v, ok := getEnvBool("MIGRATE"); ok {
		c.Database.Migrate = v
	}

	if v, ok := getEnvStr("HTTP_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvDur("REQUEST_TIMEOUT"); ok {
		c.Server.RequestTimeout = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	if v, ok := getEnvStr("JWT_KEY"); ok {
		c.JWT.Key = v
	}
	if v, ok := getEnvDur("ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	if v, ok := getEnvInt("LOGIN_MAX_FAILS"); ok {
		c.Login.MaxFails = v
	}
	if v, ok := getEnvDur("LOGIN_WINDOW"); ok {
		c.Login.Window = v
	}
	if v, ok := getEnvDur("LOGIN_BLOCK_FOR"); ok {
		c.Login.BlockFor = v
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvBool("LOG_DEV"); ok {
		c.Log.Dev = v
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var problems []error
	if c.Database.URL == "" {
		problems = append(problems, errors.New("DATABASE_URL is required"))
	}
	if c.Database.MaxConns <= 0 {
		problems = append(problems, errors.New("DB_MAX_CONNS must be positive"))
	}
	if c.Login.MaxFails <= 0 || c.Login.Window <= 0 || c.Login.BlockFor <= 0 {
		problems = append(problems, errors.New("LOGIN_MAX_FAILS, LOGIN_WINDOW and LOGIN_BLOCK_FOR must be positive"))
	}
	return errors.Join(problems...)
}

// ValidateServe additionally checks what the HTTP server needs.
func (c *Config) ValidateServe() error {
	var problems []error
	if c.JWT.Key == "" {
		problems = append(problems, errors.New("JWT_KEY is required"))
	}
	if c.JWT.AccessTTL <= 0 {
		problems = append(problems, errors.New("ACCESS_TTL must be positive"))
	}
	if c.Server.RequestTimeout <= 0 {
		problems = append(problems, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(problems...)
}
