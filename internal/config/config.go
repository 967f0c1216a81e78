package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "toyrobot.yaml"

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the application configuration, as read from toyrobot.yaml.
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Store   StoreConfig   `yaml:"store"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	MCP     MCPConfig     `yaml:"mcp"`
}

type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver"` // memory, file or redis
	Path   string      `yaml:"path"`   // file driver directory
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"` // serialize sessions across replicas
}

type SessionConfig struct {
	Cookie string `yaml:"cookie"`
	// SecretKey encrypts stored sessions when set. Usually supplied through SECRET_KEY.
	SecretKey string `yaml:"secret_key"`
	// PreviousKeys still decrypt sessions written before a key rotation.
	PreviousKeys []string `yaml:"previous_keys"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type HTTPConfig struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

type MCPConfig struct {
	Transport string `yaml:"transport"` // stdio or sse
	Port      int    `yaml:"port"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Grid:    GridConfig{Width: domain.DefaultWidth, Height: domain.DefaultHeight},
		Store:   StoreConfig{Driver: StoreMemory, Path: ".toyrobot/sessions"},
		Session: SessionConfig{Cookie: "toyrobot_session"},
		Log:     LogConfig{Level: "info", Format: "text"},
		HTTP:    HTTPConfig{Port: 8080, Metrics: true},
		MCP:     MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load reads path on fs over the defaults. When path is DefaultPath and the
// file does not exist, the defaults are returned.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides values from the environment (lookup is usually os.LookupEnv).
//
//	SECRET_KEY, SECRET_KEY_PREVIOUS (comma separated)
//	TOYROBOT_STORE, TOYROBOT_STORE_PATH
//	TOYROBOT_REDIS_ADDR, TOYROBOT_REDIS_PASSWORD
//	TOYROBOT_LOG_LEVEL, TOYROBOT_PORT
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SECRET_KEY"); ok {
		c.Session.SecretKey = v
	}
	if v, ok := lookup("SECRET_KEY_PREVIOUS"); ok {
		c.Session.PreviousKeys = splitList(v)
	}
	if v, ok := lookup("TOYROBOT_STORE"); ok {
		c.Store.Driver = v
	}
	if v, ok := lookup("TOYROBOT_STORE_PATH"); ok {
		c.Store.Path = v
	}
	if v, ok := lookup("TOYROBOT_REDIS_ADDR"); ok {
		c.Store.Redis.Addr = v
		if _, set := lookup("TOYROBOT_STORE"); !set {
			c.Store.Driver = StoreRedis
		}
	}
	if v, ok := lookup("TOYROBOT_REDIS_PASSWORD"); ok {
		c.Store.Redis.Password = v
	}
	if v, ok := lookup("TOYROBOT_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("TOYROBOT_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TOYROBOT_PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	return nil
}

// Validate checks the values that cannot be fixed later by defaults.
func (c Config) Validate() error {
	var errs []error
	if _, err := domain.NewGrid(c.Grid.Width, c.Grid.Height); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		errs = append(errs, fmt.Errorf("unknown mcp transport %q", c.MCP.Transport))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http.port %d", c.HTTP.Port))
	}
	return errors.Join(errs...)
}

// GridValue returns the configured table.
func (c Config) GridValue() domain.Grid {
	return domain.Grid{Width: c.Grid.Width, Height: c.Grid.Height}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
