// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "harness.yaml"

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	ListenAddr   string `yaml:"listen_addr"` // local OAuth callback listener
	Detect       string `yaml:"detect"`      // get-auth | me | manual
}

type CallConfig struct {
	PhoneNumber  string        `yaml:"phone_number"`
	MaxWait      time.Duration `yaml:"max_wait"`       // status monitoring budget
	PostCallWait time.Duration `yaml:"post_call_wait"` // fixed wait before transcript fetch
	Watch        bool          `yaml:"watch"`          // monitor status instead of fixed wait
}

type ChatConfig struct {
	Message string `yaml:"message"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the debug scrape listener
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Google  GoogleConfig  `yaml:"google"`
	Call    CallConfig    `yaml:"call"`
	Chat    ChatConfig    `yaml:"chat"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML config at path and applies defaults. A missing
// file at the default path is fine: the harness runs from flags alone.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		// defaults only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if cfg.Google.ListenAddr == "" {
		cfg.Google.ListenAddr = "127.0.0.1:8181"
	}
	if cfg.Google.Detect == "" {
		cfg.Google.Detect = "get-auth"
	}

	if cfg.Call.PhoneNumber == "" {
		cfg.Call.PhoneNumber = "+1234567890"
	}
	if cfg.Call.MaxWait <= 0 {
		cfg.Call.MaxWait = 5 * time.Minute
	}
	if cfg.Call.PostCallWait <= 0 {
		cfg.Call.PostCallWait = 30 * time.Second
	}

	if cfg.Chat.Message == "" {
		cfg.Chat.Message = "Hi there, I need help finding a youth shelter in Sacramento."
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func validate(cfg *Config) error {
	switch cfg.Google.Detect {
	case "get-auth", "me", "manual":
	default:
		return fmt.Errorf("google.detect must be get-auth, me or manual, got %q", cfg.Google.Detect)
	}
	if !strings.HasPrefix(cfg.Server.BaseURL, "http://") && !strings.HasPrefix(cfg.Server.BaseURL, "https://") {
		return errors.New("server.base_url must be an http(s) URL")
	}
	return nil
}
