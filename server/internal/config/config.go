package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/obsidianstack/alertbridge/server/internal/cooldown"
	"github.com/obsidianstack/alertbridge/server/internal/notify"
	"github.com/obsidianstack/alertbridge/server/internal/store"
)

// ErrMissingSecret is returned by Load when a required environment variable
// is unset or empty.
var ErrMissingSecret = errors.New("required secret not set")

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultWebhookURLEnv  = "SLACK_WEBHOOK"
	DefaultPhoneEnv       = "CMB_PHONE"
	DefaultAPIKeyEnv      = "CMB_APIKEY"
	DefaultWindowEnv      = "COOLDOWN_SECONDS"
	DefaultChatTimeout    = notify.DefaultChatTimeout
	DefaultCallTimeout    = notify.DefaultCallTimeout
	DefaultCooldownWindow = cooldown.DefaultWindow
	DefaultCallAPIURL     = notify.DefaultCallAPIURL
	DefaultCallLang       = notify.DefaultCallLang
	DefaultStateBackend   = store.BackendFile
	DefaultStatePath      = store.DefaultPath
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Chat     ChatConfig     `yaml:"chat"`
	Call     CallConfig     `yaml:"call"`
	Cooldown CooldownConfig `yaml:"cooldown"`
	State    StateConfig    `yaml:"state"`
}

// ServerConfig holds the inbound HTTP listener settings.
type ServerConfig struct {
	// HTTPPort is the port the webhook endpoint listens on (default 8080).
	HTTPPort int `yaml:"http_port"`
}

// ChatConfig configures the Slack incoming webhook.
type ChatConfig struct {
	// WebhookURLEnv is the name of the environment variable holding the URL.
	WebhookURLEnv string `yaml:"webhook_url_env"`

	Timeout time.Duration `yaml:"timeout"`
}

// WebhookURL returns the webhook URL resolved from the environment.
func (c ChatConfig) WebhookURL() string {
	return lookup(c.WebhookURLEnv)
}

// CallConfig configures the CallMeBot voice call API.
type CallConfig struct {
	PhoneEnv  string `yaml:"phone_env"`
	APIKeyEnv string `yaml:"api_key_env"`

	// APIURL is the call endpoint; query parameters are appended to it.
	APIURL string `yaml:"api_url"`

	// Lang is the text-to-speech language tag.
	Lang string `yaml:"lang"`

	Timeout time.Duration `yaml:"timeout"`
}

// Phone returns the destination phone number resolved from the environment.
func (c CallConfig) Phone() string {
	return lookup(c.PhoneEnv)
}

// APIKey returns the CallMeBot API key resolved from the environment.
func (c CallConfig) APIKey() string {
	return lookup(c.APIKeyEnv)
}

// CooldownConfig controls how often a voice call may repeat per alert key.
type CooldownConfig struct {
	// Window is the minimum time between calls for the same key. Zero
	// disables the cooldown.
	Window time.Duration `yaml:"window"`

	// WindowEnv names an environment variable holding a whole number of
	// seconds that overrides Window when set.
	WindowEnv string `yaml:"window_env"`
}

// StateConfig selects where cooldown timestamps are kept.
type StateConfig struct {
	// Backend is one of: file | memory | bolt.
	Backend string `yaml:"backend"`

	// Path is the JSON file (file backend) or database file (bolt backend).
	Path string `yaml:"path"`
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables already set are left untouched.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %q: %w", path, err)
	}
	return nil
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{HTTPPort: DefaultHTTPPort},
		Chat: ChatConfig{
			WebhookURLEnv: DefaultWebhookURLEnv,
			Timeout:       DefaultChatTimeout,
		},
		Call: CallConfig{
			PhoneEnv:  DefaultPhoneEnv,
			APIKeyEnv: DefaultAPIKeyEnv,
			APIURL:    DefaultCallAPIURL,
			Lang:      DefaultCallLang,
			Timeout:   DefaultCallTimeout,
		},
		Cooldown: CooldownConfig{
			Window:    DefaultCooldownWindow,
			WindowEnv: DefaultWindowEnv,
		},
		State: StateConfig{
			Backend: DefaultStateBackend,
			Path:    DefaultStatePath,
		},
	}
}

// applyEnv overrides file settings with environment values.
func applyEnv(cfg *Config) error {
	raw := lookup(cfg.Cooldown.WindowEnv)
	if raw == "" {
		return nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s=%q is not a whole number of seconds", cfg.Cooldown.WindowEnv, raw)
	}
	cfg.Cooldown.Window = time.Duration(secs) * time.Second
	return nil
}

// validate checks required secrets and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	required := []struct{ field, env, value string }{
		{"chat.webhook_url_env", cfg.Chat.WebhookURLEnv, cfg.Chat.WebhookURL()},
		{"call.phone_env", cfg.Call.PhoneEnv, cfg.Call.Phone()},
		{"call.api_key_env", cfg.Call.APIKeyEnv, cfg.Call.APIKey()},
	}
	for _, r := range required {
		if r.env == "" {
			return fmt.Errorf("%s must name an environment variable: %w", r.field, ErrMissingSecret)
		}
		if r.value == "" {
			return fmt.Errorf("%s is empty: %w", r.env, ErrMissingSecret)
		}
	}
	if cfg.Chat.Timeout <= 0 {
		return fmt.Errorf("chat.timeout must be positive")
	}
	if cfg.Call.Timeout <= 0 {
		return fmt.Errorf("call.timeout must be positive")
	}
	switch cfg.State.Backend {
	case store.BackendFile, store.BackendMemory:
	case store.BackendBolt:
		if cfg.State.Path == "" {
			return fmt.Errorf("state.path is required for the bolt backend")
		}
	default:
		return fmt.Errorf("state.backend %q unknown: want file|memory|bolt", cfg.State.Backend)
	}
	return nil
}

func lookup(env string) string {
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}
