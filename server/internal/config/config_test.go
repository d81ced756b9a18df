package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/obsidianstack/alertbridge/server/internal/cooldown"
	"github.com/obsidianstack/alertbridge/server/internal/notify"
	"github.com/obsidianstack/alertbridge/server/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

// setSecrets populates the default secret variables for one test.
func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv(DefaultWebhookURLEnv, "https://hooks.slack.test/T/B/X")
	t.Setenv(DefaultPhoneEnv, "+391234567")
	t.Setenv(DefaultAPIKeyEnv, "key")
	t.Setenv(DefaultWindowEnv, "")
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Cooldown.Window != DefaultCooldownWindow {
		t.Errorf("cooldown.window: got %v, want %v", cfg.Cooldown.Window, DefaultCooldownWindow)
	}
	if cfg.Chat.Timeout != 10*time.Second || cfg.Call.Timeout != 15*time.Second {
		t.Errorf("timeouts: got chat=%v call=%v, want 10s/15s", cfg.Chat.Timeout, cfg.Call.Timeout)
	}
	if cfg.State.Backend != "file" || cfg.State.Path != DefaultStatePath {
		t.Errorf("state: got %+v", cfg.State)
	}
	if cfg.Call.Lang != "en-US" {
		t.Errorf("call.lang: got %q, want en-US", cfg.Call.Lang)
	}
	if cfg.Chat.WebhookURL() != "https://hooks.slack.test/T/B/X" {
		t.Errorf("WebhookURL: got %q", cfg.Chat.WebhookURL())
	}
	if cfg.Call.Phone() != "+391234567" || cfg.Call.APIKey() != "key" {
		t.Errorf("call secrets: got phone=%q key=%q", cfg.Call.Phone(), cfg.Call.APIKey())
	}
}

func TestLoad_DefaultsMatchPackages(t *testing.T) {
	setSecrets(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chat.Timeout != notify.DefaultChatTimeout || cfg.Call.Timeout != notify.DefaultCallTimeout {
		t.Errorf("timeouts: got chat=%v call=%v", cfg.Chat.Timeout, cfg.Call.Timeout)
	}
	if cfg.Call.APIURL != notify.DefaultCallAPIURL || cfg.Call.Lang != notify.DefaultCallLang {
		t.Errorf("call endpoint: got url=%q lang=%q", cfg.Call.APIURL, cfg.Call.Lang)
	}
	if cfg.Cooldown.Window != cooldown.DefaultWindow {
		t.Errorf("cooldown.window: got %v, want %v", cfg.Cooldown.Window, cooldown.DefaultWindow)
	}
	if cfg.State.Backend != store.BackendFile || cfg.State.Path != store.DefaultPath {
		t.Errorf("state: got %+v", cfg.State)
	}
}

func TestLoad_FullFile(t *testing.T) {
	t.Setenv("MY_HOOK", "https://hooks.example/1")
	t.Setenv("MY_PHONE", "+100")
	t.Setenv("MY_KEY", "k2")
	t.Setenv("MY_WINDOW", "")
	p := writeConfig(t, `server:
  http_port: 9091
chat:
  webhook_url_env: MY_HOOK
  timeout: 3s
call:
  phone_env: MY_PHONE
  api_key_env: MY_KEY
  api_url: https://calls.example/call.php
  lang: it-IT
  timeout: 20s
cooldown:
  window: 5m
  window_env: MY_WINDOW
state:
  backend: bolt
  path: /var/lib/alertbridge/state.db
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Chat.WebhookURL() != "https://hooks.example/1" || cfg.Chat.Timeout != 3*time.Second {
		t.Errorf("chat: got url=%q timeout=%v", cfg.Chat.WebhookURL(), cfg.Chat.Timeout)
	}
	if cfg.Call.APIURL != "https://calls.example/call.php" || cfg.Call.Lang != "it-IT" {
		t.Errorf("call: got %+v", cfg.Call)
	}
	if cfg.Cooldown.Window != 5*time.Minute {
		t.Errorf("cooldown.window: got %v, want 5m", cfg.Cooldown.Window)
	}
	if cfg.State.Backend != "bolt" {
		t.Errorf("state.backend: got %q, want bolt", cfg.State.Backend)
	}
}

func TestLoad_WindowEnvOverridesFile(t *testing.T) {
	setSecrets(t)
	t.Setenv(DefaultWindowEnv, "90")
	p := writeConfig(t, "cooldown:\n  window: 5m\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cooldown.Window != 90*time.Second {
		t.Errorf("cooldown.window: got %v, want 90s", cfg.Cooldown.Window)
	}
}

func TestLoad_ZeroWindowDisablesCooldown(t *testing.T) {
	setSecrets(t)
	t.Setenv(DefaultWindowEnv, "0")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cooldown.Window != 0 {
		t.Fatalf("cooldown.window: got %v, want 0s", cfg.Cooldown.Window)
	}

	mock := clock.NewMock()
	mock.Set(time.Unix(1718000000, 0))
	gate := cooldown.New(store.NewMemory(), cfg.Cooldown.Window, cooldown.WithClock(mock))
	if w := gate.Window(); w != 0 {
		t.Fatalf("gate window: got %v, want 0s", w)
	}

	ctx := context.Background()
	if !gate.Allow(ctx, "azure::CPU High::Sev1").Granted {
		t.Fatal("first call denied")
	}
	mock.Add(time.Second)
	if !gate.Allow(ctx, "azure::CPU High::Sev1").Granted {
		t.Error("second call denied with the cooldown disabled")
	}
}

func TestLoad_ZeroWindowInFile(t *testing.T) {
	setSecrets(t)
	p := writeConfig(t, "cooldown:\n  window: 0s\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cooldown.Window != 0 {
		t.Errorf("cooldown.window: got %v, want 0s", cfg.Cooldown.Window)
	}
}

func TestLoad_NegativeWindowAccepted(t *testing.T) {
	setSecrets(t)
	t.Setenv(DefaultWindowEnv, "-5")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cooldown.Window != -5*time.Second {
		t.Errorf("cooldown.window: got %v, want -5s", cfg.Cooldown.Window)
	}
}

func TestLoad_WindowEnvInvalid(t *testing.T) {
	setSecrets(t)
	t.Setenv(DefaultWindowEnv, "ten minutes")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric window, got nil")
	}
}

func TestLoad_MissingSecrets(t *testing.T) {
	for _, env := range []string{DefaultWebhookURLEnv, DefaultPhoneEnv, DefaultAPIKeyEnv} {
		t.Run(env, func(t *testing.T) {
			setSecrets(t)
			t.Setenv(env, "")
			_, err := Load("")
			if !errors.Is(err, ErrMissingSecret) {
				t.Fatalf("Load without %s: got %v, want ErrMissingSecret", env, err)
			}
		})
	}
}

func TestLoad_BlankEnvName(t *testing.T) {
	setSecrets(t)
	p := writeConfig(t, "call:\n  phone_env: \"\"\n")
	_, err := Load(p)
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("got %v, want ErrMissingSecret", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"port":         "server:\n  http_port: 70000\n",
		"backend":      "state:\n  backend: redis\n",
		"bolt path":    "state:\n  backend: bolt\n  path: \"\"\n",
		"chat timeout": "chat:\n  timeout: 0s\n",
		"window":       "cooldown:\n  window: -1s\n",
		"yaml":         "server: [unclosed\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			setSecrets(t)
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	setSecrets(t)
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("ALERTBRIDGE_TEST_VAR=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ALERTBRIDGE_TEST_VAR", "")
	os.Unsetenv("ALERTBRIDGE_TEST_VAR")

	if err := LoadDotEnv(p); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if v := os.Getenv("ALERTBRIDGE_TEST_VAR"); v != "from-file" {
		t.Errorf("ALERTBRIDGE_TEST_VAR: got %q, want from-file", v)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want os.ErrNotExist", err)
	}
}
