package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CallMeBot defaults.
const (
	DefaultCallAPIURL = "https://api.callmebot.com/call.php"
	DefaultCallLang   = "en-US"
)

// CallMeBotConfig holds the parameters of a CallMeBot voice call.
type CallMeBotConfig struct {
	APIURL  string
	Phone   string
	APIKey  string
	Lang    string
	Timeout time.Duration
}

// CallMeBot places calls through the CallMeBot HTTP API.
type CallMeBot struct {
	cfg    CallMeBotConfig
	client *http.Client
}

// NewCallMeBot validates cfg and fills in defaults for the API URL, language
// and timeout.
func NewCallMeBot(cfg CallMeBotConfig) (*CallMeBot, error) {
	if cfg.Phone == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("notify: callmebot requires a phone number and api key")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultCallAPIURL
	}
	if cfg.Lang == "" {
		cfg.Lang = DefaultCallLang
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}
	return &CallMeBot{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Call issues GET <api>?phone=..&text=..&lang=..&apikey=.. and treats any
// non-2xx status as a failure.
func (c *CallMeBot) Call(ctx context.Context, text string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.callURL(text), nil)
	if err != nil {
		return fmt.Errorf("notify: build call request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: callmebot get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: callmebot returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	return nil
}

func (c *CallMeBot) callURL(text string) string {
	return c.cfg.APIURL + "?" + encodeQuery(
		"phone", c.cfg.Phone,
		"text", text,
		"lang", c.cfg.Lang,
		"apikey", c.cfg.APIKey,
	)
}

// encodeQuery form-encodes key/value pairs in the given order. Spaces become
// '+', and a literal '+' is left unescaped because CallMeBot reads it as
// part of international phone numbers.
func encodeQuery(kv ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(kv[i]))
		b.WriteByte('=')
		b.WriteString(escape(kv[i+1]))
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2B", "+")
}
