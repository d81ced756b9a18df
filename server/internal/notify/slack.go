package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// Slack posts {"text": ...} to a Slack incoming webhook.
type Slack struct {
	url    string
	client *http.Client
}

// NewSlack returns a Slack sender for webhookURL. A non-positive timeout
// means DefaultChatTimeout.
func NewSlack(webhookURL string, timeout time.Duration) (*Slack, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("notify: slack webhook url is empty")
	}
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &Slack{
		url:    webhookURL,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Send posts text as a single webhook message. Any non-200 reply is an error.
func (s *Slack) Send(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.url, s.client, msg); err != nil {
		return fmt.Errorf("notify: slack webhook: %w", err)
	}
	return nil
}
