package notify

import (
	"context"
	"strings"
	"time"
)

// Default per-attempt timeouts.
const (
	DefaultChatTimeout = 10 * time.Second
	DefaultCallTimeout = 15 * time.Second
)

// CallSuffix is appended to the summary read out on a voice call.
const CallSuffix = " — Check Slack for details."

// Chat posts a message to a chat channel.
type Chat interface {
	Send(ctx context.Context, text string) error
}

// Caller places a voice call that reads text aloud.
type Caller interface {
	Call(ctx context.Context, text string) error
}

// ShortText reduces a normalized alert text to its first line followed by
// CallSuffix.
func ShortText(full string) string {
	first, _, _ := strings.Cut(full, "\n")
	return first + CallSuffix
}
