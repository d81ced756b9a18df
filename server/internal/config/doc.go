// Package config loads the alertbridge server configuration.
//
// Non-secret settings come from an optional YAML file; secrets are always
// read from environment variables named by the file:
//   - Chat.WebhookURLEnv : Slack incoming webhook URL (default SLACK_WEBHOOK)
//   - Call.PhoneEnv      : CallMeBot phone number (default CMB_PHONE)
//   - Call.APIKeyEnv     : CallMeBot API key (default CMB_APIKEY)
//   - Cooldown.WindowEnv : optional window override in whole seconds
//     (default COOLDOWN_SECONDS)
//
// Load(path) applies defaults, the YAML file (if any) and the environment,
// then validates. A missing secret is reported as ErrMissingSecret.
// LoadDotEnv reads a .env file into the process environment first.
// Watch(ctx, path, onChange) reloads the file on change via fsnotify.
package config
