package alerts

import "github.com/obsidianstack/alertbridge/pkg/types"

// Classify returns the source that produced payload.
//
// A JSON object with a "data" object that contains an "essentials" key is
// Azure Monitor's common alert schema. Everything else, including malformed
// or unknown shapes, is treated as a GitHub Actions failure so that no
// payload is ever rejected.
func Classify(payload any) types.Source {
	root, ok := payload.(map[string]any)
	if !ok {
		return types.SourceGitHubActions
	}
	data, ok := root["data"].(map[string]any)
	if !ok {
		return types.SourceGitHubActions
	}
	if _, ok := data["essentials"]; ok {
		return types.SourceAzureMonitor
	}
	return types.SourceGitHubActions
}

// Normalize classifies payload and runs the matching builder.
func Normalize(payload any) types.Alert {
	if Classify(payload) == types.SourceAzureMonitor {
		return BuildAzureMonitor(payload)
	}
	return BuildGitHubActions(payload)
}

// object returns v as a JSON object, or an empty one.
func object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// str returns m[key] when it is a string, otherwise def.
func str(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// firstStr returns the first element of the list m[key] when it is a string,
// otherwise def.
func firstStr(m map[string]any, key, def string) string {
	list, ok := m[key].([]any)
	if !ok || len(list) == 0 {
		return def
	}
	if s, ok := list[0].(string); ok {
		return s
	}
	return def
}
