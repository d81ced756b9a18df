// Package alerts turns raw webhook payloads into normalized alerts. Classify
// picks the source from the payload shape; one builder per source then maps
// the payload onto a fixed text layout, a severity and a cooldown key.
// Builders never fail: every missing or mistyped field falls back to a
// placeholder.
package alerts
