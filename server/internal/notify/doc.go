// Package notify delivers normalized alerts. Slack posts the full text to an
// incoming webhook; CallMeBot places a voice call that reads a one-line
// summary. Both make a single attempt bounded by a timeout and report
// failures as errors for the caller to log.
package notify
