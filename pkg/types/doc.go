// Package types defines the shared alert vocabulary used across the server:
// source tags, the ordered severity scale, and the normalized alert produced
// for every inbound webhook.
package types
