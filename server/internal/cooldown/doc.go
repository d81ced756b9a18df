// Package cooldown implements the fixed-window gate that limits voice calls
// to one per alert key per window.
package cooldown
