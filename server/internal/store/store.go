package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// DefaultPath is where the file backend keeps its state when no path is set.
const DefaultPath = "/tmp/last_call_map.json"

// State maps alert keys to the epoch seconds of the last granted call.
// A missing key means the alert has never triggered a call.
type State map[string]float64

// Clone returns an independent copy of s. A nil State clones to an empty one.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Store loads and saves the whole State at once.
//
// Each call is consistent on its own, but a Load followed by a Save is not
// atomic: two callers can read the same State and both write it back, the
// last write winning.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

// Open returns the Store for backend. path is the file or database location;
// it is ignored by the memory backend. Callers should close the result when
// it implements io.Closer.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		if path == "" {
			path = DefaultPath
		}
		return NewFile(path), nil
	case BackendMemory:
		return NewMemory(), nil
	case BackendBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}
