package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File keeps the state as a single JSON object on disk, for example
// {"azure::CPU High::Sev1": 1718000000.5}.
type File struct {
	path string
}

// NewFile returns a File store backed by path. The file is created on the
// first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

// Load reads the state file. A missing file is an empty state, not an error.
// Entries whose value is not a number are skipped.
func (f *File) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %q: %w", f.path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", f.path, err)
	}

	st := make(State, len(raw))
	for k, v := range raw {
		if ts, ok := v.(float64); ok {
			st[k] = ts
		}
	}
	return st, nil
}

// Save writes st to a temporary file next to the state file and renames it
// into place, so readers never observe a half-written object.
func (f *File) Save(_ context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("store: write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("store: replace %q: %w", f.path, err)
	}
	return nil
}
