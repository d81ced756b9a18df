package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var lastCallBucket = []byte("last_call")

// Bolt stores one key per alert in a single bbolt bucket. Values are decimal
// epoch seconds.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the bbolt database at path.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, fmt.Errorf("store: bolt backend requires a path")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt %q: %w", path, err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Load reads every entry of the bucket. A missing bucket is an empty state.
// Values that do not parse as numbers are skipped.
func (b *Bolt) Load(_ context.Context) (State, error) {
	st := State{}
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(lastCallBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			ts, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return nil
			}
			st[string(k)] = ts
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: bolt load: %w", err)
	}
	return st, nil
}

// Save replaces the bucket contents with st in one transaction.
func (b *Bolt) Save(_ context.Context, st State) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(lastCallBucket) != nil {
			if err := tx.DeleteBucket(lastCallBucket); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(lastCallBucket)
		if err != nil {
			return err
		}
		for k, ts := range st {
			v := strconv.FormatFloat(ts, 'f', -1, 64)
			if err := bucket.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: bolt save: %w", err)
	}
	return nil
}
