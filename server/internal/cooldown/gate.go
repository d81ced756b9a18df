package cooldown

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/obsidianstack/alertbridge/server/internal/store"
)

// DefaultWindow is the minimum time between two calls for the same key.
const DefaultWindow = 600 * time.Second

// Decision is the outcome of one Allow call.
type Decision struct {
	// Granted is authoritative even when SaveErr is set.
	Granted bool

	// Last is the previous call time for the key, zero if there was none
	// or the state could not be read.
	Last time.Time

	// LoadErr is set when the state could not be read. The gate then
	// behaves as if no key had ever been notified.
	LoadErr error

	// SaveErr is set when a grant could not be persisted.
	SaveErr error
}

// Gate decides whether a suppressible notification may go out for a key.
//
// Allow does a plain load-then-save against the Store with no lock held in
// between. Concurrent requests for the same key may therefore both be
// granted; the last save wins.
type Gate struct {
	store  store.Store
	clock  clock.Clock
	window atomic.Int64
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// New creates a Gate over st. A zero window disables the cooldown so every
// check is granted; negative values are treated as zero.
func New(st store.Store, window time.Duration, opts ...Option) *Gate {
	g := &Gate{store: st, clock: clock.New()}
	for _, o := range opts {
		o(g)
	}
	g.SetWindow(window)
	return g
}

// Window returns the current cooldown window.
func (g *Gate) Window() time.Duration {
	return time.Duration(g.window.Load())
}

// SetWindow replaces the cooldown window. It is safe to call while Allow is
// running; in-flight checks may use either value.
func (g *Gate) SetWindow(d time.Duration) {
	if d < 0 {
		d = 0
	}
	g.window.Store(int64(d))
}

// Allow reports whether a call for key may go out now. On a grant the key's
// timestamp is set to now and the full state is written back.
func (g *Gate) Allow(ctx context.Context, key string) Decision {
	var d Decision

	st, err := g.store.Load(ctx)
	if err != nil {
		d.LoadErr = err
		st = store.State{}
	}

	now := g.clock.Now()
	if last, ok := st[key]; ok {
		d.Last = fromEpoch(last)
		if now.Sub(d.Last) < g.Window() {
			return d
		}
	}

	d.Granted = true
	st[key] = toEpoch(now)
	d.SaveErr = g.store.Save(ctx, st)
	return d
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(sec float64) time.Time {
	return time.Unix(0, int64(sec*float64(time.Second)))
}
