// Package ratelimit implements fixed-window request counting per identifier
// and limit class.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const defaultShards = 32

// Class names a predefined limit configuration chosen by operation kind.
type Class string

const (
	Standard Class = "standard"
	Write    Class = "write"
	Admin    Class = "admin"
)

// Config is a fixed window: at most MaxRequests per Window.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// String renders the config the way the docs and status payloads show it.
func (c Config) String() string {
	if c.Window == time.Minute {
		return fmt.Sprintf("%d requests per minute", c.MaxRequests)
	}
	return fmt.Sprintf("%d requests per %s", c.MaxRequests, c.Window)
}

// DefaultClasses returns standard 100/min, write 50/min and admin 10/min.
func DefaultClasses() map[Class]Config {
	return map[Class]Config{
		Standard: {Window: time.Minute, MaxRequests: 100},
		Write:    {Window: time.Minute, MaxRequests: 50},
		Admin:    {Window: time.Minute, MaxRequests: 10},
	}
}

// Decision is the outcome of a single Check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until the window resets; zero when allowed.
	RetryAfter int
}

type entry struct {
	count   int
	resetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Limiter counts requests per (class, identifier) over fixed windows.
// It is safe for concurrent use; the check-and-increment for one bucket is
// atomic and buckets in different shards never contend.
type Limiter struct {
	classes map[Class]Config
	shards  []*shard
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithShards sets the number of lock shards. Values below 1 are ignored.
func WithShards(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.shards = newShards(n)
		}
	}
}

// New creates a Limiter for the given classes. A nil map means DefaultClasses.
func New(classes map[Class]Config, opts ...Option) *Limiter {
	if classes == nil {
		classes = DefaultClasses()
	}
	l := &Limiter{
		classes: classes,
		shards:  newShards(defaultShards),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return shards
}

// Config returns the configuration of class c.
func (l *Limiter) Config(c Class) (Config, bool) {
	cfg, ok := l.classes[c]
	return cfg, ok
}

// Check records one request for identifier under class c and reports
// whether it fits within the current window. Unknown classes and empty
// identifiers are denied.
func (l *Limiter) Check(identifier string, c Class) Decision {
	cfg, ok := l.classes[c]
	if !ok || identifier == "" || cfg.MaxRequests <= 0 || cfg.Window <= 0 {
		return Decision{Allowed: false, Limit: cfg.MaxRequests, RetryAfter: retrySeconds(cfg.Window)}
	}

	key := bucketKey(c, identifier)
	sh := l.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := l.now()
	e, exists := sh.entries[key]
	if !exists || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(cfg.Window)}
		sh.entries[key] = e
		return Decision{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - 1,
			ResetAt:   e.resetAt,
		}
	}

	if e.count >= cfg.MaxRequests {
		return Decision{
			Allowed:    false,
			Limit:      cfg.MaxRequests,
			Remaining:  0,
			ResetAt:    e.resetAt,
			RetryAfter: retrySeconds(e.resetAt.Sub(now)),
		}
	}

	e.count++
	return Decision{
		Allowed:   true,
		Limit:     cfg.MaxRequests,
		Remaining: cfg.MaxRequests - e.count,
		ResetAt:   e.resetAt,
	}
}

// Sweep evicts every entry whose window has ended and returns how many
// were removed.
func (l *Limiter) Sweep() int {
	now := l.now()
	removed := 0
	for _, sh := range l.shards {
		sh.mu.Lock()
		for k, e := range sh.entries {
			if now.After(e.resetAt) {
				delete(sh.entries, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Run sweeps on every tick of interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			l.Sweep()
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (l *Limiter) Len() int {
	n := 0
	for _, sh := range l.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

func (l *Limiter) shardFor(key string) *shard {
	return l.shards[xxhash.Sum64String(key)%uint64(len(l.shards))]
}

func bucketKey(c Class, identifier string) string {
	return string(c) + ":" + identifier
}

// retrySeconds rounds d up to whole seconds, never below one.
func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
