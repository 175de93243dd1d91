// Package stations owns the in-memory station listing.
//
// The listing is loaded lazily from the active mirror, validated, and
// replaced as a whole. A failed or invalid fetch evicts the mirror that
// served it and the load retries on the next candidate until a fixed
// deadline passes.
package stations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/MrSnakeDoc/airwave/internal/domain"
	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/mirror"
	"github.com/MrSnakeDoc/airwave/internal/observe"
)

// LoadDeadline bounds one station listing load.
const LoadDeadline = 30 * time.Second

// ErrTimeout means no valid listing was obtained before the deadline.
var ErrTimeout = errors.New("timed out getting stations listing")

// HostPool yields the mirror to fetch from.
type HostPool interface {
	Resolve(ctx context.Context) (string, error)
	Evict(ctx context.Context, host string)
}

// Fetcher downloads the full listing from a mirror.
type Fetcher interface {
	Fetch(ctx context.Context, host string) ([]domain.Station, error)
}

// CacheOptions tunes a Cache. Zero values select the defaults.
type CacheOptions struct {
	Deadline time.Duration
	Clock    clock.Clock
	Metrics  *observe.Metrics
}

// Cache holds the authoritative station listing of a skill instance.
type Cache struct {
	mu       sync.RWMutex
	stations []domain.Station // nil = not loaded
	lastLoad time.Time
	source   string

	pool     HostPool
	fetcher  Fetcher
	clock    clock.Clock
	logger   logger.Logger
	metrics  *observe.Metrics
	deadline time.Duration
}

// NewCache creates an empty cache backed by pool and fetcher.
func NewCache(pool HostPool, fetcher Fetcher, log logger.Logger, opts CacheOptions) *Cache {
	if opts.Deadline <= 0 {
		opts.Deadline = LoadDeadline
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	return &Cache{
		pool:     pool,
		fetcher:  fetcher,
		clock:    opts.Clock,
		logger:   log,
		metrics:  opts.Metrics,
		deadline: opts.Deadline,
	}
}

// Stations returns the cached listing, loading it first when unset.
//
// The returned slice is shared by every caller and must not be modified.
// Returns ErrTimeout when the deadline passes without a valid listing and
// mirror.ErrPoolExhausted as soon as no candidate is left to try.
func (c *Cache) Stations(ctx context.Context) ([]domain.Station, error) {
	if s := c.snapshot(); s != nil {
		return s, nil
	}

	return c.load(ctx)
}

// load fetches listings until one validates, commits it and returns it.
// A committed listing is only ever replaced by a valid one.
func (c *Cache) load(ctx context.Context) ([]domain.Station, error) {
	deadline := c.clock.Now().Add(c.deadline)
	for c.clock.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		host, err := c.pool.Resolve(ctx)
		if err != nil {
			if errors.Is(err, mirror.ErrPoolExhausted) || ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("no mirror confirmed yet, retrying", logger.Error(err))
			continue
		}

		c.logger.Info("updating stations list", logger.String("host", host))
		listing, err := c.fetcher.Fetch(ctx, host)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.metrics.RecordFetch(ctx, "transport")
			c.discard(ctx, host, err)
			continue
		}
		if err := Validate(listing); err != nil {
			c.metrics.RecordFetch(ctx, "invalid")
			c.discard(ctx, host, err)
			continue
		}

		c.metrics.RecordFetch(ctx, "ok")
		c.metrics.RecordCached(ctx, len(listing))
		c.commit(listing, host)
		c.logger.Info("found stations",
			logger.Int("count", len(listing)),
			logger.String("host", host))
		return listing, nil
	}

	return nil, fmt.Errorf("%w (deadline %v)", ErrTimeout, c.deadline)
}

// Local returns the stations matching lang and country.
func (c *Cache) Local(ctx context.Context, lang, country string) ([]domain.Station, error) {
	all, err := c.Stations(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterLocal(all, lang, country), nil
}

// Invalidate drops the listing; the next Stations call loads it again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = nil
}

// Refresh loads a fresh listing. The current one keeps serving until the
// new one validates and stays in place when the reload fails.
func (c *Cache) Refresh(ctx context.Context) ([]domain.Station, error) {
	return c.load(ctx)
}

// Loaded reports whether a listing is committed.
func (c *Cache) Loaded() bool {
	return c.snapshot() != nil
}

// Count returns the size of the committed listing.
func (c *Cache) Count() int {
	return len(c.snapshot())
}

// LastLoad returns when the committed listing was loaded and which mirror
// served it. Zero values mean it never loaded.
func (c *Cache) LastLoad() (time.Time, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastLoad, c.source
}

// discard evicts the mirror that produced err.
func (c *Cache) discard(ctx context.Context, host string, err error) {
	c.logger.Error("broken stations listing retrieved, evicting mirror",
		logger.String("host", host),
		logger.Error(err))
	c.pool.Evict(ctx, host)
}

func (c *Cache) snapshot() []domain.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stations
}

func (c *Cache) commit(listing []domain.Station, host string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = listing
	c.lastLoad = c.clock.Now()
	c.source = host
}
