package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/observe"
)

const (
	// ResolveDeadline bounds one host resolution.
	ResolveDeadline = 5 * time.Second

	// ProbeTimeout bounds one liveness probe.
	ProbeTimeout = 2 * time.Second
)

var (
	// ErrNoHostAvailable means no live mirror could be confirmed.
	ErrNoHostAvailable = errors.New("no mirror host available")

	// ErrPoolExhausted means every candidate has been evicted.
	// It wraps ErrNoHostAvailable.
	ErrPoolExhausted = fmt.Errorf("%w: candidate pool exhausted", ErrNoHostAvailable)
)

// Prober checks whether a mirror host answers.
type Prober interface {
	Probe(ctx context.Context, host string) error
}

// PoolOptions tunes a Pool. Zero values select the defaults.
type PoolOptions struct {
	Deadline time.Duration
	Clock    clock.Clock
	Metrics  *observe.Metrics
}

// Pool holds the candidate mirror hosts and the active one.
//
// Candidates only ever shrink: a host that fails a probe or serves a broken
// listing stays evicted until the pool is Reset with a fresh host list.
type Pool struct {
	mu         sync.RWMutex
	candidates []string
	active     string

	prober   Prober
	clock    clock.Clock
	logger   logger.Logger
	metrics  *observe.Metrics
	deadline time.Duration
}

// NewPool creates a pool from hosts, dropping duplicates while keeping the
// first-seen order.
func NewPool(hosts []string, prober Prober, log logger.Logger, opts PoolOptions) *Pool {
	if opts.Deadline <= 0 {
		opts.Deadline = ResolveDeadline
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	candidates := dedupe(hosts)
	log.Info("mirror candidates loaded",
		logger.Int("count", len(candidates)),
		logger.Strings("hosts", candidates))

	return &Pool{
		candidates: candidates,
		prober:     prober,
		clock:      opts.Clock,
		logger:     log,
		metrics:    opts.Metrics,
		deadline:   opts.Deadline,
	}
}

// Resolve returns the active host, probing candidates in order until one
// answers or the deadline passes. Once a host is active it is returned
// without probing again.
func (p *Pool) Resolve(ctx context.Context) (string, error) {
	if host := p.Active(); host != "" {
		return host, nil
	}

	deadline := p.clock.Now().Add(p.deadline)
	for p.Active() == "" && p.clock.Now().Before(deadline) {
		candidate, ok := p.first()
		if !ok {
			break
		}

		p.logger.Info("testing mirror candidate", logger.String("host", candidate))
		err := p.prober.Probe(ctx, candidate)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			p.metrics.RecordProbe(ctx, false)
			p.logger.Warn("removing broken mirror",
				logger.String("host", candidate),
				logger.Error(err))
			p.evict(ctx, candidate, "probe")
			continue
		}

		p.metrics.RecordProbe(ctx, true)
		p.commit(candidate)
		p.logger.Info("mirror candidate ok", logger.String("host", candidate))
	}

	if host := p.Active(); host != "" {
		return host, nil
	}
	if p.Len() == 0 {
		return "", ErrPoolExhausted
	}
	return "", fmt.Errorf("%w: nothing confirmed within %v", ErrNoHostAvailable, p.deadline)
}

// Evict removes host from the candidates until the next Reset and clears it if it
// is the active host.
func (p *Pool) Evict(ctx context.Context, host string) {
	p.evict(ctx, host, "listing")
}

func (p *Pool) evict(ctx context.Context, host, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active == host {
		p.active = ""
	}
	for i, c := range p.candidates {
		if c == host {
			p.candidates = append(p.candidates[:i], p.candidates[i+1:]...)
			p.metrics.RecordEviction(ctx, reason)
			return
		}
	}
}

// Reset replaces the candidates with hosts and drops the active host.
func (p *Pool) Reset(hosts []string) {
	candidates := dedupe(hosts)

	p.mu.Lock()
	p.candidates = candidates
	p.active = ""
	p.mu.Unlock()

	p.logger.Info("mirror candidates reset",
		logger.Int("count", len(candidates)),
		logger.Strings("hosts", candidates))
}

// Clear drops the active host so the next Resolve selects again.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = ""
}

// Active returns the active host, or "" when unset.
func (p *Pool) Active() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.active
}

// Candidates returns a copy of the remaining candidates.
func (p *Pool) Candidates() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// Len returns the number of remaining candidates.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.candidates)
}

func (p *Pool) first() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.candidates) == 0 {
		return "", false
	}
	return p.candidates[0], true
}

func (p *Pool) commit(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = host
}

func dedupe(hosts []string) []string {
	seen := make(map[string]bool, len(hosts))
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
