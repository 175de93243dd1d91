package mirror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/MrSnakeDoc/airwave/internal/logger"
)

const (
	// DefaultSRVName lists the public radio-browser API servers.
	DefaultSRVName = "_api._tcp.radio-browser.info"

	// DefaultResolvConf is read when no DNS server is configured.
	DefaultResolvConf = "/etc/resolv.conf"
)

// Discoverer produces the initial candidate pool.
type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}

// SRVDiscoverer looks up mirrors through a DNS SRV record.
type SRVDiscoverer struct {
	name   string
	server string
	client *dns.Client
}

// NewSRVDiscoverer queries name against server ("host:port"). An empty
// server falls back to the first nameserver of /etc/resolv.conf.
func NewSRVDiscoverer(name, server string, timeout time.Duration) *SRVDiscoverer {
	if name == "" {
		name = DefaultSRVName
	}
	return &SRVDiscoverer{
		name:   dns.Fqdn(name),
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// Discover returns one https base URL per SRV target, in answer order.
func (d *SRVDiscoverer) Discover(ctx context.Context) ([]string, error) {
	server, err := d.nameserver()
	if err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(d.name, dns.TypeSRV)
	msg.RecursionDesired = true

	resp, _, err := d.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, fmt.Errorf("srv lookup %s via %s: %w", d.name, server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("srv lookup %s: %s", d.name, dns.RcodeToString[resp.Rcode])
	}

	hosts := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		target := strings.TrimSuffix(srv.Target, ".")
		if target == "" {
			continue
		}
		hosts = append(hosts, "https://"+target)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("srv lookup %s: no targets", d.name)
	}
	return hosts, nil
}

func (d *SRVDiscoverer) nameserver() (string, error) {
	if d.server != "" {
		return d.server, nil
	}
	conf, err := dns.ClientConfigFromFile(DefaultResolvConf)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", DefaultResolvConf, err)
	}
	if len(conf.Servers) == 0 {
		return "", fmt.Errorf("no nameserver in %s", DefaultResolvConf)
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}

// StaticDiscoverer returns a fixed host list.
type StaticDiscoverer []string

// Discover returns the configured hosts.
func (s StaticDiscoverer) Discover(context.Context) ([]string, error) {
	if len(s) == 0 {
		return nil, errors.New("no static mirrors configured")
	}
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

// MirrorStore keeps a copy of a discovered host list between restarts.
type MirrorStore interface {
	GetMirrors(ctx context.Context) ([]string, error)
	SaveMirrors(ctx context.Context, hosts []string, ttl time.Duration) error
	DeleteMirrors(ctx context.Context) error
}

// CachedDiscoverer serves the stored host list when present, otherwise asks
// next and stores its answer. Store failures are logged, never fatal.
type CachedDiscoverer struct {
	store  MirrorStore
	next   Discoverer
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedDiscoverer wraps next with store.
func NewCachedDiscoverer(store MirrorStore, next Discoverer, ttl time.Duration, log logger.Logger) *CachedDiscoverer {
	return &CachedDiscoverer{store: store, next: next, ttl: ttl, logger: log}
}

// Discover implements Discoverer.
func (c *CachedDiscoverer) Discover(ctx context.Context) ([]string, error) {
	hosts, err := c.store.GetMirrors(ctx)
	if err != nil {
		c.logger.Warn("failed to read cached mirrors", logger.Error(err))
	} else if len(hosts) > 0 {
		c.logger.Info("using cached mirror list", logger.Int("count", len(hosts)))
		return hosts, nil
	}

	hosts, err = c.next.Discover(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.SaveMirrors(ctx, hosts, c.ttl); err != nil {
		c.logger.Warn("failed to cache mirror list", logger.Error(err))
	}
	return hosts, nil
}

// Forget drops the stored list so the next Discover asks next again.
func (c *CachedDiscoverer) Forget(ctx context.Context) error {
	return c.store.DeleteMirrors(ctx)
}

// Chain tries each discoverer in order and returns the first non-empty list.
type Chain struct {
	discoverers []Discoverer
	logger      logger.Logger
}

// NewChain builds a Chain.
func NewChain(log logger.Logger, discoverers ...Discoverer) *Chain {
	return &Chain{discoverers: discoverers, logger: log}
}

// Discover implements Discoverer.
func (c *Chain) Discover(ctx context.Context) ([]string, error) {
	var errs []error
	for _, d := range c.discoverers {
		hosts, err := d.Discover(ctx)
		if err != nil {
			c.logger.Warn("mirror discovery failed, trying next source", logger.Error(err))
			errs = append(errs, err)
			continue
		}
		if len(hosts) > 0 {
			return hosts, nil
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: discovery returned no hosts", ErrNoHostAvailable)
	}
	return nil, fmt.Errorf("%w: discovery failed: %w", ErrNoHostAvailable, errors.Join(errs...))
}
