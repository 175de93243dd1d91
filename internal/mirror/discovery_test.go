package mirror

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/MrSnakeDoc/airwave/internal/logger"
)

// startDNS runs an in-process UDP DNS server and returns its address.
func startDNS(t *testing.T, handler dns.HandlerFunc) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func srvRecord(name, target string) dns.RR {
	return &dns.SRV{
		Hdr:      dns.RR_Header{Name: name, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 60},
		Priority: 1,
		Weight:   1,
		Port:     443,
		Target:   target,
	}
}

func TestSRVDiscoverer_Discover(t *testing.T) {
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		name := r.Question[0].Name
		m.Answer = append(m.Answer,
			srvRecord(name, "de1.api.radio-browser.info."),
			srvRecord(name, "nl1.api.radio-browser.info."),
		)
		_ = w.WriteMsg(m)
	})

	hosts, err := NewSRVDiscoverer("", addr, time.Second).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{"https://de1.api.radio-browser.info", "https://nl1.api.radio-browser.info"}
	if len(hosts) != len(want) {
		t.Fatalf("Discover() = %v, want %v", hosts, want)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("Discover()[%d] = %q, want %q", i, hosts[i], want[i])
		}
	}
}

func TestSRVDiscoverer_NXDomain(t *testing.T) {
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(r, dns.RcodeNameError)
		_ = w.WriteMsg(m)
	})

	if _, err := NewSRVDiscoverer("_api._tcp.example.invalid", addr, time.Second).Discover(context.Background()); err == nil {
		t.Error("Discover() should fail on NXDOMAIN")
	}
}

func TestSRVDiscoverer_NoTargets(t *testing.T) {
	addr := startDNS(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		_ = w.WriteMsg(m)
	})

	if _, err := NewSRVDiscoverer("", addr, time.Second).Discover(context.Background()); err == nil {
		t.Error("Discover() should fail when the answer is empty")
	}
}

type memoryMirrorStore struct {
	hosts   []string
	saved   []string
	deleted bool
	getErr  error
	saveErr error
}

func (m *memoryMirrorStore) GetMirrors(context.Context) ([]string, error) {
	return m.hosts, m.getErr
}

func (m *memoryMirrorStore) SaveMirrors(_ context.Context, hosts []string, _ time.Duration) error {
	m.saved = hosts
	return m.saveErr
}

func (m *memoryMirrorStore) DeleteMirrors(context.Context) error {
	m.hosts = nil
	m.deleted = true
	return nil
}

func TestCachedDiscoverer(t *testing.T) {
	log := logger.New("error", false)

	t.Run("cache hit skips discovery", func(t *testing.T) {
		store := &memoryMirrorStore{hosts: []string{"https://cached"}}
		next := StaticDiscoverer{"https://fresh"}

		hosts, err := NewCachedDiscoverer(store, next, time.Hour, log).Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(hosts) != 1 || hosts[0] != "https://cached" {
			t.Errorf("Discover() = %v, want [https://cached]", hosts)
		}
		if store.saved != nil {
			t.Errorf("saved = %v, want nothing saved", store.saved)
		}
	})

	t.Run("cache miss stores discovered hosts", func(t *testing.T) {
		store := &memoryMirrorStore{}
		next := StaticDiscoverer{"https://fresh"}

		hosts, err := NewCachedDiscoverer(store, next, time.Hour, log).Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(hosts) != 1 || hosts[0] != "https://fresh" {
			t.Errorf("Discover() = %v, want [https://fresh]", hosts)
		}
		if len(store.saved) != 1 {
			t.Errorf("saved = %v, want the fresh list", store.saved)
		}
	})

	t.Run("store failures are not fatal", func(t *testing.T) {
		store := &memoryMirrorStore{getErr: errors.New("redis down"), saveErr: errors.New("redis down")}
		next := StaticDiscoverer{"https://fresh"}

		hosts, err := NewCachedDiscoverer(store, next, time.Hour, log).Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(hosts) != 1 {
			t.Errorf("Discover() = %v, want one host", hosts)
		}
	})

	t.Run("forget forces rediscovery", func(t *testing.T) {
		store := &memoryMirrorStore{hosts: []string{"https://stale"}}
		d := NewCachedDiscoverer(store, StaticDiscoverer{"https://fresh"}, time.Hour, log)

		if err := d.Forget(context.Background()); err != nil {
			t.Fatalf("Forget() error = %v", err)
		}
		hosts, err := d.Discover(context.Background())
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if !store.deleted || len(hosts) != 1 || hosts[0] != "https://fresh" {
			t.Errorf("Discover() = %v (deleted %v), want [https://fresh]", hosts, store.deleted)
		}
	})
}

func TestChain_FallsBack(t *testing.T) {
	log := logger.New("error", false)

	chain := NewChain(log, StaticDiscoverer(nil), StaticDiscoverer{"https://seed"})
	hosts, err := chain.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(hosts) != 1 || hosts[0] != "https://seed" {
		t.Errorf("Discover() = %v, want [https://seed]", hosts)
	}

	_, err = NewChain(log, StaticDiscoverer(nil)).Discover(context.Background())
	if !errors.Is(err, ErrNoHostAvailable) {
		t.Errorf("Discover() error = %v, want ErrNoHostAvailable", err)
	}
}
