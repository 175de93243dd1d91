package mirror

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/utils"
)

// DefaultUserAgent identifies the skill to the directory API.
const DefaultUserAgent = "airwave/skill-internet_radio"

// HTTPProber probes a mirror with a plain GET on its root.
type HTTPProber struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewHTTPProber creates a prober. Zero values select DefaultUserAgent and
// ProbeTimeout.
func NewHTTPProber(userAgent string, timeout time.Duration) *HTTPProber {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = ProbeTimeout
	}

	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				DisableKeepAlives: true,
			},
		},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Probe returns nil when host answers with a 2xx or 3xx status.
func (p *HTTPProber) Probe(ctx context.Context, host string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer utils.DrainAndClose(resp.Body, 4<<10)

	if !utils.IsOK(resp.StatusCode) {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}
