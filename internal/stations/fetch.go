package stations

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/domain"
	"github.com/MrSnakeDoc/airwave/internal/mirror"
	"github.com/MrSnakeDoc/airwave/internal/utils"
)

const (
	// ListingPath is the full station listing endpoint of a mirror.
	ListingPath = "/json/stations"

	ConnectTimeout = 3 * time.Second
	ReadTimeout    = 3 * time.Second
)

// HTTPFetcher downloads the listing over HTTP.
//
// There is no overall timeout: the listing is large, so the transfer is
// only aborted when connecting, waiting for headers, or reading a chunk
// takes longer than the configured timeouts.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	readTimeout time.Duration
}

// NewHTTPFetcher creates a fetcher. Zero values select the defaults.
func NewHTTPFetcher(userAgent string, connectTimeout, readTimeout time.Duration) *HTTPFetcher {
	if userAgent == "" {
		userAgent = mirror.DefaultUserAgent
	}
	if connectTimeout <= 0 {
		connectTimeout = ConnectTimeout
	}
	if readTimeout <= 0 {
		readTimeout = ReadTimeout
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				TLSHandshakeTimeout:   connectTimeout,
				ResponseHeaderTimeout: readTimeout,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		userAgent:   userAgent,
		readTimeout: readTimeout,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, host string) ([]domain.Station, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, utils.JoinURL(host, ListingPath), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if !utils.IsOK(resp.StatusCode) {
		return nil, fmt.Errorf("listing request returned status %d", resp.StatusCode)
	}

	body := newIdleReader(resp.Body, f.readTimeout, cancel)
	defer body.stop()

	var listing []domain.Station
	if err := json.NewDecoder(body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return listing, nil
}

// idleReader cancels the request when no read completes within timeout.
type idleReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func newIdleReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *idleReader {
	return &idleReader{
		r:       r,
		timer:   time.AfterFunc(timeout, cancel),
		timeout: timeout,
	}
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	ir.timer.Reset(ir.timeout)
	return n, err
}

func (ir *idleReader) stop() {
	ir.timer.Stop()
}
