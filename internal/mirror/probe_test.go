package mirror

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProber_Probe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, wantErr: false},
		{name: "redirect counts as ok", status: http.StatusNotModified, wantErr: false},
		{name: "server error", status: http.StatusBadGateway, wantErr: true},
		{name: "not found", status: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUA string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.Header.Get("User-Agent")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewHTTPProber("", time.Second).Probe(context.Background(), srv.URL)
			if (err != nil) != tt.wantErr {
				t.Errorf("Probe() error = %v, wantErr %v", err, tt.wantErr)
			}
			if gotUA != DefaultUserAgent {
				t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
			}
		})
	}
}

func TestHTTPProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewHTTPProber("test-agent", 100*time.Millisecond).Probe(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Probe() should fail on a hanging host")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Probe() took %v, want it bounded by its timeout", elapsed)
	}
}

func TestHTTPProber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if err := NewHTTPProber("", time.Second).Probe(context.Background(), url); err == nil {
		t.Error("Probe() on a closed server should fail")
	}
}
