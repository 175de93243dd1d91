package redis

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/logger"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(context.Background(), Options{}, logger.NewNop())
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidOptions(t *testing.T) {
	base := Options{
		Addr:           "localhost:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  100 * time.Millisecond,
		MaxWait:        time.Second,
		PingTimeout:    100 * time.Millisecond,
	}

	tests := map[string]func(o *Options){
		"connect timeout": func(o *Options) { o.ConnectTimeout = 0 },
		"retry interval":  func(o *Options) { o.RetryInterval = 0 },
		"max wait":        func(o *Options) { o.MaxWait = time.Millisecond },
		"ping timeout":    func(o *Options) { o.PingTimeout = -1 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := base
			mutate(&opts)
			if _, err := Connect(context.Background(), opts, logger.NewNop()); err == nil {
				t.Fatal("Connect() error = nil, want validation error")
			}
		})
	}
}

func TestConnect_Unreachable(t *testing.T) {
	// Reserve a port, then free it so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	opts := Options{
		Addr:           addr,
		DialTimeout:    50 * time.Millisecond,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  50 * time.Millisecond,
		MaxWait:        100 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
	}

	start := time.Now()
	if _, err := Connect(context.Background(), opts, logger.NewNop()); err == nil {
		t.Fatal("Connect() error = nil, want unavailable")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() took %v, want it bounded by ConnectTimeout", elapsed)
	}
}
