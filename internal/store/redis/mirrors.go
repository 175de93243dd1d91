package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMirrorTTL is how long a discovered mirror list is reused
const DefaultMirrorTTL = 6 * time.Hour

// SaveMirrors stores the discovered mirror list, expiring after ttl
func (s *Store) SaveMirrors(ctx context.Context, hosts []string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultMirrorTTL
	}

	data, err := json.Marshal(hosts)
	if err != nil {
		return fmt.Errorf("failed to marshal mirrors: %w", err)
	}

	if err := s.client.Set(ctx, MirrorsKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save mirrors: %w", err)
	}
	return nil
}

// GetMirrors retrieves the stored mirror list. A missing key is a cache
// miss and returns nil without error.
func (s *Store) GetMirrors(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, MirrorsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mirrors: %w", err)
	}

	var hosts []string
	if err := json.Unmarshal(data, &hosts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mirrors: %w", err)
	}
	return hosts, nil
}

// DeleteMirrors forgets the stored mirror list
func (s *Store) DeleteMirrors(ctx context.Context) error {
	if err := s.client.Del(ctx, MirrorsKey()).Err(); err != nil {
		return fmt.Errorf("failed to delete mirrors: %w", err)
	}
	return nil
}
