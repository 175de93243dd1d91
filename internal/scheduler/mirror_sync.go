package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/mirror"
)

// PoolResetter receives a fresh candidate list.
type PoolResetter interface {
	Reset(hosts []string)
}

// Forgetter drops a stored mirror list.
type Forgetter interface {
	Forget(ctx context.Context) error
}

// MirrorSyncer loads the mirror list from discovery into the pool
type MirrorSyncer struct {
	discoverer mirror.Discoverer
	forgetter  Forgetter
	pool       PoolResetter
	logger     logger.Logger
}

// NewMirrorSyncer creates a new mirror syncer. forgetter may be nil.
func NewMirrorSyncer(
	discoverer mirror.Discoverer,
	forgetter Forgetter,
	pool PoolResetter,
	log logger.Logger,
) *MirrorSyncer {
	return &MirrorSyncer{
		discoverer: discoverer,
		forgetter:  forgetter,
		pool:       pool,
		logger:     log,
	}
}

// Sync discovers mirrors and resets the pool with them. With fresh set, a
// stored list is dropped first so discovery runs for real.
func (ms *MirrorSyncer) Sync(ctx context.Context, fresh bool) error {
	if fresh && ms.forgetter != nil {
		if err := ms.forgetter.Forget(ctx); err != nil {
			ms.logger.Warn("failed to drop stored mirror list", logger.Error(err))
		}
	}

	hosts, err := ms.discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover mirrors: %w", err)
	}

	ms.pool.Reset(hosts)
	ms.logger.Info("synced mirrors", logger.Int("count", len(hosts)))
	return nil
}
