package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/mirror"
)

// StationTarget is what the refresher drives.
type StationTarget interface {
	Initialize(ctx context.Context)
	Refresh(ctx context.Context) (int, error)
}

// StationRefresher warms the station listing up on start, then reloads it
// periodically and on manual triggers.
type StationRefresher struct {
	target        StationTarget
	mirrors       *MirrorSyncer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewStationRefresher creates a refresher. A non-positive interval disables
// periodic reloads; mirrors may be nil when rediscovery is not wanted.
func NewStationRefresher(
	target StationTarget,
	mirrors *MirrorSyncer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *StationRefresher {
	return &StationRefresher{
		target:        target,
		mirrors:       mirrors,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs the warm-up and the reload loop in the background.
func (sr *StationRefresher) Start(ctx context.Context) {
	go func() {
		defer close(sr.done)

		var tick <-chan time.Time
		if sr.interval > 0 {
			ticker := time.NewTicker(sr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		sr.target.Initialize(ctx)

		for {
			select {
			case <-tick:
				sr.reloadAndLog(ctx, "scheduled")
			case <-sr.manualTrigger:
				sr.reloadAndLog(ctx, "manual")
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight reload to finish.
func (sr *StationRefresher) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
	<-sr.done
}

// Reload refreshes the station listing. When every mirror has been evicted
// the mirror list is rediscovered and the reload retried once.
func (sr *StationRefresher) Reload(ctx context.Context) (int, error) {
	n, err := sr.target.Refresh(ctx)
	if err == nil || sr.mirrors == nil || !errors.Is(err, mirror.ErrPoolExhausted) {
		return n, err
	}

	sr.logger.Warn("all mirrors evicted, rediscovering", logger.Error(err))
	if serr := sr.mirrors.Sync(ctx, true); serr != nil {
		return 0, fmt.Errorf("rediscovery failed: %w", serr)
	}
	return sr.target.Refresh(ctx)
}

func (sr *StationRefresher) reloadAndLog(ctx context.Context, trigger string) {
	sr.logger.Info("reloading stations", logger.String("trigger", trigger))

	n, err := sr.Reload(ctx)
	if err != nil {
		sr.logger.Error("failed to reload stations",
			logger.String("trigger", trigger),
			logger.Error(err))
		return
	}
	sr.logger.Info("stations reloaded",
		logger.String("trigger", trigger),
		logger.Int("count", n))
}
