package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/domain"
	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/skill"
)

// Searcher answers playback searches.
type Searcher interface {
	Search(ctx context.Context, req skill.Request) ([]domain.Result, error)
}

// StationStatus reports the state of the station listing.
type StationStatus interface {
	Loaded() bool
	Count() int
	LastLoad() (time.Time, string)
}

// MirrorStatus reports the state of the mirror pool.
type MirrorStatus interface {
	Active() string
	Len() int
	Candidates() []string
}

// Pinger checks an optional backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedHosts   []string      // Host headers allowed to access the search endpoint
	AllowedCIDRS   []string      // IPs allowed to access the operational endpoints
	TrustProxy     bool          // true if running behind a trusted reverse proxy
	RateBurst      int           // search requests allowed in a burst per client IP
	RatePerMin     int           // search requests refilled per client IP per minute
	Searcher       Searcher      // Skill answering /search
	Stations       StationStatus // Station listing state
	Mirrors        MirrorStatus  // Mirror pool state
	Redis          Pinger        // Mirror list store (nil when disabled)
	ReloadTrigger  chan struct{} // Channel to trigger a manual station reload
	MetricsHandler http.Handler  // Prometheus scrape handler (nil when disabled)
}
