package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool     `json:"ok"`
	StationsLoaded *int     `json:"stations_loaded,omitempty"`
	LastLoad       string   `json:"last_load,omitempty"`
	Source         string   `json:"source,omitempty"`
	Active         string   `json:"active,omitempty"`
	Candidates     []string `json:"candidates,omitempty"`
	Mode           string   `json:"mode,omitempty"`
	Impact         string   `json:"impact,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Stations.Count()
		lastLoad, source := d.Stations.LastLoad()
		lastLoadStr := "never"
		if !lastLoad.IsZero() {
			lastLoadStr = lastLoad.Format(time.RFC3339)
		}

		components := map[string]componentStatus{
			"stations": {
				OK:             d.Stations.Loaded(),
				StationsLoaded: &count,
				LastLoad:       lastLoadStr,
				Source:         source,
			},
			"mirrors": {
				OK:         d.Mirrors.Len() > 0,
				Active:     d.Mirrors.Active(),
				Candidates: d.Mirrors.Candidates(),
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["stations"].OK && !components["mirrors"].OK {
		return "critical" // nothing loaded, nowhere to load from
	}
	if !components["stations"].OK || !components["redis"].OK {
		return "degraded"
	}
	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "mirror-list-not-shared",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Redis.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "mirror-list-not-shared",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}
