package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/airwave/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Stations int  `json:"stations"`
}

// Readyz is ready once a station listing is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.Stations.Loaded()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{
			Ready:    ready,
			Stations: d.Stations.Count(),
		})
	}
}
