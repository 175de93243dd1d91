package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/airwave/internal/domain"
	"github.com/MrSnakeDoc/airwave/internal/httpserver/deps"
	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/mirror"
	"github.com/MrSnakeDoc/airwave/internal/skill"
	"github.com/MrSnakeDoc/airwave/internal/stations"
)

type searchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []domain.Result `json:"results"`
}

// Search answers GET /search?q=&type=&lang=&country=.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		phrase := strings.TrimSpace(q.Get("q"))
		if phrase == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}

		mediaType, err := domain.ParseMediaType(q.Get("type"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		req := skill.Request{
			Phrase:    phrase,
			MediaType: mediaType,
			Lang:      strings.TrimSpace(q.Get("lang")),
			Country:   strings.TrimSpace(q.Get("country")),
		}

		results, err := d.Searcher.Search(r.Context(), req)
		if err != nil {
			status := searchErrorStatus(err)
			d.Logger.Warn("search failed",
				logger.String("query", phrase),
				logger.Int("status", status),
				logger.Error(err))
			msg := http.StatusText(status)
			if status == http.StatusServiceUnavailable {
				msg = "station directory unavailable"
			}
			writeError(w, status, msg)
			return
		}

		d.Logger.Info("search request",
			logger.String("query", phrase),
			logger.String("type", mediaType.String()),
			logger.Int("results", len(results)))

		writeJSON(w, http.StatusOK, searchResponse{
			Query:   phrase,
			Count:   len(results),
			Results: results,
		})
	}
}

func searchErrorStatus(err error) int {
	switch {
	case errors.Is(err, stations.ErrTimeout),
		errors.Is(err, mirror.ErrNoHostAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
