// Package skill answers playback searches with ranked internet radio
// stations.
package skill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/domain"
	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/observe"
	"github.com/MrSnakeDoc/airwave/internal/vocab"
)

const (
	DefaultMaxResults = 50
	DefaultIconPath   = "ui/radio-solid.svg"
)

// StationSource provides the station listing.
type StationSource interface {
	Stations(ctx context.Context) ([]domain.Station, error)
	Local(ctx context.Context, lang, country string) ([]domain.Station, error)
	Refresh(ctx context.Context) ([]domain.Station, error)
}

// LocaleResolver derives the search locale from a phrase.
type LocaleResolver interface {
	Locale(phrase, assistantLang, country string) domain.Locale
}

// Vocabulary matches keyword lists against phrases.
type Vocabulary interface {
	Match(voc, phrase, lang string) bool
}

type Options struct {
	IconPath       string
	DefaultLang    string
	DefaultCountry string
	MaxResults     int
	Metrics        *observe.Metrics
}

// Request is one playback search.
type Request struct {
	Phrase    string
	MediaType domain.MediaType
	// Lang and Country override the assistant defaults when set.
	Lang    string
	Country string
}

// Skill serialises every operation: the station cache and the mirror pool
// it drives expect a single caller at a time. Callers waiting for their turn
// give up when their context ends.
type Skill struct {
	turn chan struct{}

	stations StationSource
	locale   LocaleResolver
	vocab    Vocabulary
	logger   logger.Logger
	metrics  *observe.Metrics

	iconPath       string
	defaultLang    string
	defaultCountry string
	maxResults     int
}

func New(stations StationSource, loc LocaleResolver, voc Vocabulary, log logger.Logger, opts Options) *Skill {
	if opts.IconPath == "" {
		opts.IconPath = DefaultIconPath
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en-us"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	return &Skill{
		turn:           make(chan struct{}, 1),
		stations:       stations,
		locale:         loc,
		vocab:          voc,
		logger:         log,
		metrics:        opts.Metrics,
		iconPath:       opts.IconPath,
		defaultLang:    opts.DefaultLang,
		defaultCountry: opts.DefaultCountry,
		maxResults:     opts.MaxResults,
	}
}

// Initialize loads the station listing eagerly. Failures are logged and
// left for the first search to retry.
func (s *Skill) Initialize(ctx context.Context) {
	if err := s.acquire(ctx); err != nil {
		s.logger.Warn("station warm-up abandoned", logger.Error(err))
		return
	}
	defer s.release()

	listing, err := s.stations.Stations(ctx)
	if err != nil {
		s.logger.Error("failed to load stations at startup", logger.Error(err))
		return
	}
	s.logger.Info("stations ready", logger.Int("count", len(listing)))
}

// Search ranks the stations of the request locale against its phrase.
// Errors come from station retrieval, or from ctx ending while another
// operation holds the skill.
func (s *Skill) Search(ctx context.Context, req Request) ([]domain.Result, error) {
	start := time.Now()

	if err := s.acquire(ctx); err != nil {
		s.metrics.RecordSearch(ctx, "error", time.Since(start))
		return nil, err
	}
	defer s.release()

	lang := req.Lang
	if lang == "" {
		lang = s.defaultLang
	}
	country := req.Country
	if country == "" {
		country = s.defaultCountry
	}

	internet := s.vocab.Match(vocab.Internet, req.Phrase, lang)
	base := domain.BaseConfidence(req.MediaType, internet)
	loc := s.locale.Locale(req.Phrase, lang, country)

	candidates, err := s.stations.Local(ctx, loc.Lang, loc.Country)
	if err != nil {
		s.metrics.RecordSearch(ctx, "error", time.Since(start))
		return nil, fmt.Errorf("failed to get local stations: %w", err)
	}

	results := domain.Truncate(domain.Rank(candidates, req.Phrase, base, s.iconPath), s.maxResults)

	outcome := "hit"
	if len(results) == 0 {
		outcome = "miss"
	}
	s.metrics.RecordSearch(ctx, outcome, time.Since(start))

	s.logger.Debug("search done",
		logger.String("phrase", strings.TrimSpace(req.Phrase)),
		logger.String("media_type", req.MediaType.String()),
		logger.String("lang", loc.Lang),
		logger.String("country", loc.Country),
		logger.Int("base", base),
		logger.Int("candidates", len(candidates)),
		logger.Int("results", len(results)))

	return results, nil
}

// Refresh reloads the station listing and returns its size.
func (s *Skill) Refresh(ctx context.Context) (int, error) {
	if err := s.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.release()

	listing, err := s.stations.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	return len(listing), nil
}

// acquire waits for the skill's turn or for ctx to end.
func (s *Skill) acquire(ctx context.Context) error {
	select {
	case s.turn <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Skill) release() {
	<-s.turn
}
