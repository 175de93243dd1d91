package skill

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MrSnakeDoc/airwave/internal/domain"
	"github.com/MrSnakeDoc/airwave/internal/locale"
	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/stations"
	"github.com/MrSnakeDoc/airwave/internal/vocab"
)

type fakeSource struct {
	listing   []domain.Station
	err       error
	loads     int
	refreshes int
	lastLang  string
	lastCtry  string
}

func (f *fakeSource) Stations(context.Context) ([]domain.Station, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

func (f *fakeSource) Local(ctx context.Context, lang, country string) ([]domain.Station, error) {
	f.lastLang, f.lastCtry = lang, country
	all, err := f.Stations(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterLocal(all, lang, country), nil
}

func (f *fakeSource) Refresh(ctx context.Context) ([]domain.Station, error) {
	f.refreshes++
	return f.Stations(ctx)
}

func newTestSkill(t *testing.T, src StationSource, opts Options) *Skill {
	t.Helper()
	cfg, err := vocab.NewLoader("").Load()
	if err != nil {
		t.Fatalf("vocab Load() error = %v", err)
	}
	return New(src, locale.NewExtractor(), vocab.NewMatcher(cfg), logger.NewNop(), opts)
}

var listing = []domain.Station{
	{Name: "Jazz FM", URL: "http://jazz/stream", Favicon: "http://jazz/icon", Tags: "jazz,smooth", LanguageCodes: "en", CountryCode: "US"},
	{Name: "Smooth Radio", URL: "http://smooth/stream", Tags: "smooth,jazz", LanguageCodes: "en", CountryCode: "US"},
	{Name: "KEXP", URL: "http://kexp/stream", Tags: "indie", LanguageCodes: "en", CountryCode: "US"},
	{Name: "Jazz Radio", URL: "http://jazzradio/stream", Tags: "jazz", LanguageCodes: "fr", CountryCode: "FR"},
	{Name: "Radio Paradise", URL: "http://rp/stream", Tags: "eclectic", LanguageCodes: "en", CountryCode: "GB"},
}

func TestSearch_RanksLocalStations(t *testing.T) {
	src := &fakeSource{listing: listing}
	s := newTestSkill(t, src, Options{DefaultLang: "en-us", DefaultCountry: "US"})

	got, err := s.Search(context.Background(), Request{Phrase: "play jazz fm", MediaType: domain.MediaRadio})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if src.lastLang != "en" || src.lastCtry != "US" {
		t.Errorf("locale = %s/%s, want en/US", src.lastLang, src.lastCtry)
	}

	// Jazz FM: 50+50, Smooth Radio: 50+20 on "jazz", KEXP: 50.
	want := []struct {
		title      string
		confidence int
	}{
		{"Jazz FM", 100},
		{"Smooth Radio", 70},
		{"KEXP", 50},
	}
	if len(got) != len(want) {
		t.Fatalf("Search() returned %d results, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Title != w.title || got[i].MatchConfidence != w.confidence {
			t.Errorf("result[%d] = %s/%d, want %s/%d", i, got[i].Title, got[i].MatchConfidence, w.title, w.confidence)
		}
	}
	if got[0].SkillIcon != DefaultIconPath || got[0].URI != "http://jazz/stream" || got[0].Image != "http://jazz/icon" {
		t.Errorf("result[0] projection = %+v", got[0])
	}
}

func TestSearch_InternetBonus(t *testing.T) {
	src := &fakeSource{listing: listing}
	s := newTestSkill(t, src, Options{DefaultCountry: "US"})

	got, err := s.Search(context.Background(), Request{Phrase: "play some internet music", MediaType: domain.MediaAudio})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// Audio 30 + internet 20 lets unmatched stations reach the threshold.
	if len(got) != 3 {
		t.Fatalf("Search() returned %d results, want 3", len(got))
	}
	for _, r := range got {
		if r.MatchConfidence != 50 {
			t.Errorf("%s confidence = %d, want 50", r.Title, r.MatchConfidence)
		}
	}
}

func TestSearch_SpokenLanguage(t *testing.T) {
	src := &fakeSource{listing: listing}
	s := newTestSkill(t, src, Options{DefaultCountry: "FR"})

	got, err := s.Search(context.Background(), Request{Phrase: "play french jazz", MediaType: domain.MediaRadio})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if src.lastLang != "fr" {
		t.Errorf("lang = %q, want fr", src.lastLang)
	}
	if len(got) != 1 || got[0].Title != "Jazz Radio" || got[0].MatchConfidence != 70 {
		t.Errorf("Search() = %+v, want [Jazz Radio/70]", got)
	}
}

func TestSearch_Cap(t *testing.T) {
	many := make([]domain.Station, 0, 80)
	for i := 0; i < 80; i++ {
		many = append(many, domain.Station{Name: fmt.Sprintf("station-%02d", i), LanguageCodes: "en", CountryCode: "US"})
	}
	s := newTestSkill(t, &fakeSource{listing: many}, Options{DefaultCountry: "US"})

	got, err := s.Search(context.Background(), Request{Phrase: "anything", MediaType: domain.MediaRadio})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != DefaultMaxResults {
		t.Fatalf("Search() returned %d results, want %d", len(got), DefaultMaxResults)
	}
	if got[0].Title != "station-00" || got[49].Title != "station-49" {
		t.Errorf("cap did not keep rank order: first %s, last %s", got[0].Title, got[49].Title)
	}
}

func TestSearch_PropagatesStationErrors(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("load: %w", stations.ErrTimeout)}
	s := newTestSkill(t, src, Options{})

	_, err := s.Search(context.Background(), Request{Phrase: "play jazz", MediaType: domain.MediaRadio})
	if !errors.Is(err, stations.ErrTimeout) {
		t.Fatalf("Search() error = %v, want ErrTimeout", err)
	}
}

func TestInitialize_SwallowsErrors(t *testing.T) {
	src := &fakeSource{err: stations.ErrTimeout}
	s := newTestSkill(t, src, Options{})

	s.Initialize(context.Background())
	if src.loads != 1 {
		t.Errorf("loads = %d, want 1", src.loads)
	}
}

func TestRefresh(t *testing.T) {
	src := &fakeSource{listing: listing}
	s := newTestSkill(t, src, Options{})

	n, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if n != len(listing) || src.refreshes != 1 {
		t.Errorf("Refresh() = %d (refreshes %d), want %d (1)", n, src.refreshes, len(listing))
	}
}

func TestSearch_GivesUpWhileWaitingForTurn(t *testing.T) {
	src := &fakeSource{listing: listing}
	s := newTestSkill(t, src, Options{DefaultLang: "en-us", DefaultCountry: "US"})

	// Another operation holds the skill, as a long station load would.
	if err := s.acquire(context.Background()); err != nil {
		t.Fatalf("acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Search(ctx, Request{Phrase: "play jazz fm", MediaType: domain.MediaRadio})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Search() error = %v, want context.DeadlineExceeded", err)
	}
	if src.loads != 0 {
		t.Errorf("station source called %d times while waiting, want 0", src.loads)
	}

	s.release()
	if _, err := s.Search(context.Background(), Request{Phrase: "play jazz fm", MediaType: domain.MediaRadio}); err != nil {
		t.Fatalf("Search() after release error = %v", err)
	}
}
