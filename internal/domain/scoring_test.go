package domain

import (
	"fmt"
	"testing"
)

const testIcon = "ui/radio-solid.svg"

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		station  Station
		phrase   string
		base     int
		expected int
	}{
		{
			name:     "name match",
			station:  Station{Name: "Jazz FM"},
			phrase:   "play jazz fm",
			base:     50,
			expected: 100,
		},
		{
			name:     "tag match",
			station:  Station{Name: "KCRW", Tags: "eclectic,jazz"},
			phrase:   "play some jazz",
			base:     40,
			expected: 60,
		},
		{
			name:     "name wins over tag",
			station:  Station{Name: "Jazz FM", Tags: "jazz"},
			phrase:   "jazz fm please",
			base:     0,
			expected: 50,
		},
		{
			name:     "tags are case sensitive",
			station:  Station{Name: "KCRW", Tags: "Jazz"},
			phrase:   "play some jazz",
			base:     30,
			expected: 30,
		},
		{
			name:     "no match",
			station:  Station{Name: "Classic Rock", Tags: "rock"},
			phrase:   "play jazz fm",
			base:     30,
			expected: 30,
		},
		{
			name:     "empty tags",
			station:  Station{Name: "Classic Rock", Tags: ""},
			phrase:   "play jazz fm",
			base:     50,
			expected: 50,
		},
		{
			name:     "empty name matches any phrase",
			station:  Station{Name: ""},
			phrase:   "play jazz",
			base:     0,
			expected: 50,
		},
		{
			name:     "trailing comma yields an empty tag",
			station:  Station{Name: "X", Tags: "rock,"},
			phrase:   "play jazz",
			base:     30,
			expected: 50,
		},
		{
			name:     "empty tag between commas",
			station:  Station{Name: "KCRW", Tags: "qq,,ww"},
			phrase:   "play jazz fm",
			base:     20,
			expected: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.station, tt.phrase, tt.base)
			if got != tt.expected {
				t.Errorf("Score() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestBaseConfidence(t *testing.T) {
	tests := []struct {
		mediaType MediaType
		internet  bool
		expected  int
	}{
		{MediaRadio, false, 50},
		{MediaMusic, false, 40},
		{MediaAudio, false, 30},
		{MediaGeneric, false, 0},
		{MediaRadio, true, 70},
		{MediaGeneric, true, 20},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/internet=%v", tt.mediaType, tt.internet), func(t *testing.T) {
			if got := BaseConfidence(tt.mediaType, tt.internet); got != tt.expected {
				t.Errorf("BaseConfidence() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestRank_ThresholdAndProjection(t *testing.T) {
	candidates := []Station{
		{Name: "Jazz FM", URL: "http://jazz.example/stream", Favicon: "http://jazz.example/icon.png"},
		{Name: "Talk Radio", URL: "http://talk.example/stream"},
	}

	results := Rank(candidates, "play jazz fm", 30, testIcon)
	if len(results) != 1 {
		t.Fatalf("Rank() returned %d results, want 1", len(results))
	}

	got := results[0]
	want := Result{
		MediaType:       "radio",
		Playback:        "audio",
		Image:           "http://jazz.example/icon.png",
		SkillIcon:       testIcon,
		URI:             "http://jazz.example/stream",
		Title:           "Jazz FM",
		MatchConfidence: 80,
	}
	if got != want {
		t.Errorf("Rank()[0] = %+v, want %+v", got, want)
	}
}

func TestRank_StableOrdering(t *testing.T) {
	candidates := []Station{
		{Name: "First", Tags: "jazz"},
		{Name: "Jazz FM"},
		{Name: "Second", Tags: "jazz"},
		{Name: "Third"},
		{Name: "Fourth", Tags: "jazz"},
	}

	results := Rank(candidates, "play jazz fm", 50, testIcon)

	wantTitles := []string{"Jazz FM", "First", "Second", "Fourth", "Third"}
	if len(results) != len(wantTitles) {
		t.Fatalf("Rank() returned %d results, want %d", len(results), len(wantTitles))
	}
	for i, title := range wantTitles {
		if results[i].Title != title {
			t.Errorf("results[%d].Title = %q, want %q", i, results[i].Title, title)
		}
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	results := Rank(nil, "anything", 100, testIcon)
	if results == nil || len(results) != 0 {
		t.Errorf("Rank(nil) = %v, want empty non-nil slice", results)
	}
}

func TestTruncate_CapKeepsHighestScores(t *testing.T) {
	candidates := make([]Station, 0, 80)
	for i := 0; i < 80; i++ {
		s := Station{Name: fmt.Sprintf("station-%02d", i)}
		if i%2 == 1 {
			s.Tags = "jazz"
		}
		candidates = append(candidates, s)
	}

	results := Truncate(Rank(candidates, "jazz", 50, testIcon), 50)
	if len(results) != 50 {
		t.Fatalf("Truncate() returned %d results, want 50", len(results))
	}

	// 40 tag matches (70) come first, then the first 10 plain ones (50).
	for i, r := range results {
		want := 50
		if i < 40 {
			want = 70
		}
		if r.MatchConfidence != want {
			t.Errorf("results[%d].MatchConfidence = %d, want %d", i, r.MatchConfidence, want)
		}
	}
	if results[40].Title != "station-00" {
		t.Errorf("results[40].Title = %q, want station-00", results[40].Title)
	}
}

func TestTruncate_NoCap(t *testing.T) {
	results := []Result{{Title: "a"}, {Title: "b"}}
	if got := Truncate(results, 0); len(got) != 2 {
		t.Errorf("Truncate(0) returned %d results, want 2", len(got))
	}
	if got := Truncate(results, 5); len(got) != 2 {
		t.Errorf("Truncate(5) returned %d results, want 2", len(got))
	}
}
