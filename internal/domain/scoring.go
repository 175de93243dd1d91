package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreNameMatch = 50
	ScoreTagMatch  = 20

	// Candidates below this confidence are dropped
	MinConfidence = 50

	// Base confidence per media type
	BaseRadio = 50
	BaseMusic = 40
	BaseAudio = 30

	// Bonus when the phrase mentions the internet vocabulary
	BaseInternetBonus = 20
)

// Result is the render-ready projection of a matched station.
type Result struct {
	MediaType       string `json:"media_type"`
	Playback        string `json:"playback"`
	Image           string `json:"image"`
	SkillIcon       string `json:"skill_icon"`
	URI             string `json:"uri"`
	Title           string `json:"title"`
	MatchConfidence int    `json:"match_confidence"`
}

// BaseConfidence computes the starting confidence of a search from the
// requested media type and whether the phrase mentions the internet.
func BaseConfidence(mediaType MediaType, internet bool) int {
	base := 0
	switch mediaType {
	case MediaRadio:
		base += BaseRadio
	case MediaMusic:
		base += BaseMusic
	case MediaAudio:
		base += BaseAudio
	case MediaGeneric:
	}
	if internet {
		base += BaseInternetBonus
	}
	return base
}

// Score calculates the confidence of a station against a phrase.
// First matching rule wins: name, then tag, then base. Matching is plain
// substring containment, so an empty name or tag matches any phrase.
func Score(station Station, phrase string, base int) int {
	if strings.Contains(strings.ToLower(phrase), strings.ToLower(station.Name)) {
		return base + ScoreNameMatch
	}
	if matchesTag(station.Tags, phrase) {
		return base + ScoreTagMatch
	}
	return base
}

// matchesTag reports whether any comma-split tag appears in the raw phrase.
// Tags are compared as-is (no trimming, case-sensitive). Only a wholly
// empty field means the station has no tags.
func matchesTag(tags, phrase string) bool {
	if tags == "" {
		return false
	}
	for _, tag := range strings.Split(tags, ",") {
		if strings.Contains(phrase, tag) {
			return true
		}
	}
	return false
}

// Rank scores every candidate and returns the ones reaching MinConfidence,
// sorted by confidence (descending). Equal scores keep their input order.
func Rank(candidates []Station, phrase string, base int, skillIcon string) []Result {
	results := make([]Result, 0, len(candidates))

	for _, station := range candidates {
		confidence := Score(station, phrase, base)
		if confidence < MinConfidence {
			continue
		}
		results = append(results, Result{
			MediaType:       MediaRadio.String(),
			Playback:        PlaybackAudio,
			Image:           station.Favicon,
			SkillIcon:       skillIcon,
			URI:             station.URL,
			Title:           station.Name,
			MatchConfidence: confidence,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchConfidence > results[j].MatchConfidence
	})

	return results
}

// Truncate caps results to max entries, preserving rank order.
// A non-positive max disables the cap.
func Truncate(results []Result, max int) []Result {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
