package stations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/airwave/internal/domain"
)

// SentinelLanguage must appear in at least one station's language codes for
// a listing to be accepted.
const SentinelLanguage = "en"

// ErrInvalidListing means a mirror answered with a listing that does not
// look like the real directory.
var ErrInvalidListing = errors.New("broken stations listing")

// Validate accepts a listing when at least one station carries the sentinel
// language. Empty listings are rejected.
func Validate(listing []domain.Station) error {
	for _, s := range listing {
		if strings.Contains(s.LanguageCodes, SentinelLanguage) {
			return nil
		}
	}
	return fmt.Errorf("%w: %d stations, none tagged %q", ErrInvalidListing, len(listing), SentinelLanguage)
}
