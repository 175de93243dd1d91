package domain

// Station represents one radio station as returned by the directory API.
//
// Stations are immutable once fetched: the cache hands the same records
// to every search request and nothing edits them locally.
type Station struct {
	// ─────────────────────────────
	// Playback
	// ─────────────────────────────

	// Name is the display name of the station.
	// Example: Jazz FM
	Name string `json:"name"`

	// URL is the stream URI handed to the player.
	URL string `json:"url"`

	// Favicon is the station image URI (optional).
	Favicon string `json:"favicon"`

	// ─────────────────────────────
	// Matching metadata
	// ─────────────────────────────

	// Tags is a comma-separated free-text list (optional).
	// Example: jazz,smooth jazz,news
	Tags string `json:"tags"`

	// LanguageCodes is a comma-separated list of ISO language codes.
	// Example: en,fr
	LanguageCodes string `json:"languagecodes"`

	// CountryCode is the ISO 3166-1 alpha-2 country code.
	// Example: US
	CountryCode string `json:"countrycode"`
}

// Locale is the {language, country} pair used to narrow a search.
// It is derived per request and never cached.
type Locale struct {
	Lang    string // 2-letter language code, ex: "en"
	Country string // 2-letter country code, ex: "US"
}
