// Package locale works out which language and country a search asks for.
package locale

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/MrSnakeDoc/airwave/internal/domain"
)

const (
	// MinConfidence is the extraction confidence above which the spoken
	// language overrides the assistant language.
	MinConfidence = 0.9

	DefaultCountry = "US"
	DefaultLang    = "en"
)

// DefaultLanguages are the languages recognised in phrases.
var DefaultLanguages = []string{
	"ar", "bg", "bn", "ca", "cs", "da", "de", "el", "en", "es",
	"et", "eu", "fa", "fi", "fr", "ga", "gl", "he", "hi", "hr",
	"hu", "is", "it", "ja", "ko", "lt", "lv", "nl", "no", "pl",
	"pt", "ro", "ru", "sk", "sl", "sr", "sv", "th", "tr", "uk",
	"ur", "vi", "zh",
}

type entry struct {
	name string
	code string
}

// Extractor finds spoken language names in phrases.
//
// A language is recognised by its English name, its own name, and its
// name in the assistant language, matched as whole words.
type Extractor struct {
	languages []language.Tag

	mu    sync.Mutex
	names map[string][]entry // assistant base language -> names, longest first
}

// NewExtractor builds an extractor over codes, or DefaultLanguages when
// none are given. Codes that do not parse are ignored.
func NewExtractor(codes ...string) *Extractor {
	if len(codes) == 0 {
		codes = DefaultLanguages
	}

	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	return &Extractor{
		languages: tags,
		names:     make(map[string][]entry),
	}
}

// Extract returns the 2-letter code of the language named in phrase and the
// confidence of that match. It returns ("", 0) when no language is named.
// When several names match, the longest one wins.
func (e *Extractor) Extract(phrase, assistantLang string) (string, float64) {
	text := " " + normalize(phrase) + " "
	for _, en := range e.table(Primary(assistantLang)) {
		if strings.Contains(text, " "+en.name+" ") {
			return en.code, 1.0
		}
	}
	return "", 0
}

// Locale resolves the language and country to search stations for.
// The country comes from the assistant configuration, never the phrase.
func (e *Extractor) Locale(phrase, assistantLang, country string) domain.Locale {
	lang := Primary(assistantLang)
	if code, confidence := e.Extract(phrase, assistantLang); code != "" && confidence > MinConfidence {
		lang = code
	}
	if country == "" {
		country = DefaultCountry
	}
	return domain.Locale{Lang: lang, Country: country}
}

// Primary returns the primary subtag of a language tag ("en-us" -> "en").
func Primary(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return DefaultLang
	}
	return lang
}

func (e *Extractor) table(assistant string) []entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.names[assistant]; ok {
		return t
	}

	namers := []display.Namer{display.English.Languages(), display.Self}
	if tag, err := language.Parse(assistant); err == nil {
		if n := display.Languages(tag); n != nil {
			namers = append(namers, n)
		}
	}

	seen := make(map[string]bool)
	var t []entry
	for _, tag := range e.languages {
		base, _ := tag.Base()
		code := base.String()
		for _, n := range namers {
			name := normalize(n.Name(tag))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			t = append(t, entry{name: name, code: code})
		}
	}

	sort.SliceStable(t, func(i, j int) bool {
		return utf8.RuneCountInString(t[i].name) > utf8.RuneCountInString(t[j].name)
	})
	e.names[assistant] = t
	return t
}

// normalize lowercases s and collapses everything but letters into single
// spaces.
func normalize(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	}), " ")
}
