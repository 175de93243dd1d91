package vocab

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher tells whether a phrase uses a vocabulary of a given language.
type Matcher struct {
	cfg Config

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp // "lang/voc" -> compiled alternation
}

// NewMatcher creates a matcher over cfg.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{
		cfg:      cfg,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Match reports whether phrase contains any term of voc, as whole words and
// case-insensitively. A regional lang such as "en-us" falls back to "en".
// Unknown languages or vocabularies never match.
func (m *Matcher) Match(voc, phrase, lang string) bool {
	re := m.pattern(voc, lang)
	return re != nil && re.MatchString(phrase)
}

// Languages returns how many languages are loaded.
func (m *Matcher) Languages() int {
	return len(m.cfg)
}

func (m *Matcher) pattern(voc, lang string) *regexp.Regexp {
	lang = strings.ToLower(lang)
	terms, ok := m.cfg[lang][voc]
	if !ok {
		if i := strings.IndexAny(lang, "-_"); i >= 0 {
			lang = lang[:i]
			terms = m.cfg[lang][voc]
		}
	}
	if len(terms) == 0 {
		return nil
	}

	key := lang + "/" + voc
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.patterns[key]; ok {
		return re
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	re := regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(?:` + strings.Join(quoted, "|") + `)(?:$|[^\pL\pN])`)
	m.patterns[key] = re
	return re
}
