// Package vocab holds the per-language keyword lists of the skill.
package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultVocab []byte

// Internet is the vocabulary that marks a request for an internet stream.
const Internet = "internet"

// Config maps a language to its vocabularies: lang -> vocabulary -> terms.
type Config map[string]map[string][]string

// Loader reads a vocabulary file, falling back to the embedded defaults.
type Loader struct {
	filePath string
}

// NewLoader creates a loader. An empty path selects the embedded defaults.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the vocabulary file.
func (l *Loader) Load() (Config, error) {
	data := defaultVocab
	if l.filePath != "" {
		b, err := os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
		}
		data = b
	}

	return Parse(data)
}

// Parse decodes vocabulary YAML. Language keys are lowercased and empty
// terms dropped.
func Parse(data []byte) (Config, error) {
	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary yaml: %w", err)
	}

	cfg := make(Config, len(raw))
	for lang, vocs := range raw {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		if cfg[lang] == nil {
			cfg[lang] = make(map[string][]string)
		}
		for name, terms := range vocs {
			for _, term := range terms {
				term = strings.TrimSpace(term)
				if term != "" {
					cfg[lang][name] = append(cfg[lang][name], term)
				}
			}
		}
	}

	if len(cfg) == 0 {
		return nil, fmt.Errorf("no vocabulary found")
	}
	return cfg, nil
}
