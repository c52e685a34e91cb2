package matching

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/skillgap/internal/skills"
)

//go:embed keywords.yaml
var defaultDictionary []byte

// Weights are the points a dictionary keyword earns by where it is found
type Weights struct {
	Title int `yaml:"title"`
	Body  int `yaml:"body"`
}

// Entry is the dictionary data for one normalized skill name
type Entry struct {
	Keywords []string `yaml:"keywords"`
	Synonyms []string `yaml:"synonyms"`
}

// Dictionary is the versioned keyword and synonym table
type Dictionary struct {
	Version int              `yaml:"version"`
	Weights Weights          `yaml:"weights"`
	Skills  map[string]Entry `yaml:"skills"`
}

// ParseDictionary decodes a YAML dictionary. Skill keys are normalized and keywords
// are reduced to matching text so lookups and comparisons agree with the haystacks.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse keyword dictionary: %w", err)
	}
	if dict.Version < 1 {
		return nil, fmt.Errorf("keyword dictionary version must be set")
	}
	if dict.Weights.Title <= 0 || dict.Weights.Body <= 0 {
		return nil, fmt.Errorf("keyword weights must be positive")
	}

	normalized := make(map[string]Entry, len(dict.Skills))
	for name, entry := range dict.Skills {
		key := skills.Key(name)
		if key == "" {
			return nil, fmt.Errorf("keyword dictionary has an empty skill name")
		}
		var keywords []string
		for _, kw := range entry.Keywords {
			if text := NormalizeText(kw); text != "" {
				keywords = append(keywords, text)
			}
		}
		normalized[key] = Entry{Keywords: keywords, Synonyms: entry.Synonyms}
	}
	dict.Skills = normalized

	return &dict, nil
}

// DefaultDictionary returns the embedded dictionary
func DefaultDictionary() *Dictionary {
	dict, err := ParseDictionary(defaultDictionary)
	if err != nil {
		panic(fmt.Sprintf("embedded keyword dictionary is invalid: %v", err))
	}
	return dict
}
