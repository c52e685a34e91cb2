// Package subjects narrows the catalog search space to the subjects most relevant
// to a gap list before any course listings are fetched.
package subjects

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/skillgap/internal/types"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule maps a subject code to the patterns that make it relevant
type Rule struct {
	Subject  string   `yaml:"subject"`
	Patterns []string `yaml:"patterns"`
}

// RuleSet is the on-disk form of the subject rules
type RuleSet struct {
	Version  int      `yaml:"version"`
	TopN     int      `yaml:"top_n"`
	Defaults []string `yaml:"defaults"`
	Rules    []Rule   `yaml:"rules"`
}

type compiledRule struct {
	subject  string
	patterns []*regexp.Regexp
}

// Filter scores subjects against gap skills
type Filter struct {
	rules    []compiledRule
	topN     int
	defaults []string
}

// Default returns the filter built from the embedded rule set
func Default() *Filter {
	f, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded subject rules are invalid: %v", err))
	}
	return f
}

// Parse builds a filter from YAML rule data
func Parse(data []byte) (*Filter, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse subject rules: %w", err)
	}
	return New(set)
}

// New compiles a rule set. Patterns are matched case-insensitively.
func New(set RuleSet) (*Filter, error) {
	if set.TopN <= 0 {
		return nil, fmt.Errorf("top_n must be positive, got %d", set.TopN)
	}
	if len(set.Defaults) == 0 {
		return nil, fmt.Errorf("at least one default subject is required")
	}

	f := &Filter{topN: set.TopN, defaults: set.Defaults}
	for _, rule := range set.Rules {
		if strings.TrimSpace(rule.Subject) == "" {
			return nil, fmt.Errorf("rule with empty subject")
		}
		cr := compiledRule{subject: strings.ToUpper(strings.TrimSpace(rule.Subject))}
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern for %s: %w", rule.Subject, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		f.rules = append(f.rules, cr)
	}
	return f, nil
}

// Select returns the subject codes relevant to gaps, highest score first, at most
// topN of them. Each matching rule adds max(1, 6-priority) to its subject. When no
// rule matches, the default subjects are returned.
func (f *Filter) Select(gaps []types.GapSkill) []string {
	scores := make(map[string]int)
	var order []string

	for _, gap := range gaps {
		text := strings.ToLower(gap.SkillName)
		for _, rule := range f.rules {
			if !rule.matches(text) {
				continue
			}
			if _, seen := scores[rule.subject]; !seen {
				order = append(order, rule.subject)
			}
			scores[rule.subject] += max(1, 6-gap.Priority)
		}
	}

	if len(order) == 0 {
		return append([]string(nil), f.defaults...)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if len(order) > f.topN {
		order = order[:f.topN]
	}
	return order
}

// Defaults returns the fallback subject list
func (f *Filter) Defaults() []string {
	return append([]string(nil), f.defaults...)
}

func (r compiledRule) matches(text string) bool {
	for _, re := range r.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
