// Package matching scores catalog courses against a gap list and ranks the results.
package matching

import (
	"fmt"
	"strings"

	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/types"
)

// maxPriorityPoints is the most a single gap can earn from its priority (priority 1)
const maxPriorityPoints = 6

// explainedSkills caps how many matched skills the explanation names
const explainedSkills = 3

// Matcher scores courses with a keyword dictionary and a token-overlap fallback
type Matcher struct {
	dict *Dictionary
}

// NewMatcher creates a Matcher. A nil dictionary uses the embedded one.
func NewMatcher(dict *Dictionary) *Matcher {
	if dict == nil {
		dict = DefaultDictionary()
	}
	return &Matcher{dict: dict}
}

// NormalizeText lowercases s, replaces everything but ASCII letters and digits
// with spaces and collapses whitespace.
func NormalizeText(s string) string {
	lowered := strings.ToLower(s)
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

// tokenize splits s into normalized whole words
func tokenize(s string) []string {
	return strings.Fields(NormalizeText(s))
}

// hasWord reports whether word occurs in normalized text as a whole word
func hasWord(text, word string) bool {
	if word == "" || text == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+word+" ")
}

// Match scores course against gaps. It returns nil when no gap matched.
func (m *Matcher) Match(course types.Course, gaps []types.GapSkill) *types.CourseMatch {
	haystack := NormalizeText(course.Title + " " + course.DescriptionText())
	titleHaystack := NormalizeText(course.Title)

	matched := make([]string, 0)
	total := 0
	for _, gap := range gaps {
		ok, score := m.ScoreSkill(gap.SkillName, haystack, titleHaystack)
		if !ok {
			continue
		}
		matched = append(matched, gap.SkillName)
		total += max(1, maxPriorityPoints-gap.Priority) + score
	}

	if len(matched) == 0 {
		return nil
	}

	gapCount := len(gaps)
	maxScore := max(1, gapCount*maxPriorityPoints)

	return &types.CourseMatch{
		MatchScore:  min(1, float64(total)/float64(maxScore)),
		MatchedGaps: matched,
		Explanation: explain(matched, course),
		Confidence:  min(1, 0.4+float64(len(matched))/float64(max(1, gapCount))),
	}
}

// ScoreSkill matches one skill name against prepared haystacks. Dictionary keywords are
// tried first; when none hits, the skill's tokens and synonyms are matched as words.
func (m *Matcher) ScoreSkill(skillName, haystack, titleHaystack string) (bool, int) {
	entry, known := m.dict.Skills[skills.Key(skillName)]

	if known {
		score := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(keyword, " ") {
				switch {
				case strings.Contains(titleHaystack, keyword):
					score += m.dict.Weights.Title
				case strings.Contains(haystack, keyword):
					score += m.dict.Weights.Body
				}
				continue
			}
			switch {
			case hasWord(titleHaystack, keyword):
				score += m.dict.Weights.Title
			case hasWord(haystack, keyword):
				score += m.dict.Weights.Body
			}
		}
		if score > 0 {
			return true, score
		}
	}

	tokens := m.expandTokens(skillName, entry.Synonyms)
	if !matchesTokens(tokens, haystack, titleHaystack) {
		return false, 0
	}
	if len(tokens) >= 2 {
		return true, 2
	}
	return true, 1
}

// expandTokens returns the distinct words of the skill name followed by those of its synonyms
func (m *Matcher) expandTokens(skillName string, synonyms []string) []string {
	words := tokenize(skillName)
	for _, synonym := range synonyms {
		words = append(words, tokenize(synonym)...)
	}

	seen := make(map[string]struct{}, len(words))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}

func matchesTokens(tokens []string, haystack, titleHaystack string) bool {
	switch len(tokens) {
	case 0:
		return false
	case 1:
		return hasWord(haystack, tokens[0]) || hasWord(titleHaystack, tokens[0])
	}

	bodyHits, titleHits := 0, 0
	for _, token := range tokens {
		if hasWord(haystack, token) {
			bodyHits++
		}
		if hasWord(titleHaystack, token) {
			titleHits++
		}
	}
	if bodyHits >= min(2, len(tokens)) {
		return true
	}
	return titleHits >= 1 && bodyHits >= 1
}

func explain(matched []string, course types.Course) string {
	named := matched
	if len(named) > explainedSkills {
		named = named[:explainedSkills]
	}
	return fmt.Sprintf("Builds %s through topics covered in %s %s and related coursework.",
		strings.Join(named, ", "), course.Subject, course.Number)
}
