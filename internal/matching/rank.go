package matching

import (
	"math"
	"sort"

	"github.com/jonathan/skillgap/internal/types"
)

// ScoreEpsilon is the match score difference below which two courses count as tied
const ScoreEpsilon = 0.01

// MatchAll scores every course and keeps those with at least one matched gap
func (m *Matcher) MatchAll(courses []types.Course, gaps []types.GapSkill) []types.CourseCandidate {
	candidates := make([]types.CourseCandidate, 0)
	for _, course := range courses {
		match := m.Match(course, gaps)
		if match == nil || len(match.MatchedGaps) == 0 {
			continue
		}
		candidates = append(candidates, types.CourseCandidate{Course: course, Match: *match})
	}
	return candidates
}

// Rank orders candidates by match score, treating scores within ScoreEpsilon as
// tied and breaking ties by matched gap count then subject and number. At most
// limit recommendations are returned (limit <= 0 keeps all), ranked from 1.
func Rank(candidates []types.CourseCandidate, limit int) []types.Recommendation {
	ordered := make([]types.CourseCandidate, len(candidates))
	copy(ordered, candidates)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if math.Abs(a.Match.MatchScore-b.Match.MatchScore) > ScoreEpsilon {
			return a.Match.MatchScore > b.Match.MatchScore
		}
		if len(a.Match.MatchedGaps) != len(b.Match.MatchedGaps) {
			return len(a.Match.MatchedGaps) > len(b.Match.MatchedGaps)
		}
		if a.Course.Subject != b.Course.Subject {
			return a.Course.Subject < b.Course.Subject
		}
		return a.Course.Number < b.Course.Number
	})

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	recommendations := make([]types.Recommendation, 0, len(ordered))
	for i, c := range ordered {
		confidence := c.Match.Confidence
		recommendations = append(recommendations, types.Recommendation{
			Rank:        i + 1,
			Course:      c.Course,
			Score:       c.Match.MatchScore,
			MatchedGaps: c.Match.MatchedGaps,
			Explanation: c.Match.Explanation,
			Confidence:  &confidence,
		})
	}
	return recommendations
}
