package gap

import (
	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/stats"
	"github.com/jonathan/skillgap/internal/types"
)

// MissingFromResumeReason is the reason attached to every deterministic gap
const MissingFromResumeReason = "Missing from resume; appears in job listings."

// Deterministic computes gaps without any network dependency. A market skill is a gap
// when its normalized key does not appear among the normalized resume skill names.
//
// Raw importance is the mean of the aggregate's scores, or its frequency when it has
// none. The quintile is taken over the raw importance of every candidate; the priority
// base is always 1 because the skill is wholly absent from the resume.
func Deterministic(pre *types.PreprocessedSkills) []types.GapSkill {
	if pre == nil || len(pre.MarketSkills) == 0 {
		return []types.GapSkill{}
	}

	resumeKeys := make(map[string]struct{}, len(pre.ResumeSkills))
	for _, rs := range pre.ResumeSkills {
		resumeKeys[skills.Key(rs.TrimmedName)] = struct{}{}
	}

	rawValues := make([]float64, 0, len(pre.MarketSkills))
	maxFrequency := 1
	for _, ms := range pre.MarketSkills {
		rawValues = append(rawValues, rawImportance(ms))
		if ms.Frequency > maxFrequency {
			maxFrequency = ms.Frequency
		}
	}

	gaps := make([]types.GapSkill, 0)
	for _, ms := range pre.MarketSkills {
		if _, covered := resumeKeys[skills.Key(ms.DisplayName)]; covered {
			continue
		}

		raw := rawImportance(ms)
		var importance float64
		if len(ms.Scores) > 0 {
			importance = stats.Clamp(raw, 0, 1)
		} else {
			importance = stats.Clamp(float64(ms.Frequency)/float64(maxFrequency), 0, 1)
		}

		quintile := stats.Quantile(rawValues, raw)
		gaps = append(gaps, types.GapSkill{
			SkillName:        skills.Display(ms.DisplayName),
			Priority:         priorityFor(types.CoverageNone, quintile),
			Reason:           skills.TruncateReason(MissingFromResumeReason, skills.DefaultReasonLength),
			MarketImportance: importance,
		})
	}

	return gaps
}

func rawImportance(ms types.MarketSkillAggregate) float64 {
	if len(ms.Scores) > 0 {
		return stats.Mean(ms.Scores)
	}
	return float64(ms.Frequency)
}

// priorityFor maps coverage and quintile to a 1..5 priority. Higher importance
// (a higher quintile) gives a smaller, more urgent number.
func priorityFor(coverage types.CoverageStrength, quintile int) int {
	base := 1
	if coverage == types.CoverageWeak {
		base = 2
	}
	return stats.ClampInt(base+(stats.TopBucket-quintile), 1, 5)
}
