package skills

import (
	"math"

	"github.com/jonathan/skillgap/internal/types"
)

// maxEvidenceSamples caps the evidence snippets kept per market aggregate
const maxEvidenceSamples = 3

// Preprocess turns raw resume and market rows into resume skills and market aggregates.
//
// Resume rows map one-to-one (trimmed only). Market rows with an empty trimmed name are
// skipped; the rest are grouped by Key, counting frequency, collecting every finite score
// in [0,1] and up to three non-empty evidence samples in first-seen order. Aggregates keep
// the first-seen order of their keys so output is deterministic.
func Preprocess(resumeRows, marketRows []types.RawSkillObservation) *types.PreprocessedSkills {
	resumeSkills := make([]types.ResumeSkill, 0, len(resumeRows))
	for _, row := range resumeRows {
		resumeSkills = append(resumeSkills, types.ResumeSkill{
			RawName:        row.SkillName,
			TrimmedName:    Trim(row.SkillName),
			Score:          row.Score,
			Evidence:       row.Evidence,
			ExpertiseLevel: row.ExpertiseLevel,
		})
	}

	index := make(map[string]int)
	aggregates := make([]types.MarketSkillAggregate, 0)

	for _, row := range marketRows {
		trimmed := Trim(row.SkillName)
		if trimmed == "" {
			continue
		}
		key := Key(trimmed)

		pos, exists := index[key]
		if !exists {
			aggregates = append(aggregates, types.MarketSkillAggregate{
				DisplayName:     trimmed,
				Scores:          []float64{},
				EvidenceSamples: []string{},
			})
			pos = len(aggregates) - 1
			index[key] = pos
		}

		agg := &aggregates[pos]
		agg.Frequency++
		addScore(agg, row.Score)
		addEvidence(agg, row.Evidence)
	}

	inputSet := make(map[string]struct{}, len(aggregates))
	for _, agg := range aggregates {
		inputSet[agg.DisplayName] = struct{}{}
	}

	return &types.PreprocessedSkills{
		ResumeSkills:        resumeSkills,
		MarketSkills:        aggregates,
		MarketSkillInputSet: inputSet,
	}
}

func addScore(agg *types.MarketSkillAggregate, score *float64) {
	if score == nil {
		return
	}
	v := *score
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return
	}
	agg.Scores = append(agg.Scores, v)
}

func addEvidence(agg *types.MarketSkillAggregate, evidence *string) {
	if evidence == nil || *evidence == "" {
		return
	}
	if len(agg.EvidenceSamples) >= maxEvidenceSamples {
		return
	}
	agg.EvidenceSamples = append(agg.EvidenceSamples, *evidence)
}
