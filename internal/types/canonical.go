//nolint:revive // types is a standard Go package name pattern
package types

// CoverageStrength describes how well the resume covers a market skill
type CoverageStrength string

// Coverage strengths, strongest first
const (
	CoverageStrong   CoverageStrength = "strong"
	CoverageModerate CoverageStrength = "moderate"
	CoverageWeak     CoverageStrength = "weak"
	CoverageNone     CoverageStrength = "none"
)

// IsGap reports whether the coverage strength marks the skill as a gap
func (c CoverageStrength) IsGap() bool {
	return c == CoverageWeak || c == CoverageNone
}

// CanonicalizationRequest is the input payload sent to the LLM canonicalization call
type CanonicalizationRequest struct {
	ResumeSkills []ResumeSkill          `json:"resume_skills"`
	MarketSkills []MarketSkillAggregate `json:"market_skills"`
}

// CanonicalMarket is the response schema of the LLM canonicalization call
type CanonicalMarket struct {
	CanonicalMarket []CanonicalMarketItem `json:"canonical_market"`
}

// CanonicalMarketItem is one market skill as judged by the LLM
type CanonicalMarketItem struct {
	MarketSkillRaw        string           `json:"market_skill_raw"`
	MarketSkillCanonical  string           `json:"market_skill_canonical"`
	MarketGroup           *string          `json:"market_group"`
	MarketImportance      float64          `json:"market_importance"`
	CoveredByResume       bool             `json:"covered_by_resume"`
	MatchedResumeSkillRaw *string          `json:"matched_resume_skill_raw"`
	CoverageStrength      CoverageStrength `json:"coverage_strength"`
	GapReason             string           `json:"gap_reason"`
}
