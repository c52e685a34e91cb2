// Package types provides type definitions for structured data used throughout the skill-gap system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillSource identifies where a skill observation came from
type SkillSource string

// Skill sources
const (
	SourceResume SkillSource = "resume"
	SourceMarket SkillSource = "market"
)

// ExpertiseLevel is the self-reported or extracted proficiency attached to a resume skill
type ExpertiseLevel string

// Expertise levels recognized by the resume parser
const (
	ExpertiseBeginner     ExpertiseLevel = "beginner"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseAdvanced     ExpertiseLevel = "advanced"
	ExpertiseExpert       ExpertiseLevel = "expert"
)

// RawSkillObservation is a single skill row as stored by the resume parser or the market agent.
// Rows are immutable input; Score, Evidence and ExpertiseLevel are optional.
type RawSkillObservation struct {
	SkillName      string          `json:"skill_name"`
	Score          *float64        `json:"score,omitempty"`
	Evidence       *string         `json:"evidence,omitempty"`
	ExpertiseLevel *ExpertiseLevel `json:"expertise_level,omitempty"`
	Source         SkillSource     `json:"source"`
}

// ResumeSkill is a resume observation carried verbatim into the LLM context (one per row, no dedup)
type ResumeSkill struct {
	RawName        string          `json:"skill_name_raw"`
	TrimmedName    string          `json:"skill_name_trimmed"`
	Score          *float64        `json:"score"`
	Evidence       *string         `json:"evidence"`
	ExpertiseLevel *ExpertiseLevel `json:"expertise_level"`
}

// MarketSkillAggregate is the deduplicated view of a skill across job postings.
// Frequency counts the raw rows that collapsed to the same normalized key.
type MarketSkillAggregate struct {
	DisplayName     string    `json:"market_skill_raw"`
	Frequency       int       `json:"frequency"`
	Scores          []float64 `json:"scores"`
	EvidenceSamples []string  `json:"evidence_samples"`
}

// GapSkill is a skill the learner lacks or under-covers, with urgency priority (1 = most urgent).
type GapSkill struct {
	SkillName        string  `json:"skill_name"`
	Priority         int     `json:"priority"`
	Reason           string  `json:"reason"`
	MarketImportance float64 `json:"market_importance"`
}

// PreprocessedSkills is the output of the skill preprocessor
type PreprocessedSkills struct {
	ResumeSkills []ResumeSkill
	MarketSkills []MarketSkillAggregate
	// MarketSkillInputSet holds every aggregate display name, used to check LLM output membership
	MarketSkillInputSet map[string]struct{}
}
