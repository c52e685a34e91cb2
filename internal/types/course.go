//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/google/uuid"

// Course is a catalog course. It is read-only to the matching engine.
type Course struct {
	Subject     string   `json:"subject"`
	Number      string   `json:"number"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Credits     *float64 `json:"credits,omitempty"`
	URL         string   `json:"url"`
}

// Key returns the subject-number identity of the course (e.g. "CS-411")
func (c Course) Key() string {
	return c.Subject + "-" + c.Number
}

// DescriptionText returns the description or an empty string
func (c Course) DescriptionText() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

// CourseMatch is the result of scoring one course against a gap list
type CourseMatch struct {
	MatchScore  float64  `json:"match_score"`
	MatchedGaps []string `json:"matched_gaps"`
	Explanation string   `json:"explanation"`
	Confidence  float64  `json:"confidence"`
}

// CourseCandidate pairs a course with its match before ranking
type CourseCandidate struct {
	Course Course
	Match  CourseMatch
}

// Recommendation is a ranked course recommendation
type Recommendation struct {
	Rank        int        `json:"rank"`
	CourseID    *uuid.UUID `json:"course_id,omitempty"`
	Course      Course     `json:"course"`
	Score       float64    `json:"score"`
	MatchedGaps []string   `json:"matched_gaps"`
	Explanation string     `json:"explanation"`
	Confidence  *float64   `json:"confidence,omitempty"`
}

// Subject is a catalog subject (department) code with its display name
type Subject struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
