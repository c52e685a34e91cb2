//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// requestValidator reports fields by their JSON names
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GapAnalysisRequest asks for the gap list of a (user, run) pair to be recomputed
type GapAnalysisRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	RunID  uuid.UUID `json:"run_id" validate:"required"`
	Limit  int       `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// GapSummary is the persisted and returned form of a gap skill
type GapSummary struct {
	SkillName string `json:"skill_name"`
	Priority  int    `json:"priority"`
	Reason    string `json:"reason"`
}

// GapAnalysisResponse reports the outcome of a gap analysis run
type GapAnalysisResponse struct {
	UserID        uuid.UUID    `json:"user_id"`
	RunID         uuid.UUID    `json:"run_id"`
	InsertedCount int          `json:"inserted_count"`
	Gaps          []GapSummary `json:"gaps"`
}

// CourseRecommendationRequest asks for course recommendations for a term
type CourseRecommendationRequest struct {
	UserID   uuid.UUID  `json:"user_id" validate:"required"`
	RunID    *uuid.UUID `json:"run_id,omitempty"`
	Year     string     `json:"year" validate:"required,len=4,numeric"`
	Semester string     `json:"semester" validate:"required,oneof=spring summer fall"`
	Limit    int        `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// CourseRecommendationResponse reports the outcome of a recommendation run
type CourseRecommendationResponse struct {
	UserID                 uuid.UUID        `json:"user_id"`
	RunID                  uuid.UUID        `json:"run_id"`
	CoursesFound           int              `json:"courses_found"`
	RecommendationsCreated int              `json:"recommendations_created"`
	Recommendations        []Recommendation `json:"recommendations"`
}

// Validate validates the GapAnalysisRequest using the validator.
func (r *GapAnalysisRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate validates the CourseRecommendationRequest using the validator.
func (r *CourseRecommendationRequest) Validate() error {
	return requestValidator.Struct(r)
}
