// Package service runs the gap analysis and course recommendation pipelines over a store,
// the gap analyzer, the subject filter, the catalog and the course matcher.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/skillgap/internal/catalog"
	"github.com/jonathan/skillgap/internal/types"
)

// GapStore is the persistence needed by a gap analysis run
type GapStore interface {
	ListSkills(ctx context.Context, userID, runID uuid.UUID, source types.SkillSource) ([]types.RawSkillObservation, error)
	DeleteGaps(ctx context.Context, userID, runID uuid.UUID) error
	InsertGaps(ctx context.Context, userID, runID uuid.UUID, gaps []types.GapSummary) (int, error)
}

// Store is the persistence needed by both pipelines. Both db.DB and sqlitestore.Store implement it.
type Store interface {
	GapStore
	ListGapSkills(ctx context.Context, userID uuid.UUID) ([]types.GapSummary, error)
	DeleteRecommendations(ctx context.Context, userID uuid.UUID) error
	UpsertCourse(ctx context.Context, term string, course types.Course) (uuid.UUID, error)
	InsertRecommendations(ctx context.Context, userID, runID uuid.UUID, recs []types.Recommendation) (int, error)
}

// CourseFetcher loads the courses of several subjects, isolating failures per subject
type CourseFetcher interface {
	FetchAll(ctx context.Context, year, semester string, subjects []string) *catalog.FetchResult
}
