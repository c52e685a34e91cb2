package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/catalog"
	"github.com/jonathan/skillgap/internal/logging"
	"github.com/jonathan/skillgap/internal/matching"
	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/subjects"
	"github.com/jonathan/skillgap/internal/types"
)

// DefaultRecommendationLimit is the number of recommendations kept when a request sets no limit
const DefaultRecommendationLimit = 20

// minStoredGaps is the number of stored gaps below which a gap analysis runs first
const minStoredGaps = 3

// RecommendService ranks catalog courses against a user's gaps and stores the result
type RecommendService struct {
	store        Store
	gaps         *GapService
	filter       *subjects.Filter
	fetcher      CourseFetcher
	matcher      *matching.Matcher
	defaultLimit int
	logger       *zap.Logger
	newRunID     func() uuid.UUID
}

// RecommendOption configures a RecommendService
type RecommendOption func(*RecommendService)

// WithSubjectFilter replaces the embedded subject rules
func WithSubjectFilter(f *subjects.Filter) RecommendOption {
	return func(s *RecommendService) { s.filter = f }
}

// WithMatcher replaces the matcher built from the embedded keyword dictionary
func WithMatcher(m *matching.Matcher) RecommendOption {
	return func(s *RecommendService) { s.matcher = m }
}

// WithRecommendationLimit sets the limit used when a request sets none
func WithRecommendationLimit(limit int) RecommendOption {
	return func(s *RecommendService) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithRunIDGenerator sets how missing run ids are generated
func WithRunIDGenerator(fn func() uuid.UUID) RecommendOption {
	return func(s *RecommendService) { s.newRunID = fn }
}

// NewRecommendService creates a RecommendService
func NewRecommendService(store Store, gaps *GapService, fetcher CourseFetcher, logger *zap.Logger, opts ...RecommendOption) *RecommendService {
	s := &RecommendService{
		store:        store,
		gaps:         gaps,
		filter:       subjects.Default(),
		fetcher:      fetcher,
		matcher:      matching.NewMatcher(matching.DefaultDictionary()),
		defaultLimit: DefaultRecommendationLimit,
		logger:       logging.OrNop(logger),
		newRunID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run recommends courses for the requested term
func (s *RecommendService) Run(ctx context.Context, req types.CourseRecommendationRequest) (*types.CourseRecommendationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, inputErrorFrom(err)
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	runID := s.newRunID()
	if req.RunID != nil {
		runID = *req.RunID
	}

	log := s.logger.With(
		zap.String("user_id", req.UserID.String()),
		zap.String("run_id", runID.String()),
		zap.String("year", req.Year),
		zap.String("semester", req.Semester))

	response := &types.CourseRecommendationResponse{
		UserID:          req.UserID,
		RunID:           runID,
		Recommendations: []types.Recommendation{},
	}

	stored, err := s.loadGaps(ctx, log, req.UserID, runID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		log.Info("no gap skills, nothing to recommend")
		return response, nil
	}

	gaps := make([]types.GapSkill, 0, len(stored))
	for _, g := range stored {
		gaps = append(gaps, types.GapSkill{SkillName: g.SkillName, Priority: g.Priority, Reason: g.Reason})
	}

	subjectCodes := s.filter.Select(gaps)
	log.Info("selected subjects", zap.Strings("subjects", subjectCodes))

	fetched := s.fetcher.FetchAll(ctx, req.Year, req.Semester, subjectCodes)
	if len(subjectCodes) > 0 && len(fetched.Failed) == len(subjectCodes) {
		return nil, &UpstreamError{Op: "fetch courses", Err: errors.New("every subject failed to load")}
	}
	response.CoursesFound = len(fetched.Courses)
	log.Info("fetched courses",
		zap.Int("courses_found", len(fetched.Courses)),
		zap.Strings("failed_subjects", fetched.Failed))

	recs := matching.Rank(s.matcher.MatchAll(fetched.Courses, gaps), limit)

	if err := s.store.DeleteRecommendations(ctx, req.UserID); err != nil {
		log.Warn("failed to delete existing recommendations", zap.Error(err))
	}

	term := catalog.Term{Year: req.Year, Semester: req.Semester}.String()
	for i := range recs {
		id, err := s.store.UpsertCourse(ctx, term, recs[i].Course)
		if err != nil {
			return nil, &PersistenceError{Op: "upsert course", Err: err}
		}
		recs[i].CourseID = &id
	}

	created, err := s.store.InsertRecommendations(ctx, req.UserID, runID, recs)
	if err != nil {
		return nil, &PersistenceError{Op: "insert recommendations", Err: err}
	}
	log.Info("stored recommendations", zap.Int("recommendations_created", created))

	response.RecommendationsCreated = created
	response.Recommendations = recs
	return response, nil
}

// loadGaps returns the user's distinct stored gaps, running a gap analysis first when
// fewer than minStoredGaps are stored
func (s *RecommendService) loadGaps(ctx context.Context, log *zap.Logger, userID, runID uuid.UUID) ([]types.GapSummary, error) {
	stored, err := s.store.ListGapSkills(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch gap skills", Err: err}
	}
	stored = distinctGaps(stored)
	if len(stored) >= minStoredGaps || s.gaps == nil {
		return stored, nil
	}

	log.Info("too few stored gaps, running gap analysis", zap.Int("stored_count", len(stored)))
	if _, err := s.gaps.Run(ctx, types.GapAnalysisRequest{UserID: userID, RunID: runID, Limit: DefaultGapLimit}); err != nil {
		return nil, err
	}

	stored, err = s.store.ListGapSkills(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch gap skills", Err: err}
	}
	return distinctGaps(stored), nil
}

// distinctGaps keeps the first gap per normalized skill name. Stored gaps span every
// run of the user and arrive in priority order, so the most urgent entry wins.
func distinctGaps(stored []types.GapSummary) []types.GapSummary {
	seen := make(map[string]struct{}, len(stored))
	out := make([]types.GapSummary, 0, len(stored))
	for _, g := range stored {
		key := skills.Key(g.SkillName)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}
