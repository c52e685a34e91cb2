package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/gap"
	"github.com/jonathan/skillgap/internal/logging"
	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/types"
)

// DefaultGapLimit is the number of gaps kept when a request sets no limit
const DefaultGapLimit = 15

// GapService recomputes and stores the gap list of a (user, run) pair
type GapService struct {
	store        GapStore
	analyzer     *gap.Analyzer
	defaultLimit int
	logger       *zap.Logger
}

// NewGapService creates a GapService. defaultLimit <= 0 uses DefaultGapLimit.
func NewGapService(store GapStore, analyzer *gap.Analyzer, defaultLimit int, logger *zap.Logger) *GapService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultGapLimit
	}
	return &GapService{
		store:        store,
		analyzer:     analyzer,
		defaultLimit: defaultLimit,
		logger:       logging.OrNop(logger),
	}
}

// Run fetches the run's skill rows, analyzes them, and replaces the stored gaps
func (s *GapService) Run(ctx context.Context, req types.GapAnalysisRequest) (*types.GapAnalysisResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, inputErrorFrom(err)
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	log := s.logger.With(
		zap.String("user_id", req.UserID.String()),
		zap.String("run_id", req.RunID.String()))

	resumeRows, err := s.store.ListSkills(ctx, req.UserID, req.RunID, types.SourceResume)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch resume skills", Err: err}
	}
	marketRows, err := s.store.ListSkills(ctx, req.UserID, req.RunID, types.SourceMarket)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch market skills", Err: err}
	}
	log.Info("fetched skills",
		zap.Int("resume_count", len(resumeRows)),
		zap.Int("market_count", len(marketRows)))

	pre := skills.Preprocess(resumeRows, marketRows)
	log.Info("preprocessed skills", zap.Int("distinct_market_count", len(pre.MarketSkills)))

	result := s.analyzer.Analyze(ctx, pre)
	ordered := gap.Order(result.Gaps, limit)

	summaries := make([]types.GapSummary, 0, len(ordered))
	for _, g := range ordered {
		summaries = append(summaries, types.GapSummary{SkillName: g.SkillName, Priority: g.Priority, Reason: g.Reason})
	}

	if err := s.store.DeleteGaps(ctx, req.UserID, req.RunID); err != nil {
		log.Warn("failed to delete existing gaps", zap.Error(err))
	}

	inserted, err := s.store.InsertGaps(ctx, req.UserID, req.RunID, summaries)
	if err != nil {
		return nil, &PersistenceError{Op: "insert gaps", Err: err}
	}
	log.Info("stored gaps",
		zap.Int("inserted_count", inserted),
		zap.String("strategy", string(result.Strategy)),
		zap.Int("llm_attempts", result.Attempts))

	return &types.GapAnalysisResponse{
		UserID:        req.UserID,
		RunID:         req.RunID,
		InsertedCount: inserted,
		Gaps:          summaries,
	}, nil
}
