// Package gap computes prioritized skill gaps from preprocessed resume and market skills.
//
// The Analyzer first asks the LLM to canonicalize the market skills against the resume
// and validates the answer. One strict retry is allowed; after that the deterministic
// strategy takes over. Analyze never returns an error.
package gap

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/llm"
	"github.com/jonathan/skillgap/internal/logging"
	"github.com/jonathan/skillgap/internal/types"
)

// Strategy names the strategy that produced a gap list
type Strategy string

// Strategies
const (
	StrategyAI            Strategy = "ai"
	StrategyDeterministic Strategy = "deterministic"
)

// Stages of the AI attempt, used in logs and ValidationError
const (
	StageInitial = "initial"
	StageRetry   = "retry"
)

type state int

const (
	stateAttemptAI state = iota
	stateValidateAI
	stateRetryAI
	stateValidateRetry
	stateAccept
	stateFallback
	stateDone
)

// Result is the outcome of an analysis
type Result struct {
	Gaps     []types.GapSkill
	Strategy Strategy
	// Attempts counts LLM calls made (0, 1 or 2)
	Attempts int
}

// Analyzer runs the gap analysis state machine
type Analyzer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil client disables the AI strategy.
func NewAnalyzer(client llm.Client, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		tier:   llm.TierStandard,
		logger: logging.OrNop(logger),
	}
}

// Analyze computes the gap list for the preprocessed skills. The returned gaps are not
// yet ordered; pass them through Order.
func (a *Analyzer) Analyze(ctx context.Context, pre *types.PreprocessedSkills) *Result {
	if pre == nil || len(pre.MarketSkills) == 0 {
		return &Result{Gaps: []types.GapSkill{}, Strategy: StrategyDeterministic}
	}

	result := &Result{}
	current := stateAttemptAI
	if a.client == nil {
		current = stateFallback
	}

	var (
		response  string
		canonical *types.CanonicalMarket
		lastErr   error
	)

	for current != stateDone {
		switch current {
		case stateAttemptAI, stateRetryAI:
			strict := current == stateRetryAI
			stage := StageInitial
			next := stateValidateAI
			priorError := ""
			if strict {
				stage = StageRetry
				next = stateValidateRetry
				priorError = lastErr.Error()
			}

			prompt, err := BuildPrompt(pre, strict, priorError)
			if err != nil {
				a.logger.Error("failed to build canonicalization prompt", zap.String("stage", stage), zap.Error(err))
				lastErr = err
				current = stateFallback
				continue
			}

			result.Attempts++
			response, err = a.client.GenerateJSON(ctx, prompt, a.tier)
			if err != nil {
				a.logger.Warn("LLM call failed", zap.String("stage", stage), zap.Error(err))
				lastErr = err
				current = stateFallback
				continue
			}
			current = next

		case stateValidateAI, stateValidateRetry:
			stage := StageInitial
			onFailure := stateRetryAI
			if current == stateValidateRetry {
				stage = StageRetry
				onFailure = stateFallback
			}

			output, err := ValidateOutput(stage, response, pre)
			if err != nil {
				a.logger.Warn("LLM output validation failed",
					zap.String("stage", stage),
					zap.Error(err),
					zap.String("excerpt", logging.Truncate(response, 200)))
				lastErr = err
				current = onFailure
				continue
			}
			a.logger.Info("LLM output validated", zap.String("stage", stage))
			canonical = output
			current = stateAccept

		case stateAccept:
			result.Gaps = GapsFromCanonical(canonical)
			result.Strategy = StrategyAI
			current = stateDone

		case stateFallback:
			if lastErr != nil {
				a.logger.Error("AI gap analysis failed, using deterministic fallback",
					zap.String("status", "fallback"),
					zap.Error(lastErr))
			}
			result.Gaps = Deterministic(pre)
			result.Strategy = StrategyDeterministic
			current = stateDone
		}
	}

	return result
}
