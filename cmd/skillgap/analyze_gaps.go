package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/gap"
	"github.com/jonathan/skillgap/internal/schemas"
	"github.com/jonathan/skillgap/internal/service"
	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/types"
	schemafiles "github.com/jonathan/skillgap/schemas"
)

var analyzeGapsCmd = &cobra.Command{
	Use:   "analyze-gaps",
	Short: "Compute prioritized skill gaps",
	Long: `Compute prioritized skill gaps from resume and market skill rows.

With --skills the rows are read from a JSON file (an array of {skill_name, source, score,
evidence, expertise_level}) and the gaps are written as JSON without touching a database.
With --user and --run the rows are read from the configured store and the gaps replace
the ones stored for the run.`,
	RunE: runAnalyzeGaps,
}

var (
	analyzeSkillsPath string
	analyzeOutput     string
	analyzeLimit      int
	analyzeUserID     string
	analyzeRunID      string
	analyzeNoAI       bool
)

func init() {
	analyzeGapsCmd.Flags().StringVarP(&analyzeSkillsPath, "skills", "s", "", "Path to skill rows JSON file (offline mode)")
	analyzeGapsCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output gaps JSON file (default stdout)")
	analyzeGapsCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "Maximum number of gaps (1-100, default from config)")
	analyzeGapsCmd.Flags().StringVar(&analyzeUserID, "user", "", "User ID (store mode)")
	analyzeGapsCmd.Flags().StringVar(&analyzeRunID, "run", "", "Run ID (store mode)")
	analyzeGapsCmd.Flags().BoolVar(&analyzeNoAI, "no-ai", false, "Skip the LLM and use deterministic analysis")

	analyzeGapsCmd.MarkFlagsMutuallyExclusive("skills", "user")
	analyzeGapsCmd.MarkFlagsRequiredTogether("user", "run")

	rootCmd.AddCommand(analyzeGapsCmd)
}

func runAnalyzeGaps(cmd *cobra.Command, _ []string) error {
	if analyzeSkillsPath == "" && analyzeUserID == "" {
		return fmt.Errorf("either --skills or --user and --run is required")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	limit := analyzeLimit
	if limit == 0 {
		limit = cfg.GapLimit
	}
	if limit < 1 || limit > 100 {
		return fmt.Errorf("--limit must be between 1 and 100")
	}

	analyzer := gap.NewAnalyzer(nil, logger)
	if !analyzeNoAI {
		client, err := newLLMClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if client != nil {
			defer func() { _ = client.Close() }()
			analyzer = gap.NewAnalyzer(client, logger)
		}
	}

	if analyzeSkillsPath != "" {
		var rows []types.RawSkillObservation
		if err := readJSONFile(analyzeSkillsPath, &rows); err != nil {
			return err
		}
		gaps, err := analyzeRows(ctx, analyzer, rows, limit, logger)
		if err != nil {
			return err
		}
		return writeJSON(analyzeOutput, gaps)
	}

	userID, err := uuid.Parse(analyzeUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	runID, err := uuid.Parse(analyzeRunID)
	if err != nil {
		return fmt.Errorf("invalid --run: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewGapService(store, analyzer, cfg.GapLimit, logger)
	resp, err := svc.Run(ctx, types.GapAnalysisRequest{UserID: userID, RunID: runID, Limit: limit})
	if err != nil {
		return err
	}
	return writeJSON(analyzeOutput, resp)
}

// analyzeRows splits rows by source, analyzes them and returns the ordered gaps.
// The result is checked against the gap skills schema before it is returned.
func analyzeRows(ctx context.Context, analyzer *gap.Analyzer, rows []types.RawSkillObservation, limit int, logger *zap.Logger) ([]types.GapSkill, error) {
	var resumeRows, marketRows []types.RawSkillObservation
	for i, row := range rows {
		switch row.Source {
		case types.SourceResume:
			resumeRows = append(resumeRows, row)
		case types.SourceMarket:
			marketRows = append(marketRows, row)
		default:
			return nil, fmt.Errorf("row %d (%q): source must be %q or %q", i, row.SkillName, types.SourceResume, types.SourceMarket)
		}
	}

	pre := skills.Preprocess(resumeRows, marketRows)
	result := analyzer.Analyze(ctx, pre)
	gaps := gap.Order(result.Gaps, limit)
	logger.Info("gap analysis complete",
		zap.Int("resume_count", len(resumeRows)),
		zap.Int("distinct_market_count", len(pre.MarketSkills)),
		zap.Int("gap_count", len(gaps)),
		zap.String("strategy", string(result.Strategy)))

	document, err := json.Marshal(gaps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gaps: %w", err)
	}
	if err := schemas.ValidateDocument(schemafiles.GapSkills, document); err != nil {
		return nil, fmt.Errorf("gap output failed schema validation: %w", err)
	}
	return gaps, nil
}
