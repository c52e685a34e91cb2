package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/catalog"
	"github.com/jonathan/skillgap/internal/gap"
	"github.com/jonathan/skillgap/internal/matching"
	"github.com/jonathan/skillgap/internal/schemas"
	"github.com/jonathan/skillgap/internal/service"
	"github.com/jonathan/skillgap/internal/subjects"
	"github.com/jonathan/skillgap/internal/types"
	schemafiles "github.com/jonathan/skillgap/schemas"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend catalog courses for skill gaps",
	Long: `Rank catalog courses by how well they cover a set of skill gaps.

With --gaps the gaps are read from a JSON file (the output of analyze-gaps) and courses
come from --courses or the live catalog; nothing is stored. With --user the gaps are read
from the configured store and the recommendations replace the stored ones.`,
	RunE: runRecommend,
}

var (
	recommendGapsPath    string
	recommendCoursesPath string
	recommendYear        string
	recommendSemester    string
	recommendTerm        string
	recommendLimit       int
	recommendOutput      string
	recommendEnrich      bool
	recommendUserID      string
	recommendRunID       string
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendGapsPath, "gaps", "g", "", "Path to gaps JSON file (offline mode)")
	recommendCmd.Flags().StringVarP(&recommendCoursesPath, "courses", "c", "", "Path to courses JSON file instead of the live catalog")
	recommendCmd.Flags().StringVar(&recommendYear, "year", "", "Catalog year, e.g. 2025")
	recommendCmd.Flags().StringVar(&recommendSemester, "semester", "", "Catalog semester: spring, summer or fall")
	recommendCmd.Flags().StringVar(&recommendTerm, "term", "", `Free-form term such as "Fall 2025" (instead of --year and --semester)`)
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "Maximum number of recommendations (1-50, default from config)")
	recommendCmd.Flags().StringVarP(&recommendOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	recommendCmd.Flags().BoolVar(&recommendEnrich, "enrich", false, "Fetch full course records for courses listed without a description")
	recommendCmd.Flags().StringVar(&recommendUserID, "user", "", "User ID (store mode)")
	recommendCmd.Flags().StringVar(&recommendRunID, "run", "", "Run ID (store mode, generated when omitted)")

	recommendCmd.MarkFlagsMutuallyExclusive("gaps", "user")
	recommendCmd.MarkFlagsMutuallyExclusive("term", "year")
	recommendCmd.MarkFlagsMutuallyExclusive("term", "semester")

	rootCmd.AddCommand(recommendCmd)
}

// resolveTerm reads the catalog term from --term or from --year and --semester
func resolveTerm(term, year, semester string) (catalog.Term, error) {
	if term != "" {
		return catalog.ParseTerm(term)
	}
	if year == "" || semester == "" {
		return catalog.Term{}, fmt.Errorf("--term or both --year and --semester are required")
	}
	parsed, err := catalog.ParseTerm(year + " " + semester)
	if err != nil {
		return catalog.Term{}, err
	}
	if parsed.Year != strings.TrimSpace(year) {
		return catalog.Term{}, fmt.Errorf("invalid --year %q", year)
	}
	return parsed, nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if recommendGapsPath == "" && recommendUserID == "" {
		return fmt.Errorf("either --gaps or --user is required")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	term, err := resolveTerm(recommendTerm, recommendYear, recommendSemester)
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	limit := recommendLimit
	if limit == 0 {
		limit = cfg.RecommendationLimit
	}
	if limit < 1 || limit > 50 {
		return fmt.Errorf("--limit must be between 1 and 50")
	}

	catalogClient, closeCatalog, err := newCatalogClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	if recommendGapsPath != "" {
		if err := schemas.ValidateFile(schemafiles.GapSkills, recommendGapsPath); err != nil {
			return fmt.Errorf("gaps file failed schema validation: %w", err)
		}
		var gaps []types.GapSkill
		if err := readJSONFile(recommendGapsPath, &gaps); err != nil {
			return err
		}

		var courses []types.Course
		if recommendCoursesPath != "" {
			if err := readJSONFile(recommendCoursesPath, &courses); err != nil {
				return err
			}
		} else {
			codes := subjects.Default().Select(gaps)
			fetched := catalog.NewFetcher(catalogClient, cfg.CatalogWorkers, logger).FetchAll(ctx, term.Year, term.Semester, codes)
			courses = fetched.Courses
			if recommendEnrich {
				enrichDescriptions(ctx, catalogClient, term, courses, logger)
			}
		}

		recs, err := recommendOffline(gaps, courses, limit)
		if err != nil {
			return err
		}
		logger.Info("recommendations ranked",
			zap.String("term", term.String()),
			zap.Int("courses_found", len(courses)),
			zap.Int("recommendations", len(recs)))
		return writeJSON(recommendOutput, recs)
	}

	userID, err := uuid.Parse(recommendUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	req := types.CourseRecommendationRequest{UserID: userID, Year: term.Year, Semester: term.Semester, Limit: limit}
	if recommendRunID != "" {
		runID, err := uuid.Parse(recommendRunID)
		if err != nil {
			return fmt.Errorf("invalid --run: %w", err)
		}
		req.RunID = &runID
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	gapService := service.NewGapService(store, gap.NewAnalyzer(client, logger), cfg.GapLimit, logger)
	svc := service.NewRecommendService(store, gapService,
		catalog.NewFetcher(catalogClient, cfg.CatalogWorkers, logger), logger,
		service.WithRecommendationLimit(cfg.RecommendationLimit))
	resp, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(recommendOutput, resp)
}

// recommendOffline matches and ranks courses against gaps. The ranked list is
// checked against the recommendations schema before it is returned.
func recommendOffline(gaps []types.GapSkill, courses []types.Course, limit int) ([]types.Recommendation, error) {
	matcher := matching.NewMatcher(matching.DefaultDictionary())
	recs := matching.Rank(matcher.MatchAll(courses, gaps), limit)

	document, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if err := schemas.ValidateDocument(schemafiles.Recommendations, document); err != nil {
		return nil, fmt.Errorf("recommendation output failed schema validation: %w", err)
	}
	return recs, nil
}

// courseDetailer fetches a single course record
type courseDetailer interface {
	CourseDetail(ctx context.Context, year, semester, subject, number string) (*types.Course, error)
}

// enrichDescriptions fills in missing descriptions from the course detail records.
// Courses whose detail cannot be fetched are left as they are.
func enrichDescriptions(ctx context.Context, detailer courseDetailer, term catalog.Term, courses []types.Course, logger *zap.Logger) {
	for i := range courses {
		if courses[i].DescriptionText() != "" {
			continue
		}
		detail, err := detailer.CourseDetail(ctx, term.Year, term.Semester, courses[i].Subject, courses[i].Number)
		if err != nil {
			logger.Warn("failed to fetch course detail",
				zap.String("course", courses[i].Key()),
				zap.Error(err))
			continue
		}
		if detail.Description != nil {
			courses[i].Description = detail.Description
		}
		if courses[i].Credits == nil {
			courses[i].Credits = detail.Credits
		}
	}
}
