package catalog

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skillgap/internal/logging"
	"github.com/jonathan/skillgap/internal/types"
)

// DefaultWorkers is the number of subjects fetched concurrently
const DefaultWorkers = 3

// CourseSource lists a subject's courses
type CourseSource interface {
	Courses(ctx context.Context, year, semester, subject string) ([]types.Course, error)
}

// FetchResult holds the courses of every subject that loaded and the subjects that failed
type FetchResult struct {
	Courses []types.Course
	Failed  []string
}

// Fetcher loads many subjects through a bounded worker pool. A failing subject
// contributes no courses and does not affect the others.
type Fetcher struct {
	source  CourseSource
	workers int
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher; workers <= 0 uses DefaultWorkers
func NewFetcher(source CourseSource, workers int, logger *zap.Logger) *Fetcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Fetcher{source: source, workers: workers, logger: logging.OrNop(logger)}
}

// FetchAll fetches subjects concurrently. Courses come back grouped in subject order.
func (f *Fetcher) FetchAll(ctx context.Context, year, semester string, subjects []string) *FetchResult {
	perSubject := make([][]types.Course, len(subjects))
	failed := make([]bool, len(subjects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, subject := range subjects {
		g.Go(func() error {
			courses, err := f.source.Courses(gctx, year, semester, subject)
			if err != nil {
				f.logger.Warn("failed to fetch courses for subject",
					zap.String("subject", subject),
					zap.String("year", year),
					zap.String("semester", semester),
					zap.Error(err))
				failed[i] = true
				return nil
			}
			perSubject[i] = courses
			return nil
		})
	}
	_ = g.Wait()

	result := &FetchResult{Courses: make([]types.Course, 0)}
	for i, courses := range perSubject {
		if failed[i] {
			result.Failed = append(result.Failed, subjects[i])
			continue
		}
		result.Courses = append(result.Courses, courses...)
	}
	return result
}
