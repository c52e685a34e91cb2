// Package catalog fetches subjects and courses from the UIUC Course Explorer XML API.
//
// Requests are rate limited and retried with exponential backoff on 429 and transient
// failures. Responses are parsed into the engine's Course type; a Cache in front of the
// client serves repeated lookups and coalesces concurrent ones.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/skillgap/internal/logging"
	"github.com/jonathan/skillgap/internal/types"
)

// Defaults
const (
	DefaultBaseURL    = "https://courses.illinois.edu/cisapp/explorer"
	DefaultUserAgent  = "skillgap-course-recommender/1.0"
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultRPS        = 5
	DefaultTimeout    = 30 * time.Second
)

// Client talks to the course catalog
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	cache      *Cache
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the catalog base URL
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the attempt count and the base backoff delay
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithRateLimit limits outgoing requests to rps per second; rps <= 0 disables limiting
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithCache puts a cache in front of subject and course lookups
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(logger) }
}

// NewClient creates a catalog client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRPS), 1),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     zap.NewNop(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	return c
}

// Subjects lists the subjects offered in a term
func (c *Client) Subjects(ctx context.Context, year, semester string) ([]types.Subject, error) {
	load := func(ctx context.Context) ([]types.Subject, error) {
		url := fmt.Sprintf("%s/catalog/%s/%s.xml?mode=summary", c.baseURL, year, semester)
		c.logger.Info("fetching subjects", zap.String("year", year), zap.String("semester", semester))

		data, err := c.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch subjects: %w", err)
		}
		subjects, err := parseSubjects(data)
		if err != nil {
			return nil, err
		}
		c.logger.Info("fetched subjects", zap.Int("count", len(subjects)))
		return subjects, nil
	}

	if c.cache == nil {
		return load(ctx)
	}
	return Fetch(ctx, c.cache, SubjectsKey(year, semester), load)
}

// Courses lists the courses of one subject in a term
func (c *Client) Courses(ctx context.Context, year, semester, subject string) ([]types.Course, error) {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	load := func(ctx context.Context) ([]types.Course, error) {
		url := fmt.Sprintf("%s/catalog/%s/%s/%s.xml?mode=cascade", c.baseURL, year, semester, subject)
		c.logger.Info("fetching courses for subject",
			zap.String("subject", subject), zap.String("year", year), zap.String("semester", semester))

		data, err := c.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch courses for %s: %w", subject, err)
		}
		courses, err := parseCourses(data, c.baseURL, year, semester, subject)
		if err != nil {
			return nil, err
		}
		c.logger.Info("fetched courses for subject", zap.String("subject", subject), zap.Int("count", len(courses)))
		return courses, nil
	}

	if c.cache == nil {
		return load(ctx)
	}
	return Fetch(ctx, c.cache, CoursesKey(year, semester, subject), load)
}

// CourseDetail fetches the full record of one course
func (c *Client) CourseDetail(ctx context.Context, year, semester, subject, number string) (*types.Course, error) {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	base := fmt.Sprintf("%s/catalog/%s/%s/%s/%s", c.baseURL, year, semester, subject, strings.TrimSpace(number))

	data, err := c.fetch(ctx, base+".xml?mode=detail")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course %s %s: %w", subject, number, err)
	}
	return parseCourseDetail(data, subject, number, base)
}

// fetch performs a GET with rate limiting and up to maxRetries attempts.
// The backoff before attempt n+1 is retryDelay * 2^(n-1).
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		data, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == c.maxRetries || !isRetryable(err) {
			break
		}

		delay := c.retryDelay * time.Duration(1<<(attempt-1))
		c.logger.Warn("catalog request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("url", url),
			zap.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
