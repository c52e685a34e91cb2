package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/skillgap/internal/server/ratelimit"
	"github.com/jonathan/skillgap/internal/service"
	"github.com/jonathan/skillgap/internal/types"
)

type mockGapRunner struct {
	RunFunc func(ctx context.Context, req types.GapAnalysisRequest) (*types.GapAnalysisResponse, error)
	Calls   int
}

func (m *mockGapRunner) Run(ctx context.Context, req types.GapAnalysisRequest) (*types.GapAnalysisResponse, error) {
	m.Calls++
	return m.RunFunc(ctx, req)
}

type mockRecommendRunner struct {
	RunFunc func(ctx context.Context, req types.CourseRecommendationRequest) (*types.CourseRecommendationResponse, error)
}

func (m *mockRecommendRunner) Run(ctx context.Context, req types.CourseRecommendationRequest) (*types.CourseRecommendationResponse, error) {
	return m.RunFunc(ctx, req)
}

func disabledRateLimit() *ratelimit.Config {
	return &ratelimit.Config{Enabled: false}
}

func newTestServer(gaps GapRunner, recs RecommendRunner, logger *zap.Logger) *Server {
	return New(Config{Port: 0, RateLimit: disabledRateLimit()}, gaps, recs, logger)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&mockGapRunner{}, &mockRecommendRunner{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGapAnalysis_Success(t *testing.T) {
	userID, runID := uuid.New(), uuid.New()
	gaps := &mockGapRunner{RunFunc: func(_ context.Context, req types.GapAnalysisRequest) (*types.GapAnalysisResponse, error) {
		assert.Equal(t, userID, req.UserID)
		assert.Equal(t, runID, req.RunID)
		assert.Equal(t, 5, req.Limit)
		return &types.GapAnalysisResponse{
			UserID:        req.UserID,
			RunID:         req.RunID,
			InsertedCount: 1,
			Gaps:          []types.GapSummary{{SkillName: "SQL", Priority: 1, Reason: "missing"}},
		}, nil
	}}
	s := newTestServer(gaps, &mockRecommendRunner{}, nil)

	rec := postJSON(t, s.Handler(), "/gap-analysis/run", map[string]any{
		"user_id": userID, "run_id": runID, "limit": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.GapAnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.InsertedCount)
	assert.Equal(t, "SQL", resp.Gaps[0].SkillName)
}

func TestGapAnalysis_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "user_id=1"},
		{name: "bad uuid", body: `{"user_id":"not-a-uuid","run_id":"also-bad"}`},
		{name: "wrong type", body: `{"user_id":"` + uuid.NewString() + `","run_id":"` + uuid.NewString() + `","limit":"ten"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gaps := &mockGapRunner{}
			s := newTestServer(gaps, &mockRecommendRunner{}, nil)
			rec := postJSON(t, s.Handler(), "/gap-analysis/run", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid JSON body")
			assert.Equal(t, 0, gaps.Calls, "no analysis work on malformed input")
		})
	}
}

func TestGapAnalysis_ServiceErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{name: "input", err: &service.InputError{Field: "run_id", Message: "is required"}, wantStatus: http.StatusBadRequest, wantMessage: "run_id"},
		{name: "persistence", err: &service.PersistenceError{Op: "insert gaps", Err: errors.New("secret dsn")}, wantStatus: http.StatusInternalServerError, wantMessage: "internal server error"},
		{name: "upstream", err: &service.UpstreamError{Op: "fetch", Err: errors.New("x")}, wantStatus: http.StatusBadGateway, wantMessage: "upstream service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			gaps := &mockGapRunner{RunFunc: func(context.Context, types.GapAnalysisRequest) (*types.GapAnalysisResponse, error) {
				return nil, tt.err
			}}
			s := newTestServer(gaps, &mockRecommendRunner{}, zap.New(core))

			rec := postJSON(t, s.Handler(), "/gap-analysis/run", map[string]any{"user_id": uuid.New(), "run_id": uuid.New()})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
			assert.NotContains(t, rec.Body.String(), "secret dsn")
			if tt.wantStatus >= 500 {
				assert.Equal(t, 1, logs.FilterMessage("gap analysis failed").Len())
			}
		})
	}
}

func TestCourseRecommendations_Success(t *testing.T) {
	userID := uuid.New()
	courseID := uuid.New()
	confidence := 0.8
	recs := &mockRecommendRunner{RunFunc: func(_ context.Context, req types.CourseRecommendationRequest) (*types.CourseRecommendationResponse, error) {
		assert.Equal(t, "2025", req.Year)
		assert.Equal(t, "fall", req.Semester)
		assert.Nil(t, req.RunID)
		return &types.CourseRecommendationResponse{
			UserID:                 req.UserID,
			RunID:                  uuid.New(),
			CoursesFound:           12,
			RecommendationsCreated: 1,
			Recommendations: []types.Recommendation{{
				Rank:        1,
				CourseID:    &courseID,
				Course:      types.Course{Subject: "CS", Number: "411", Title: "Database Systems", URL: "u"},
				Score:       1,
				MatchedGaps: []string{"SQL"},
				Explanation: "Covers SQL",
				Confidence:  &confidence,
			}},
		}, nil
	}}
	s := newTestServer(&mockGapRunner{}, recs, nil)

	rec := postJSON(t, s.Handler(), "/course-recommendations/run", map[string]any{
		"user_id": userID, "year": "2025", "semester": "fall",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.EqualValues(t, 12, body["courses_found"])
	assert.EqualValues(t, 1, body["recommendations_created"])
	first := body["recommendations"].([]any)[0].(map[string]any)
	assert.Equal(t, courseID.String(), first["course_id"])
	assert.Equal(t, "CS", first["course"].(map[string]any)["subject"])
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&mockGapRunner{}, &mockRecommendRunner{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gap-analysis/run", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&mockGapRunner{}, &mockRecommendRunner{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/gap-analysis/run", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRateLimit(t *testing.T) {
	gaps := &mockGapRunner{RunFunc: func(_ context.Context, req types.GapAnalysisRequest) (*types.GapAnalysisResponse, error) {
		return &types.GapAnalysisResponse{UserID: req.UserID, RunID: req.RunID, Gaps: []types.GapSummary{}}, nil
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(Config{RateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/gap-analysis/run", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
	}}, gaps, &mockRecommendRunner{}, zap.New(core))
	defer s.rateLimiter.Stop()

	body := map[string]any{"user_id": uuid.New(), "run_id": uuid.New()}
	for i := 0; i < 2; i++ {
		rec := postJSON(t, s.Handler(), "/gap-analysis/run", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := postJSON(t, s.Handler(), "/gap-analysis/run", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, 2, gaps.Calls)
	assert.Equal(t, 1, logs.FilterMessage("rate limit exceeded").Len())
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newTestServer(&mockGapRunner{}, &mockRecommendRunner{}, zap.New(core))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/missing", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}
