package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/skillgap/internal/service"
	"github.com/jonathan/skillgap/internal/types"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// handleGapAnalysis recomputes and stores the gap list of a run
func (s *Server) handleGapAnalysis(w http.ResponseWriter, r *http.Request) {
	var req types.GapAnalysisRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.serviceError(w, "gap analysis", err)
		return
	}

	resp, err := s.gaps.Run(r.Context(), req)
	if err != nil {
		s.serviceError(w, "gap analysis", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleCourseRecommendations ranks catalog courses against the user's gaps
func (s *Server) handleCourseRecommendations(w http.ResponseWriter, r *http.Request) {
	var req types.CourseRecommendationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.serviceError(w, "course recommendation", err)
		return
	}

	resp, err := s.recommend.Run(r.Context(), req)
	if err != nil {
		s.serviceError(w, "course recommendation", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// decodeBody decodes a JSON request body; malformed bodies are input errors
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &service.InputError{Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}

// serviceError maps an error to its status. Server-side failures are logged and
// reported without internal detail.
func (s *Server) serviceError(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	var inputErr *service.InputError
	if errors.As(err, &inputErr) {
		s.errorResponse(w, status, inputErr.Error())
		return
	}

	s.logger.Error(op+" failed", zap.Int("status", status), zap.Error(err))
	message := "internal server error"
	if status == http.StatusBadGateway {
		message = "upstream service unavailable"
	}
	s.errorResponse(w, status, message)
}
