// Package server provides the HTTP API for gap analysis and course recommendations.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/skillgap/internal/service"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		inputErr    *service.InputError
		upstreamErr *service.UpstreamError
		persistErr  *service.PersistenceError
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
