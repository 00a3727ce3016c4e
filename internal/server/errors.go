// Package server provides the HTTP REST API for the application lifecycle
// subsystem.
package server

import (
	"net/http"

	"github.com/jonathan/applyflow/internal/application"
)

// HTTPStatus returns the appropriate HTTP status code for a service error.
// Delivery failures never reach this mapping: a transition is successful
// once persisted, regardless of notification outcome.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *application.NotFoundError:
		return http.StatusNotFound
	case *application.ValidationError:
		return http.StatusBadRequest
	case *application.ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
