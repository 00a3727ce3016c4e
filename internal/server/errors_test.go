package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/applyflow/internal/application"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &application.NotFoundError{Kind: "application", ID: uuid.New()}, http.StatusNotFound},
		{"validation", &application.ValidationError{Message: "bad input"}, http.StatusBadRequest},
		{"conflict", &application.ConflictError{Message: "already applied"}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}
