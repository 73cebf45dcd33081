package api

import (
	"errors"
	"net/http"

	"widget-canvas/core"

	"github.com/go-chi/render"
)

// StatusFor maps a store error to an HTTP status. Rejected input is the caller's fault.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFormat), errors.Is(err, core.ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RenderError writes {"error": "<message>"} with the given status.
func RenderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

// RenderStoreError writes err's message with the status StatusFor picks.
func RenderStoreError(w http.ResponseWriter, r *http.Request, err error) {
	RenderError(w, r, StatusFor(err), err.Error())
}
