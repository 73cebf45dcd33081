package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// MaxBodyBytes caps request bodies, header image data URLs included.
const MaxBodyBytes = 5000000

// ReadBody reads at most MaxBodyBytes of the request body. On failure it has
// already written the error response and returns false.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logrus.WithField("limit", tooLarge.Limit).Warn("Request body too large")
			RenderError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		logrus.WithError(err).Error("Failed to read request body")
		RenderError(w, r, http.StatusInternalServerError, "Failed to read request body")
		return nil, false
	}
	return body, true
}
