// Package errors centralizes boundary logging and generic error responses.
package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func requestLogger(r *http.Request) *logrus.Entry {
	fields := logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		fields["request_id"] = requestID
	}
	return logrus.WithFields(fields)
}

// InternalError logs the real error and returns a generic message to the
// client; detail never leaks into the response.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestLogger(r).WithError(err).Error(message)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs the cause and returns the client-safe message.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	requestLogger(r).WithError(err).Warn("bad request")
	http.Error(w, clientMessage, http.StatusBadRequest)
}

// LogError records a handler-level failure that was turned into user-facing
// feedback rather than a failed response.
func LogError(r *http.Request, message string, err error) {
	requestLogger(r).WithError(err).Error(message)
}
