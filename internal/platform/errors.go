package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized indicates the supplied access token was missing, expired
// or revoked. Callers treat it as "no session", not as a user-facing error.
var ErrUnauthorized = errors.New("platform: unauthorized")

// ServiceError carries a message produced by the remote service. The message
// is suitable for display to the user; Status is the upstream HTTP status.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform: service error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("platform: service error (%d)", e.Status)
}

// UserMessage returns the service-supplied message, or empty when the
// service gave none.
func (e *ServiceError) UserMessage() string { return e.Message }

func serviceErrorFromResponse(status int, raw []byte) error {
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	// Both the auth and REST surfaces report errors as JSON objects but
	// disagree on the field name.
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Msg != "":
			msg = body.Msg
		case body.ErrorDescription != "":
			msg = body.ErrorDescription
		case body.Error != "":
			msg = body.Error
		}
	}
	return &ServiceError{Status: status, Message: msg}
}
