package ui

import (
	"errors"

	"github.com/mfukui/actlog/internal/activity"
	"github.com/mfukui/actlog/internal/platform"
)

// activityErrorMessage maps a repository failure to user-facing text.
// Validation failures and service messages are shown as-is; everything else
// gets the caller's generic fallback.
func activityErrorMessage(err error) string {
	if errors.Is(err, activity.ErrInvalidTimestamp) {
		return "Please enter a date and time"
	}
	var svcErr *platform.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.UserMessage()
	}
	return ""
}
