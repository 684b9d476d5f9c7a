package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrScheduleInPast    = errors.New("scheduled time must be in the future")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCredentialMissing = errors.New("no stored credential for platform")
	ErrCredentialExpired = errors.New("credential expired and cannot be refreshed")
	ErrDispatchFailed    = errors.New("trigger registration failed")
	ErrStaleTrigger      = errors.New("stale trigger")
)

// PublishError carries the platform's own error text for a rejected publish.
type PublishError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s publish failed (%d): %s", e.Platform, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s publish failed: %s", e.Platform, e.Message)
}
