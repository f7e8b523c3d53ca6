package core

import "errors"

var (
	// ErrSessionNotFound is returned when a session ID is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRecordNotFound is returned for a (section, index) pair with no record.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownField is returned when a header or record field name is not editable.
	ErrUnknownField = errors.New("unknown field")

	// ErrRecipientRequired is returned when the email recipient list is empty.
	ErrRecipientRequired = errors.New("recipient required")

	// ErrDeliveryFailed wraps every non-success outcome of the delivery service.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrPDFUnavailable is returned when no PDF engine is configured or installed.
	ErrPDFUnavailable = errors.New("pdf engine unavailable")
)
