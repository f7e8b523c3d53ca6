// Package core provides the business logic for the fraud watch report editor.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Every failure reaches the user exactly once, as one of these
// messages; the technical error is only logged.
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: The editing session is gone
//	         Action: Reload the page to start a new report
//	         Patterns: "session not found"
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Record not found: The row no longer exists
//	         Action: Refresh the preview and try again
//	         Patterns: "record not found"
//
//	REC002 - Unknown field: The field cannot be edited
//	         Action: Edit date, title, category, summary or source
//	         Patterns: "unknown field"
//
// # Delivery Errors (DLV001-DLV099)
//
//	DLV001 - Recipient required: No email address entered
//	         Action: Enter one or more addresses, separated by commas
//	         Patterns: "recipient required"
//
//	DLV002 - Email failed: The mailer did not accept the report
//	         Action: Check the addresses and try again later
//	         Patterns: "send report"
//
//	DLV003 - Busy: Too many deliveries in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many deliveries"
//
// # PDF Errors (PDF001-PDF099)
//
//	PDF001 - PDF failed: The PDF could not be generated
//	         Action: Use Print / Save as PDF instead
//	         Patterns: "generate pdf", "local pdf"
//
//	PDF002 - No engine: No PDF engine is available
//	         Action: Use Print / Save as PDF instead
//	         Patterns: "pdf engine unavailable"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Too large: The pasted text is too large
//	         Patterns: "request body too large"
//
//	REQ002 - Cancelled / REQ003 - Timed out
//	         Patterns: "context canceled", "context deadline exceeded"
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Session and record errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your editing session has expired",
			Action:  "Reload the page to start a new report",
			Code:    "SES001",
		},
	},
	{
		pattern: "record not found",
		msg: UserMessage{
			Message: "That row no longer exists",
			Action:  "Refresh the preview and try again",
			Code:    "REC001",
		},
	},
	{
		pattern: "unknown field",
		msg: UserMessage{
			Message: "That field cannot be edited",
			Action:  "Edit date, title, category, summary or source",
			Code:    "REC002",
		},
	},

	// Delivery errors
	{
		pattern: "recipient required",
		msg: UserMessage{
			Message: "Please enter recipient email.",
			Action:  "Enter one or more addresses, separated by commas",
			Code:    "DLV001",
		},
	},
	{
		pattern: "send report",
		msg: UserMessage{
			Message: "Failed to send email.",
			Action:  "Check the addresses and try again later",
			Code:    "DLV002",
		},
	},
	{
		pattern: "too many deliveries",
		msg: UserMessage{
			Message: "The report service is busy",
			Action:  "Please wait a moment and try again",
			Code:    "DLV003",
		},
	},

	// PDF errors
	{
		pattern: "generate pdf",
		msg: UserMessage{
			Message: "Failed to generate PDF.",
			Action:  "Use Print / Save as PDF instead",
			Code:    "PDF001",
		},
	},
	{
		pattern: "local pdf",
		msg: UserMessage{
			Message: "Failed to generate PDF.",
			Action:  "Use Print / Save as PDF instead",
			Code:    "PDF001",
		},
	},
	{
		pattern: "pdf engine unavailable",
		msg: UserMessage{
			Message: "PDF generation is not available",
			Action:  "Use Print / Save as PDF instead",
			Code:    "PDF002",
		},
	},

	// Request errors
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The pasted text is too large",
			Action:  "Paste fewer rows at a time",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid section",
		msg: UserMessage{
			Message: "That section address is not valid",
			Action:  "Reload the page and try again",
			Code:    "REQ004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ003",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when nothing matches.
//
// Example:
//
//	msg := MapError(fmt.Errorf("send report: %w", ErrDeliveryFailed))
//	// msg.Code == "DLV002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
