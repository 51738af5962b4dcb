package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Sentinel errors are matched with errors.Is first, then
// the error text is matched against known patterns.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: textio.ErrTooLarge, "file too large", "request body too large"
//	FILE002 - Not delimited: delim.ErrNotDelimited
//	FILE003 - Encoding: textio.ErrUnsupportedCharset, "encoding error"
//	FILE004 - No file: ErrNoFile, "no such file"
//	FILE005 - Empty file: ErrEmptyFile
//	FILE006 - Marker not found: delim.ErrMarkerNotFound
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: "duplicate key"
//	DB002 - Unique constraint: "unique constraint", "violates unique"
//	DB003 - Foreign key: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused: "connection refused"
//	DB005 - Connection reset: "connection reset"
//	DB006 - Timeout: "timeout"
//	DB007 - Deadlock: "deadlock"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: ErrTooManyImports
//	UPL004 - Request cancelled: context.Canceled
//	UPL005 - Request timeout: context.DeadlineExceeded
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Imports disabled: ErrNoDatabase
//	IMP002 - Invalid table name: ErrInvalidTableName
//	IMP003 - Column mismatch: "of relation", "does not exist"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Unknown profile: ErrUnknownProfile
//	REQ002 - Unknown format: export.ErrUnknownFormat
//	REQ003 - Invalid option: delim.ErrInvalidSeparator, delim.ErrInvalidColumn
//	REQ004 - Invalid parameter: ErrInvalidOption
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check application logs
// for the original technical error when users report ERR000.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/export"
	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// sentinelMessage maps a sentinel error to its user message.
type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages are checked in order with errors.Is before any pattern.
// Context errors come last so a more specific cause wins.
var sentinelMessages = []sentinelMessage{
	{textio.ErrTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{delim.ErrNotDelimited, UserMessage{
		Message: "The file does not look like delimited text",
		Action:  "Choose the separator explicitly or check that the file has consistent columns",
		Code:    "FILE002",
	}},
	{textio.ErrUnsupportedCharset, UserMessage{
		Message: "Unsupported character encoding",
		Action:  "Use auto, utf-8, utf-16, latin1 or windows-1252",
		Code:    "FILE003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to upload",
		Code:    "FILE004",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a file with data rows",
		Code:    "FILE005",
	}},
	{delim.ErrMarkerNotFound, UserMessage{
		Message: "The skip-until line was not found in the file",
		Action:  "Check the marker text or clear the skip-until setting",
		Code:    "FILE006",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrNoDatabase, UserMessage{
		Message: "Database imports are not enabled on this server",
		Action:  "Use inspect or convert instead, or ask an administrator to configure a database",
		Code:    "IMP001",
	}},
	{ErrInvalidTableName, UserMessage{
		Message: "Invalid table name",
		Action:  "Use letters, digits and underscores only, starting with a letter",
		Code:    "IMP002",
	}},
	{ErrUnknownProfile, UserMessage{
		Message: "Unknown dialect profile",
		Action:  "Pick one of the configured profiles",
		Code:    "REQ001",
	}},
	{export.ErrUnknownFormat, UserMessage{
		Message: "Unknown output format",
		Action:  "Use json, ndjson, csv, tsv or parquet",
		Code:    "REQ002",
	}},
	{delim.ErrInvalidSeparator, UserMessage{
		Message: "Invalid separator",
		Action:  "Use tab, comma, semicolon, pipe, slash, space, whitespace or a single character",
		Code:    "REQ003",
	}},
	{delim.ErrInvalidColumn, UserMessage{
		Message: "Invalid column index",
		Action:  "Column indices start at 0 and must not be negative",
		Code:    "REQ003",
	}},
	{ErrInvalidOption, UserMessage{
		Message: "Invalid request parameter",
		Action:  "Check the form values and try again",
		Code:    "REQ004",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages. The first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	// Database constraint errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Import into a new table or use replace",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your data for duplicate key values",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records are imported first",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records are imported first",
			Code:    "DB003",
		},
	},

	// Schema mismatch against an existing table
	{
		pattern: "of relation",
		msg: UserMessage{
			Message: "The file's columns do not match the existing table",
			Action:  "Import into a new table or adjust the header",
			Code:    "IMP003",
		},
	},

	// Database connection errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// File errors surfaced by the HTTP layer
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Choose the file's encoding explicitly",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("read: %w", delim.ErrNotDelimited))
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
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
