package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. The CLI prints them next to the technical error and the HTTP
// layer returns them in the JSON error body.
//
// Typed errors from errors.go are matched first with errors.As; anything else
// falls through to case-insensitive substring patterns.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source file not found
//	         Action: Place <entity>.csv in the data directory
//	SRC002 - Source file unreadable
//	         Action: Check file permissions and that the file is valid CSV
//	SRC003 - Source file too large
//	         Action: Raise INGEST_MAX_FILE_SIZE or split the file
//	SRC004 - Required column missing from the header
//	         Action: Check that all required columns are present in your file
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - TYPE_MISMATCH        Patterns: "type_mismatch", "invalid date", "invalid number"
//	VAL002 - MISSING_REQUIRED     Patterns: "missing_required", "required field"
//	VAL003 - DUPLICATE_KEY        Patterns: "duplicate_key", "duplicate key"
//	VAL004 - DANGLING_REFERENCE   Patterns: "dangling_reference", "foreign key"
//	VAL005 - RANGE_VIOLATION      Patterns: "range_violation"
//	VAL006 - Strict mode aborted the load (ValidationFailure)
//
// # Store Errors (STO001-STO099)
//
//	STO001 - Unable to open the store      Patterns: "connection refused"
//	STO002 - Table replace failed, previous contents kept
//	STO003 - Store query failed
//	STO004 - Store operation timed out     Patterns: "timeout", "deadline exceeded"
//
// # Report Errors (RPT001-RPT099)
//
//	RPT001 - A table required by the report is missing
//	RPT002 - Report aggregation failed
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid configuration         Patterns: "validation failed"
//	CFG002 - Operation cancelled           Patterns: "context canceled"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the logs for the technical error

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgSourceMissing = UserMessage{
		Message: "Source file not found",
		Action:  "Place <entity>.csv in the data directory",
		Code:    "SRC001",
	}
	msgSourceUnreadable = UserMessage{
		Message: "Source file could not be read",
		Action:  "Check file permissions and that the file is valid CSV",
		Code:    "SRC002",
	}
	msgSourceTooLarge = UserMessage{
		Message: "Source file exceeds the size limit",
		Action:  "Raise INGEST_MAX_FILE_SIZE or split the file",
		Code:    "SRC003",
	}
	msgSourceHeader = UserMessage{
		Message: "Required column is missing from the source header",
		Action:  "Check that all required columns are present in your file",
		Code:    "SRC004",
	}
	msgStrictAbort = UserMessage{
		Message: "Strict mode aborted the load because rows were rejected",
		Action:  "Review the rejections in the load report or run without --strict",
		Code:    "VAL006",
	}
	msgStoreOpen = UserMessage{
		Message: "Unable to open the store",
		Action:  "Check STORE_URL and that the database is reachable",
		Code:    "STO001",
	}
	msgStoreWrite = UserMessage{
		Message: "Writing a table failed; its previous contents were kept",
		Action:  "Check the store logs and run the load again",
		Code:    "STO002",
	}
	msgStoreQuery = UserMessage{
		Message: "Store query failed",
		Action:  "Check the store logs and try again",
		Code:    "STO003",
	}
	msgReportTable = UserMessage{
		Message: "A table required by the report is missing",
		Action:  "Run the load command before computing the report",
		Code:    "RPT001",
	}
	msgReportCompute = UserMessage{
		Message: "The revenue report could not be computed",
		Action:  "Check the store logs and try again",
		Code:    "RPT002",
	}
	msgConfig = UserMessage{
		Message: "Invalid configuration",
		Action:  "Fix the listed settings in the environment or .env file",
		Code:    "CFG001",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Row Validation (VAL001-VAL005)
	// =========================================================================
	{
		pattern: "type_mismatch",
		msg: UserMessage{
			Message: "A value has the wrong type",
			Action:  "Use YYYY-MM-DD dates, plain numbers and valid identifiers",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "A value has the wrong type",
			Action:  "Use YYYY-MM-DD dates, plain numbers and valid identifiers",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "A value has the wrong type",
			Action:  "Use YYYY-MM-DD dates, plain numbers and valid identifiers",
			Code:    "VAL001",
		},
	},
	{
		pattern: "missing_required",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL002",
		},
	},
	{
		pattern: "duplicate_key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Remove the duplicate rows; the first occurrence is kept",
			Code:    "VAL003",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Remove the duplicate rows; the first occurrence is kept",
			Code:    "VAL003",
		},
	},
	{
		pattern: "dangling_reference",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure the parent record is present in its source file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure the parent record is present in its source file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "range_violation",
		msg: UserMessage{
			Message: "A numeric value is out of range",
			Action:  "Prices, amounts and quantities must not be negative",
			Code:    "VAL005",
		},
	},

	// =========================================================================
	// Store Connectivity (STO001, STO004)
	// =========================================================================
	{
		pattern: "connection refused",
		msg:     msgStoreOpen,
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Store operation timed out",
			Action:  "Raise STORE_TIMEOUT or try again later",
			Code:    "STO004",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Store operation timed out",
			Action:  "Raise STORE_TIMEOUT or try again later",
			Code:    "STO004",
		},
	},

	// =========================================================================
	// Configuration (CFG001-CFG002)
	// =========================================================================
	{
		pattern: "validation failed",
		msg:     msgConfig,
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Operation cancelled",
			Action:  "Run the command again",
			Code:    "CFG002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors are matched first; otherwise it searches the known patterns
// (case-insensitive) and returns the first match, or ERR000.
//
// Example:
//
//	err := &SourceReadError{Entity: "orders", Err: ErrSourceMissing}
//	msg := MapError(err)
//	// msg.Code == "SRC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// mapTyped handles the error taxonomy from errors.go.
func mapTyped(err error) (UserMessage, bool) {
	var (
		srcErr    *SourceReadError
		valErr    *ValidationFailure
		rowErr    *RowValidationError
		storeErr  *StoreAccessError
		reportErr *ReportComputeError
		cfgErr    *ConfigError
	)

	switch {
	case errors.As(err, &srcErr):
		switch {
		case errors.Is(err, ErrSourceMissing):
			return msgSourceMissing, true
		case errors.Is(err, ErrSourceTooLarge):
			return msgSourceTooLarge, true
		case errors.Is(err, ErrSourceHeader):
			return msgSourceHeader, true
		default:
			return msgSourceUnreadable, true
		}
	case errors.As(err, &valErr):
		return msgStrictAbort, true
	case errors.As(err, &rowErr):
		// Reason codes are part of the message, let the patterns pick them up.
		return UserMessage{}, false
	case errors.As(err, &reportErr):
		if reportErr.Table != "" {
			return msgReportTable, true
		}
		return msgReportCompute, true
	case errors.As(err, &storeErr):
		switch storeErr.Op {
		case "open", "ping":
			return msgStoreOpen, true
		case "replace", "ensure", "exec":
			return msgStoreWrite, true
		default:
			return msgStoreQuery, true
		}
	case errors.As(err, &cfgErr):
		return msgConfig, true
	}
	return UserMessage{}, false
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

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error maps to a specific code (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
