package core

// errors.go defines the pipeline's error taxonomy and the mapping from
// technical errors to user-friendly messages with support codes.
//
// Taxonomy:
//
//	AdmissionError  - file rejected before any parsing (size/extension/type).
//	                  Hard stop, never retried.
//	StructuralError - stream-level parse failure or row-count ceiling
//	                  exceeded. Hard stop, no partial aggregate.
//	HeaderError     - required canonical columns have no matching header.
//	                  Hard stop only under strict configuration; otherwise a
//	                  warning absorbed by field-level defaults.
//	schema.FieldError - per-row, per-field violation. Always recovered
//	                  locally; never fatal.
//
// Error codes are grouped by category for support reference:
//
//	ADM001 - File too large        ADM002 - Wrong extension
//	ADM003 - Unsupported type      STR001 - Unreadable stream
//	STR002 - Row ceiling exceeded  STR003 - Empty file
//	HDR001 - Missing required columns
//	ERR000 - Fallback for unmatched errors

import (
	"fmt"
	"strings"
)

// AdmissionError carries every violated admission rule for one file.
type AdmissionError struct {
	FileName string
	Reasons  []string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("file %q rejected: %s", e.FileName, strings.Join(e.Reasons, "; "))
}

// StructuralError is fatal for the whole operation: the stream could not be
// parsed, or the file crossed the configured row ceiling.
type StructuralError struct {
	Reason string
	Cause  error
}

func (e *StructuralError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *StructuralError) Unwrap() error { return e.Cause }

// HeaderError lists the required canonical fields with no matching observed
// header. Fatal only when the pipeline runs with StrictHeaders.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// UserMessage provides user-friendly error information with actionable
// guidance and a code for support reference.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive substring match)
// to user messages. The first matching pattern wins, so more specific
// patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "row count exceeds",
		msg: UserMessage{
			Message: "File has too many rows to process",
			Action:  "Split the file and validate each part separately",
			Code:    "STR002",
		},
	},
	{
		pattern: "exceeds maximum",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks and upload each separately",
			Code:    "ADM001",
		},
	},
	{
		pattern: "must have a .csv extension",
		msg: UserMessage{
			Message: "File is not a CSV file",
			Action:  "Export your data as CSV and try again",
			Code:    "ADM002",
		},
	},
	{
		pattern: "unsupported media type",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Upload a plain CSV file",
			Code:    "ADM003",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File could not be read as CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "STR001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file contains no data rows",
			Action:  "Upload a file with a header row and at least one data row",
			Code:    "STR003",
		},
	},
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "Required columns are missing from the file",
			Action:  "Check the column reference for accepted header spellings",
			Code:    "HDR001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. It
// searches the known patterns case-insensitively and returns the first
// match, falling back to ERR000.
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

// FormatUserError renders an error for display as
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
