package core

// errors.go defines the warning taxonomy, the fatal SourceError, and the
// mapping from technical errors to user-facing messages.
//
// # Warning Codes
//
//	HDR001 - Structural: header has no db|id|name prefix
//	HDR002 - Field parse: OX, PE or SV is not an integer
//	SEQ001 - Empty sequence: record has no residues
//
// Warnings never abort processing. They are collected or handed to a
// WarningHandler.
//
// # Error Codes
//
//	SRC001 - Input not found
//	SRC002 - Input unreadable
//	SRC003 - Destination not writable
//	TBL001 - Table payload could not be decoded
//	REQ001 - Request body too large
//	REQ002 - Unknown table format
//	LIM001 - Too many concurrent conversions
//	STO001 - Table store not configured
//	STO002 - Stored batch not found
//	UNK001 - Unknown error
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins.

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// WarningKind classifies a recoverable per-record problem.
type WarningKind string

const (
	WarnStructural    WarningKind = "structural"
	WarnFieldParse    WarningKind = "field_parse"
	WarnEmptySequence WarningKind = "empty_sequence"
)

// Code returns the support reference code for the warning kind.
func (k WarningKind) Code() string {
	switch k {
	case WarnStructural:
		return "HDR001"
	case WarnFieldParse:
		return "HDR002"
	case WarnEmptySequence:
		return "SEQ001"
	default:
		return "UNK001"
	}
}

// Warning describes a recoverable problem with a single record.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Code    string      `json:"code"`
	Record  int         `json:"record,omitempty"` // 1-based record index, 0 if unknown
	Field   string      `json:"field,omitempty"`
	Value   string      `json:"value,omitempty"`
	Header  string      `json:"header,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Record > 0 {
		return fmt.Sprintf("%s record %d: %s", w.Code, w.Record, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

func newWarning(kind WarningKind, field, value, msg string) Warning {
	return Warning{
		Kind:    kind,
		Code:    kind.Code(),
		Field:   field,
		Value:   value,
		Message: msg,
	}
}

// SourceError is a fatal I/O failure at the boundary: the input cannot be
// opened or read, or the destination cannot be written.
type SourceError struct {
	Op   string // "open", "read", "create", "write"
	Path string // empty for streams
	Err  error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s source: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsSourceError reports whether err is or wraps a *SourceError.
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}

// ErrStoreUnavailable is returned by operations that need a table store
// when none is configured.
var ErrStoreUnavailable = errors.New("table store not configured")

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
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum size",
			Action:  "Split the file into smaller chunks",
			Code:    "REQ001",
		},
	},
	{
		pattern: "unknown table format",
		msg: UserMessage{
			Message: "Unsupported table format",
			Action:  "Use csv, tsv or json",
			Code:    "REQ002",
		},
	},
	{
		pattern: "too many concurrent conversions",
		msg: UserMessage{
			Message: "The server is busy",
			Action:  "Wait a few seconds and retry",
			Code:    "LIM001",
		},
	},
	{
		pattern: "decode table",
		msg: UserMessage{
			Message: "Table could not be read",
			Action:  "Send a CSV file with a header row or a JSON table",
			Code:    "TBL001",
		},
	},
	{
		pattern: "table store not configured",
		msg: UserMessage{
			Message: "Table storage is not available",
			Action:  "Configure DATABASE_URL to enable stored batches",
			Code:    "STO001",
		},
	},
	{
		pattern: "batch not found",
		msg: UserMessage{
			Message: "Stored batch not found",
			Action:  "List batches to find a valid id",
			Code:    "STO002",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the server logs",
	Code:    "UNK001",
}

// MapError converts a technical error to a user-friendly message.
// Source errors are classified by their underlying cause; everything else
// goes through the pattern table.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var se *SourceError
	if errors.As(err, &se) {
		switch {
		case se.Op == "create" || se.Op == "write":
			return UserMessage{
				Message: "Destination could not be written",
				Action:  "Check the output path and its permissions",
				Code:    "SRC003",
			}
		case errors.Is(se.Err, fs.ErrNotExist):
			return UserMessage{
				Message: "Input file not found",
				Action:  "Check the path to the FASTA file",
				Code:    "SRC001",
			}
		default:
			return UserMessage{
				Message: "Input could not be read",
				Action:  "Check that the file is readable text",
				Code:    "SRC002",
			}
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
