package core

// # Error Codes Reference
//
// Operators quote these codes when a build fails or drops data.
//
// # Configuration Errors (CFG001-CFG099), fatal
//
//	CFG001 - Column dictionary missing
//	         Action: Check DICTIONARY_PATH and that the file exists
//
//	CFG002 - Column dictionary malformed
//	         Action: The file must be ';'-separated with nom_original and nouveau_nom columns
//
// # Table Errors (TBL001-TBL099), recovered per table
//
//	TBL001 - Raw file missing for the year
//	         Action: Download the extract into RAW_DIR or remove the year from BUILD_YEARS
//
//	TBL002 - Raw file unreadable or not valid CSV
//	         Action: Check delimiter and encoding (RAW_DELIMITER, RAW_ENCODING)
//
// # Year Errors (YR001-YR099), recovered per year
//
//	YR001 - Required table missing, year dropped
//	         Action: caracteristiques and lieux must both load for a year
//
//	YR002 - Join failed, year dropped
//	         Action: Check that join key columns exist in every table
//
// # Result Warnings (EMPTY001)
//
//	EMPTY001 - No year produced data, nothing written
//	           Action: Check RAW_DIR and the warnings logged for each year
//
// # Persistence Errors (OUT001-OUT099), fatal
//
// Matched by pattern on the error text, first match wins:
//
//	OUT001 - Permission denied    Patterns: "permission denied"
//	OUT002 - Disk full            Patterns: "no space left"
//	OUT003 - Database unreachable Patterns: "connection refused", "dial tcp"
//	OUT004 - Database rejected    Patterns: "sqlstate", "sqlite"
//
// # Default Error (ERR000)
//
// Fallback when no code or pattern matches.

import (
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// codeMessages maps typed error codes to messages.
var codeMessages = map[ErrorCode]UserMessage{
	CodeDictionaryMissing: {
		Message: "Column dictionary missing",
		Action:  "Check DICTIONARY_PATH and that the file exists",
	},
	CodeDictionaryMalformed: {
		Message: "Column dictionary malformed",
		Action:  "The file must be ';'-separated with nom_original and nouveau_nom columns",
	},
	CodeTableMissing: {
		Message: "Raw file missing for the year",
		Action:  "Download the extract into RAW_DIR or remove the year from BUILD_YEARS",
	},
	CodeTableUnreadable: {
		Message: "Raw file unreadable or not valid CSV",
		Action:  "Check delimiter and encoding (RAW_DELIMITER, RAW_ENCODING)",
	},
	CodeRequiredTableMissing: {
		Message: "Required table missing, year dropped",
		Action:  "caracteristiques and lieux must both load for a year",
	},
	CodeJoinFailed: {
		Message: "Join failed, year dropped",
		Action:  "Check that join key columns exist in every table",
	},
	CodeEmptyResult: {
		Message: "No year produced data, nothing written",
		Action:  "Check RAW_DIR and the warnings logged for each year",
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns map untyped errors (case-insensitive substring) to messages.
var errorPatterns = []errorPattern{
	{
		pattern: "permission denied",
		msg:     UserMessage{Message: "Permission denied", Action: "Check write access to the output location", Code: "OUT001"},
	},
	{
		pattern: "no space left",
		msg:     UserMessage{Message: "Disk full", Action: "Free space on the output volume", Code: "OUT002"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Database unreachable", Action: "Check DATABASE_URL and that the server is up", Code: "OUT003"},
	},
	{
		pattern: "dial tcp",
		msg:     UserMessage{Message: "Database unreachable", Action: "Check DATABASE_URL and that the server is up", Code: "OUT003"},
	},
	{
		pattern: "sqlstate",
		msg:     UserMessage{Message: "Database rejected the dataset", Action: "Check EXPORT_PG_TABLE and database permissions", Code: "OUT004"},
	},
	{
		pattern: "sqlite",
		msg:     UserMessage{Message: "Database rejected the dataset", Action: "Check EXPORT_SQLITE_PATH and EXPORT_SQLITE_TABLE", Code: "OUT004"},
	},
}

// defaultMessage is returned when no code or pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the underlying error",
	Code:    "ERR000",
}

// MapError converts an error to an operator-facing message. Typed errors map
// through their code; other errors are matched against known patterns.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if code := CodeOf(err); code != "" {
		if msg, ok := codeMessages[code]; ok {
			msg.Code = string(code)
			return msg
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
