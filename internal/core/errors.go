package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a stable support reference attached to build errors.
type ErrorCode string

const (
	CodeDictionaryMissing    ErrorCode = "CFG001"
	CodeDictionaryMalformed  ErrorCode = "CFG002"
	CodeTableMissing         ErrorCode = "TBL001"
	CodeTableUnreadable      ErrorCode = "TBL002"
	CodeRequiredTableMissing ErrorCode = "YR001"
	CodeJoinFailed           ErrorCode = "YR002"
	CodeEmptyResult          ErrorCode = "EMPTY001"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	// ErrConfiguration is fatal: the column dictionary cannot be used.
	ErrConfiguration = errors.New("configuration error")

	// ErrTableLoad is recovered per table: the table is absent for the year.
	ErrTableLoad = errors.New("table load error")

	// ErrYearMerge is recovered per year: the year is dropped.
	ErrYearMerge = errors.New("year merge error")

	// ErrEmptyResult marks a build where no year produced data. It is never
	// returned by Build; it is recorded on the report.
	ErrEmptyResult = errors.New("no year produced data")
)

// ConfigurationError reports a missing or malformed column dictionary.
type ConfigurationError struct {
	Code ErrorCode
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("column dictionary %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

// ErrorCode returns the support code.
func (e *ConfigurationError) ErrorCode() ErrorCode { return e.Code }

// TableLoadError reports a table kind that could not be loaded for a year.
type TableLoadError struct {
	Code  ErrorCode
	Year  int
	Table string
	Paths []string // candidate files tried
	Err   error
}

func (e *TableLoadError) Error() string {
	if e.Code == CodeTableMissing {
		return fmt.Sprintf("table %s for %d: no file among [%s]", e.Table, e.Year, strings.Join(e.Paths, ", "))
	}
	return fmt.Sprintf("table %s for %d: %v", e.Table, e.Year, e.Err)
}

func (e *TableLoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTableLoad}
	}
	return []error{ErrTableLoad, e.Err}
}

// ErrorCode returns the support code.
func (e *TableLoadError) ErrorCode() ErrorCode { return e.Code }

// YearMergeError reports a year that could not be assembled.
type YearMergeError struct {
	Code ErrorCode
	Year int
	Err  error
}

func (e *YearMergeError) Error() string {
	return fmt.Sprintf("year %d: %v", e.Year, e.Err)
}

func (e *YearMergeError) Unwrap() []error { return []error{ErrYearMerge, e.Err} }

// ErrorCode returns the support code.
func (e *YearMergeError) ErrorCode() ErrorCode { return e.Code }

// coded is implemented by errors carrying a support code.
type coded interface {
	ErrorCode() ErrorCode
}

// CodeOf returns the support code of the first coded error in err's chain,
// or "" if there is none.
func CodeOf(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	if errors.Is(err, ErrEmptyResult) {
		return CodeEmptyResult
	}
	return ""
}
