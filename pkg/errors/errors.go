package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Load phase errors
	ErrRulesDirNotFound ErrorCode = "RULES_DIR_NOT_FOUND"
	ErrParse            ErrorCode = "PARSE"
	ErrPattern          ErrorCode = "PATTERN"
	ErrDuplicateName    ErrorCode = "DUPLICATE_NAME"

	// Match phase errors
	ErrMatch ErrorCode = "MATCH"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
)

// Well known detail keys
const (
	DetailFile  = "file"
	DetailLine  = "line"
	DetailRule  = "rule"
	DetailField = "field"
)

// LintError represents a structured error with code and details
type LintError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LintError) Error() string {
	var loc string
	if file, ok := e.Details[DetailFile].(string); ok && file != "" {
		loc = file
		if line, ok := e.Details[DetailLine].(int); ok && line > 0 {
			loc = fmt.Sprintf("%s:%d", file, line)
		}
		loc += ": "
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s%s: %v", e.Code, loc, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s%s", e.Code, loc, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LintError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LintError) Is(target error) bool {
	var targetErr *LintError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LintError with the given code and message
func New(code ErrorCode, message string) *LintError {
	return &LintError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LintError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LintError {
	return &LintError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LintError
func Wrap(err error, code ErrorCode, message string) *LintError {
	if err == nil {
		return nil
	}
	return &LintError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LintError {
	if err == nil {
		return nil
	}
	return &LintError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LintError) WithDetail(key string, value interface{}) *LintError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *LintError) WithDetails(details map[string]interface{}) *LintError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// At records the source location of the error
func (e *LintError) At(file string, line int) *LintError {
	e.WithDetail(DetailFile, file)
	if line > 0 {
		e.WithDetail(DetailLine, line)
	}
	return e
}

// File returns the file detail, if any
func (e *LintError) File() string {
	file, _ := e.Details[DetailFile].(string)
	return file
}

// Line returns the line detail, or 0
func (e *LintError) Line() int {
	line, _ := e.Details[DetailLine].(int)
	return line
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		return lintErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LintError
func GetErrorCode(err error) ErrorCode {
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		return lintErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a LintError
func GetErrorDetails(err error) map[string]interface{} {
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		return lintErr.Details
	}
	return nil
}

// List collects the errors of one phase so they can be reported together
// instead of stopping at the first failure.
type List struct {
	Errors []*LintError
}

// Add appends err to the list. Errors that are not LintErrors are wrapped as ErrUnknown.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		l.Errors = append(l.Errors, lintErr)
		return
	}
	l.Errors = append(l.Errors, Wrap(err, ErrUnknown, "unexpected error"))
}

// Merge appends every error of other
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.Errors = append(l.Errors, other.Errors...)
}

// Len returns the number of collected errors
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Errors)
}

// Has reports whether any collected error carries code
func (l *List) Has(code ErrorCode) bool {
	if l == nil {
		return false
	}
	for _, err := range l.Errors {
		if err.Code == code {
			return true
		}
	}
	return false
}

// ByCode returns the collected errors carrying code
func (l *List) ByCode(code ErrorCode) []*LintError {
	var out []*LintError
	for _, err := range l.Errors {
		if err.Code == code {
			out = append(out, err)
		}
	}
	return out
}

// Sort orders errors by file, line, then message so batch output is stable
func (l *List) Sort() {
	sort.SliceStable(l.Errors, func(i, j int) bool {
		a, b := l.Errors[i], l.Errors[j]
		if a.File() != b.File() {
			return a.File() < b.File()
		}
		if a.Line() != b.Line() {
			return a.Line() < b.Line()
		}
		return a.Error() < b.Error()
	})
}

// Error implements the error interface
func (l *List) Error() string {
	if l.Len() == 0 {
		return ""
	}
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l.Errors))
	for _, err := range l.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ErrorOrNil returns nil for an empty list, the list otherwise
func (l *List) ErrorOrNil() error {
	if l.Len() == 0 {
		return nil
	}
	return l
}
