// Package errors defines the coded error kinds used across the application.
// Each kind maps to one boundary behavior at the command router: what the
// user sees and what gets logged.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown         = "UNKNOWN"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeValidation      = "VALIDATION"
	CodeStorage         = "STORAGE"
	CodeNotFound        = "NOT_FOUND"
	CodeAnalysisParse   = "ANALYSIS_PARSE"
	CodeExternalService = "EXTERNAL_SERVICE"
	CodeConfig          = "CONFIG"
)

// ApplicationError is the interface implemented by all coded errors.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is the shared base for all coded error kinds.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *Error) Code() string { return e.code }

func (e *Error) Unwrap() error { return e.err }

// Code returns the code of err if it is an ApplicationError,
// or CodeUnknown if it isn't.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUnknown
}

// UnauthorizedError reports an identity outside the allow-list. The
// user-facing rendering must stay generic to avoid enumeration.
type UnauthorizedError struct{ base Error }

func (e *UnauthorizedError) Error() string { return e.base.Error() }
func (e *UnauthorizedError) Code() string  { return e.base.Code() }
func (e *UnauthorizedError) Unwrap() error { return e.base.Unwrap() }

func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{base: Error{code: CodeUnauthorized, message: message}}
}

// ValidationError reports malformed user input, such as a bad date token.
type ValidationError struct{ base Error }

func (e *ValidationError) Error() string { return e.base.Error() }
func (e *ValidationError) Code() string  { return e.base.Code() }
func (e *ValidationError) Unwrap() error { return e.base.Unwrap() }

func NewValidationError(message string, cause error) error {
	return &ValidationError{base: Error{code: CodeValidation, message: message, err: cause}}
}

// StorageError reports a filesystem failure in the entry store.
type StorageError struct{ base Error }

func (e *StorageError) Error() string { return e.base.Error() }
func (e *StorageError) Code() string  { return e.base.Code() }
func (e *StorageError) Unwrap() error { return e.base.Unwrap() }

func NewStorageError(message string, cause error) error {
	return &StorageError{base: Error{code: CodeStorage, message: message, err: cause}}
}

// NotFoundError reports a lookup for a date with no stored analysis.
// Not logged as an error at the boundary.
type NotFoundError struct{ base Error }

func (e *NotFoundError) Error() string { return e.base.Error() }
func (e *NotFoundError) Code() string  { return e.base.Code() }
func (e *NotFoundError) Unwrap() error { return e.base.Unwrap() }

func NewNotFoundError(message string, cause error) error {
	return &NotFoundError{base: Error{code: CodeNotFound, message: message, err: cause}}
}

// AnalysisParseError reports collaborator output the tolerant parser could
// not turn into a usable analysis (the rating is the mandatory field).
type AnalysisParseError struct{ base Error }

func (e *AnalysisParseError) Error() string { return e.base.Error() }
func (e *AnalysisParseError) Code() string  { return e.base.Code() }
func (e *AnalysisParseError) Unwrap() error { return e.base.Unwrap() }

func NewAnalysisParseError(message string, cause error) error {
	return &AnalysisParseError{base: Error{code: CodeAnalysisParse, message: message, err: cause}}
}

// ExternalServiceError reports a timeout or failure calling the analysis
// or speech collaborator.
type ExternalServiceError struct{ base Error }

func (e *ExternalServiceError) Error() string { return e.base.Error() }
func (e *ExternalServiceError) Code() string  { return e.base.Code() }
func (e *ExternalServiceError) Unwrap() error { return e.base.Unwrap() }

func NewExternalServiceError(message string, cause error) error {
	return &ExternalServiceError{base: Error{code: CodeExternalService, message: message, err: cause}}
}

// ConfigError reports invalid or missing configuration at startup.
type ConfigError struct{ base Error }

func (e *ConfigError) Error() string { return e.base.Error() }
func (e *ConfigError) Code() string  { return e.base.Code() }
func (e *ConfigError) Unwrap() error { return e.base.Unwrap() }

func NewConfigError(message string, cause error) error {
	return &ConfigError{base: Error{code: CodeConfig, message: message, err: cause}}
}
