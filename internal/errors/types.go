package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Codes for rejected user input. Each of them leaves the previous state untouched.
const (
	CodeEmptyPageName    = "ERR_EMPTY_PAGE_NAME"
	CodeDuplicatePath    = "ERR_DUPLICATE_PATH"
	CodeDeleteHomePage   = "ERR_DELETE_HOME_PAGE"
	CodeDeleteLastPage   = "ERR_DELETE_LAST_PAGE"
	CodeHomePathLocked   = "ERR_HOME_PATH_LOCKED"
	CodePageNotFound     = "ERR_PAGE_NOT_FOUND"
	CodeElementNotFound  = "ERR_ELEMENT_NOT_FOUND"
	CodeTemplateNotFound = "ERR_TEMPLATE_NOT_FOUND"
	CodeInvalidProp      = "ERR_INVALID_PROP"
	CodeNothingToUndo    = "ERR_NOTHING_TO_UNDO"
	CodeNothingToRedo    = "ERR_NOTHING_TO_REDO"
	CodeProjectNotFound  = "ERR_PROJECT_NOT_FOUND"
	CodeInvalidProject   = "ERR_INVALID_PROJECT"
	CodeCatalogIntegrity = "ERR_CATALOG_INTEGRITY"
	CodeKeyNotFound      = "ERR_KEY_NOT_FOUND"
	CodeInvalidConfig    = "ERR_INVALID_CONFIG"
)

// BuilderError is a structured error type with context.
type BuilderError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Recoverable bool
}

// Error implements the error interface.
func (e *BuilderError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *BuilderError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so callers can compare against a bare template error.
func (e *BuilderError) Is(target error) bool {
	var t *BuilderError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *BuilderError) WithContext(key string, value interface{}) *BuilderError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *BuilderError) WithComponent(component string) *BuilderError {
	e.Component = component

	return e
}

// WithCause attaches an underlying error.
func (e *BuilderError) WithCause(cause error) *BuilderError {
	e.Cause = cause

	return e
}

// NewValidationError creates a validation error. Validation errors are recoverable.
func NewValidationError(code, message string) *BuilderError {
	return &BuilderError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *BuilderError {
	return &BuilderError{
		Type:        ErrorTypeNotFound,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConflictError creates a conflict error.
func NewConflictError(code, message string) *BuilderError {
	return &BuilderError{
		Type:        ErrorTypeConflict,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewStorageError creates a storage error.
func NewStorageError(message string, cause error) *BuilderError {
	return &BuilderError{
		Type:    ErrorTypeStorage,
		Code:    "ERR_STORAGE",
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(message string, cause error) *BuilderError {
	return &BuilderError{
		Type:    ErrorTypeIO,
		Code:    "ERR_IO",
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *BuilderError {
	return &BuilderError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *BuilderError {
	return &BuilderError{
		Type:    ErrorTypeInternal,
		Code:    "ERR_INTERNAL",
		Message: message,
		Cause:   cause,
	}
}

// Wrap wraps err as an internal error unless it already is a BuilderError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var be *BuilderError
	if errors.As(err, &be) {
		return fmt.Errorf("%s: %w", message, err)
	}

	return NewInternalError(message, err)
}

// IsUserError reports whether err is a recoverable rejection of user input.
func IsUserError(err error) bool {
	var be *BuilderError
	if !errors.As(err, &be) {
		return false
	}

	return be.Recoverable && (be.Type == ErrorTypeValidation ||
		be.Type == ErrorTypeNotFound ||
		be.Type == ErrorTypeConflict)
}

// HasCode reports whether err carries the given code anywhere in its chain.
// Joined errors are searched branch by branch.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if be, ok := err.(*BuilderError); ok && be.Code == code {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return HasCode(x.Unwrap(), code)
	}

	return false
}

// GetType returns the error type if err is a BuilderError.
func GetType(err error) ErrorType {
	var be *BuilderError
	if errors.As(err, &be) {
		return be.Type
	}

	return ErrorTypeInternal
}

// AsBuilderError returns the first BuilderError in err's chain.
func AsBuilderError(err error) (*BuilderError, bool) {
	var be *BuilderError
	if errors.As(err, &be) {
		return be, true
	}

	return nil, false
}
