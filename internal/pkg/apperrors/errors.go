package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountNotVerified = errors.New("account not verified")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrDNIAlreadyExists      = errors.New("dni already exists")
	ErrInvalidVerifyCode     = errors.New("invalid or expired verification code")
	ErrAlreadyVerified       = errors.New("account already verified")
	ErrDefaultAdminProtected = errors.New("default admin cannot be modified")
)

// Subject errors
var (
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrSubjectAlreadyExists = errors.New("subject with this name and level already exists")
	ErrEnrollmentClosed     = errors.New("enrollment is closed for this subject")
	ErrAlreadyEnrolled      = errors.New("student already enrolled in this subject")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrSubjectAlreadyClosed = errors.New("subject is already closed")
)

// Exam errors
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrAlreadySubmitted   = errors.New("exam already submitted")
	ErrDueDatePassed      = errors.New("exam due date has passed")
	ErrAnswerSetNotFound  = errors.New("answer set not found")
	ErrNoReworkQuestions  = errors.New("no questions marked for rework")
	ErrInvalidQuestion    = errors.New("invalid question definition")
	ErrInvalidCorrections = errors.New("invalid corrections payload")
)

// Transcript errors
var (
	ErrTranscriptNotFound = errors.New("transcript not found")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError wrapping err
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a permission-denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}
