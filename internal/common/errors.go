package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure classes of the ingestion and retrieval flows. Storage, database and
// embedding failures abort the owning flow; retrieval failures fail a single
// question-answering request; fact-extraction parse failures are absorbed by
// the fact extractor and never surface here.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStorage         = errors.New("object storage error")
	ErrDatabase        = errors.New("database error")
	ErrExternalService = errors.New("external service error")
	ErrRetrieval       = errors.New("retrieval error")
	ErrInternal        = errors.New("internal error")
)

// NewAppError builds an AppError with a stable code.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
