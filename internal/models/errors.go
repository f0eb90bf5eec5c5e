package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDuplicateTitle     = "DUPLICATE_TITLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Field names the form field the error belongs to, if any.
	Field string
	Err   error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldError is a validation error attached to a single form field.
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError() *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: "Forbidden",
	}
}

func NewDuplicateEmailError() *AppError {
	return &AppError{
		Code:    CodeDuplicateEmail,
		Message: "You've already signed up with that email, please log in instead!",
		Field:   "email",
	}
}

func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

func NewDuplicateTitleError(err error) *AppError {
	return &AppError{
		Code:    CodeDuplicateTitle,
		Message: "That title is already taken.",
		Field:   "title",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
