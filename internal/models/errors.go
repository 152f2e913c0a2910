package models

import (
	"errors"
	"fmt"
)

// ErrorType represents the different categories of failures
type ErrorType int

const (
	ErrParse ErrorType = iota
	ErrCatalogNotFound
	ErrCatalogCorrupt
	ErrTransport
	ErrExtraction
	ErrIO
	ErrUnsupportedSourceType
	ErrAlreadyInstalled
	ErrPackageNotFound
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrParse:
		return "Parse"
	case ErrCatalogNotFound:
		return "CatalogNotFound"
	case ErrCatalogCorrupt:
		return "CatalogCorrupt"
	case ErrTransport:
		return "Transport"
	case ErrExtraction:
		return "Extraction"
	case ErrIO:
		return "IO"
	case ErrUnsupportedSourceType:
		return "UnsupportedSourceType"
	case ErrAlreadyInstalled:
		return "AlreadyInstalled"
	case ErrPackageNotFound:
		return "PackageNotFound"
	default:
		return "Unknown"
	}
}

// Error is a failure of a catalog or install operation.
// Subject names what failed (a path, a URL, an archive or a source).
type Error struct {
	Type    ErrorType
	Subject string
	Err     error
}

// NewError wraps err into a typed error.
func NewError(t ErrorType, subject string, err error) *Error {
	return &Error{
		Type:    t,
		Subject: subject,
		Err:     err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether err (or an error it wraps) is an *Error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Type == t {
			return true
		}
		err = e.Err
	}
	return false
}
