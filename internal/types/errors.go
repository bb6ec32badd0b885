package types

import (
	"errors"
	"fmt"
)

// Code is a stable error taxonomy tag so language bindings and CLI callers
// can branch on failure kind without string matching (§6, §7).
type Code string

const (
	CodeStorage        Code = "STORAGE_ERROR"
	CodeScan           Code = "SCAN_ERROR"
	CodeInit           Code = "INIT_ERROR"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeNotSupported   Code = "NOT_SUPPORTED"
)

// Error is the taxonomy-tagged error every exported operation returns on
// failure. It wraps an underlying cause and supports errors.Is/As via Unwrap.
type Error struct {
	Code      Code
	Operation string
	Reason    string // populated for CodeNotSupported; otherwise optional detail
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Operation, e.Cause)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Operation)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError wraps cause with a taxonomy code and operation name.
func NewError(code Code, operation string, cause error) *Error {
	return &Error{Code: code, Operation: operation, Cause: cause}
}

// NotSupported builds the explicit opt-out error for operations inapplicable
// to a backend (§4.1, §6, §8.1 invariant 19).
func NotSupported(operation, reason string) *Error {
	return &Error{Code: CodeNotSupported, Operation: operation, Reason: reason}
}

// IsNotSupported reports whether err is (or wraps) a NotSupported error.
func IsNotSupported(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == CodeNotSupported
}
