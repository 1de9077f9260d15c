// Package apperrors defines the application error taxonomy.
//
// Validation failures are surfaced as distinct kinds rather than a
// single message-carrying error; the HTTP adapter switches on the kind
// to choose a status code. Messages are human-readable but stable;
// existing clients substring-match on them.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindIllegalTransition
	KindAccountInactive
	KindCurrencyMismatch
	KindUnbalanced
	KindInsufficientFunds
	KindSameAccount
	KindNotReversible
	KindValidation
)

// Error is an application error carrying a kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Conflict creates a uniqueness-violation error.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// IllegalTransition creates a state-machine rejection error.
func IllegalTransition(format string, args ...any) *Error {
	return New(KindIllegalTransition, format, args...)
}

// AccountInactive creates an inactive-account error.
func AccountInactive(format string, args ...any) *Error {
	return New(KindAccountInactive, format, args...)
}

// CurrencyMismatch creates a currency disagreement error.
func CurrencyMismatch(format string, args ...any) *Error {
	return New(KindCurrencyMismatch, format, args...)
}

// Unbalanced creates an unbalanced-posting error.
func Unbalanced(format string, args ...any) *Error {
	return New(KindUnbalanced, format, args...)
}

// InsufficientFunds creates an insufficient-balance error.
func InsufficientFunds(format string, args ...any) *Error {
	return New(KindInsufficientFunds, format, args...)
}

// SameAccount creates a same-source-and-destination error.
func SameAccount(format string, args ...any) *Error {
	return New(KindSameAccount, format, args...)
}

// NotReversible creates a reversal-rejection error.
func NotReversible(format string, args ...any) *Error {
	return New(KindNotReversible, format, args...)
}

// Validation creates an input-validation error.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// KindOf returns the kind of err, or KindUnknown for non-application errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
