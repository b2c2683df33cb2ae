package paginator

import (
	"errors"
	"fmt"
)

// ErrorDomain is the domain tag carried by errors raised by the controller itself.
const ErrorDomain = "paginator"

// CodeUnknown is the generic error code used when no finer code applies.
const CodeUnknown = -1

// wrongKindMessage is the message reported for a source kind the controller
// cannot dispatch.
const wrongKindMessage = "Wrong pagination type"

// Common paginator errors.
var (
	ErrUnsupportedSourceKind = errors.New("unsupported source kind")
	ErrFetchInProgress       = errors.New("a page fetch is already in progress")
	ErrInvalidPageSize       = errors.New("page size must be >= 0")
	ErrNilSource             = errors.New("source cannot be nil")
	ErrNilSink               = errors.New("sink cannot be nil")
)

// Error is the structured failure payload delivered to a sink.
// Message is human readable; Domain and Code tag where it came from.
type Error struct {
	Domain  string `json:"domain"`
	Code    int    `json:"code"`
	Message string `json:"message"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause so errors.Is/As see through Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error with the given domain and message and CodeUnknown.
func NewError(domain, message string, cause error) *Error {
	return &Error{
		Domain:  domain,
		Code:    CodeUnknown,
		Message: message,
		Err:     cause,
	}
}

// wrongKindError is raised for KindDefault and any other unknown kind.
func wrongKindError(k Kind) *Error {
	return NewError(ErrorDomain, wrongKindMessage, fmt.Errorf("%w: %s", ErrUnsupportedSourceKind, k))
}

// asError normalises a source failure into an *Error tagged with the source kind.
// Errors that already are *Error are returned unchanged.
func asError(k Kind, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return NewError(ErrorDomain+"."+k.String(), err.Error(), err)
}
