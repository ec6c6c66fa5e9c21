package services

import "errors"

// ErrorKind classifies a provisioning failure. The HTTP layer performs
// a single mapping from kind to status code; nothing below it decides
// HTTP semantics.
type ErrorKind int

const (
	// KindInvalidRequest: the caller sent something unusable (empty
	// token, or a verified assertion missing required claims). Never
	// touches the account store.
	KindInvalidRequest ErrorKind = iota + 1

	// KindUnauthorized: the verifier rejected the token. Never touches
	// the account store.
	KindUnauthorized

	// KindInternal: unexpected store or provider failure. The detail is
	// logged, not returned to the caller.
	KindInternal
)

// Error is the typed failure returned by the provisioning service.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err, defaulting to KindInternal
// for anything untyped.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

func invalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

func unauthorized(message string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Err: err}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
