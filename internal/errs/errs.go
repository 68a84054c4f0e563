package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind categorizes a failure so callers can react without string matching.
type Kind string

const (
	KindInvalidRequest    Kind = "invalid_request"
	KindPageOutOfRange    Kind = "page_out_of_range"
	KindMalformedDocument Kind = "malformed_document"
	KindFetch             Kind = "fetch_error"
	KindTimeout           Kind = "timeout"
	KindConfiguration     Kind = "configuration_error"
)

// Error is a categorized failure surfaced to the caller of the pipeline.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func InvalidRequest(format string, args ...any) *Error {
	return newf(KindInvalidRequest, nil, format, args...)
}

func PageOutOfRange(page, pageCount int) *Error {
	return newf(KindPageOutOfRange, nil, "page %d outside 1..%d", page, pageCount)
}

func MalformedDocument(cause error) *Error {
	return newf(KindMalformedDocument, cause, "not a readable pdf")
}

func Fetch(cause error, format string, args ...any) *Error {
	return newf(KindFetch, cause, format, args...)
}

func Timeout(cause error, format string, args ...any) *Error {
	return newf(KindTimeout, cause, format, args...)
}

// Transport categorizes a failed outbound call: deadlines and network
// timeouts become timeout errors, everything else a fetch error.
func Transport(cause error, format string, args ...any) *Error {
	var netErr net.Error
	if errors.Is(cause, context.DeadlineExceeded) || (errors.As(cause, &netErr) && netErr.Timeout()) {
		return Timeout(cause, format, args...)
	}
	return Fetch(cause, format, args...)
}

func Configuration(format string, args ...any) *Error {
	return newf(KindConfiguration, nil, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind. A timeout also counts as a
// fetch error.
func Is(err error, kind Kind) bool {
	k := KindOf(err)
	if k == kind {
		return true
	}
	return kind == KindFetch && k == KindTimeout
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidRequest, KindPageOutOfRange:
		return http.StatusBadRequest
	case KindMalformedDocument:
		return http.StatusUnprocessableEntity
	case KindFetch:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
