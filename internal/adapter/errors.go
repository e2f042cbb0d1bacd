package adapter

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Kind classifies gateway failures so handlers can pick a status code.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindUnauthenticated
	KindTokenExchange
	KindRemoteAPI
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindTokenExchange:
		return "token exchange"
	case KindRemoteAPI:
		return "remote api"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	// ErrConfiguration is returned when the OAuth client secret is missing or invalid.
	ErrConfiguration = &Error{Kind: KindConfiguration}

	// ErrUnauthenticated is returned when no usable credential exists.
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}

	// ErrTokenExchange is returned when the authorization code could not be exchanged.
	ErrTokenExchange = &Error{Kind: KindTokenExchange}

	// ErrRemoteAPI matches any failure reported by a Google API.
	ErrRemoteAPI = &Error{Kind: KindRemoteAPI}

	// ErrValidation is returned for malformed client input.
	ErrValidation = &Error{Kind: KindValidation}
)

// Error is a classified failure. Status and Message are only set for
// KindRemoteAPI and carry what the upstream API reported.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a classified error for op.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf returns a KindValidation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// RemoteAPI classifies a failed Google API call. The upstream HTTP status and
// message are kept when err is a *googleapi.Error.
func RemoteAPI(op string, err error) *Error {
	e := &Error{Kind: KindRemoteAPI, Op: op, Status: http.StatusBadGateway, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		e.Status = gerr.Code
		e.Message = gerr.Message
	}
	return e
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindRemoteAPI {
		return e.Status == http.StatusNotFound
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
