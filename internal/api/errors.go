package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sm-junior0/ndarehe-sub001/internal/auth"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindAuth      ErrorKind = "auth"
	KindTransport ErrorKind = "transport"
	KindHTTP      ErrorKind = "http"
	KindEnvelope  ErrorKind = "envelope"
	KindCanceled  ErrorKind = "canceled"
)

// TransportError is a network level failure: no HTTP response was read.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response. Message holds the server's envelope
// error text when the body carried one.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// EnvelopeError is a 2xx response whose envelope reported success=false or
// could not be decoded.
type EnvelopeError struct {
	Message string
	Err     error
}

func (e *EnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("envelope: %s: %v", e.Message, e.Err)
	}
	return "envelope: " + e.Message
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

func newHTTPError(status int, body []byte) *HTTPError {
	herr := &HTTPError{Status: status}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		herr.Message = env.message()
	}
	return herr
}

// Kind reports which part of the error taxonomy err belongs to.
func Kind(err error) ErrorKind {
	var (
		herr *HTTPError
		eerr *EnvelopeError
		terr *TransportError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrTokenExpired):
		return KindAuth
	case errors.As(err, &herr):
		if herr.Status == http.StatusUnauthorized {
			return KindAuth
		}
		return KindHTTP
	case errors.As(err, &eerr):
		return KindEnvelope
	case errors.As(err, &terr):
		if isCanceled(terr.Err) {
			return KindCanceled
		}
		return KindTransport
	case isCanceled(err):
		return KindCanceled
	default:
		return KindTransport
	}
}

// Message returns the text to show an operator: the server's message when
// one was provided, otherwise fallback.
func Message(err error, fallback string) string {
	var (
		herr *HTTPError
		eerr *EnvelopeError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrNoToken):
		return "Not signed in: admin token is missing"
	case errors.Is(err, auth.ErrTokenExpired):
		return "Session expired: admin token is no longer valid"
	case errors.As(err, &herr) && strings.TrimSpace(herr.Message) != "":
		return herr.Message
	case errors.As(err, &eerr) && eerr.Err == nil && strings.TrimSpace(eerr.Message) != "":
		return eerr.Message
	default:
		return fallback
	}
}
