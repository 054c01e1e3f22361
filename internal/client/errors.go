package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies why an upstream call produced no usable data
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindParse     ErrorKind = "parse"
)

// FetchError is returned for every failed upstream call.
// Callers show "no result" for all kinds; tests and logs use Kind.
type FetchError struct {
	Kind       ErrorKind
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: %s returned status %d", e.Source, e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s %s: %v", e.Source, e.URL, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s %s", e.Source, e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a FetchError anywhere in err's chain.
// Errors that are not FetchErrors report an empty kind.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// ParseError builds a parse-kind FetchError for adapters that decode
// payloads themselves
func ParseError(source, url string, err error) *FetchError {
	return &FetchError{Kind: KindParse, Source: source, URL: url, Err: err}
}

func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
