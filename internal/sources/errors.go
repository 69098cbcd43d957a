package sources

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAuth      ErrorKind = "auth"
	KindSchema    ErrorKind = "schema"
	KindTimeout   ErrorKind = "timeout"
	KindCanceled  ErrorKind = "canceled"
	KindConfig    ErrorKind = "config"
)

// AdapterError fails a whole adapter call. It is scoped to one source and
// never aborts a collection run on its own.
type AdapterError struct {
	Source  string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %s: %v", e.Source, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Source, e.Kind, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func newAdapterError(source string, kind ErrorKind, err error, format string, args ...any) *AdapterError {
	return &AdapterError{Source: source, Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsAdapterError converts any adapter failure into an AdapterError, mapping
// context expiry to the timeout and canceled kinds.
func AsAdapterError(source string, err error) *AdapterError {
	if err == nil {
		return nil
	}

	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		if adapterErr.Kind == KindTransport {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				return newAdapterError(source, KindTimeout, err, "fetch timed out")
			case errors.Is(err, context.Canceled):
				return newAdapterError(source, KindCanceled, err, "fetch canceled")
			}
		}
		return adapterErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newAdapterError(source, KindTimeout, err, "fetch timed out")
	case errors.Is(err, context.Canceled):
		return newAdapterError(source, KindCanceled, err, "fetch canceled")
	default:
		return newAdapterError(source, KindTransport, err, "fetch failed")
	}
}
