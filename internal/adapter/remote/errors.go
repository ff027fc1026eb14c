package remote

import (
	"errors"
	"fmt"
)

// ErrRemoteDisabled is returned when remote calls are turned off and no
// fallback is defined for the operation.
var ErrRemoteDisabled = errors.New("remote route service disabled")

// TransportError means no usable response arrived: the network was
// unreachable, the request timed out, or the circuit breaker was open.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError means the service answered with a non-2xx status.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// DecodeError means the response body could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Outcome names the error kind for logs and metrics.
func Outcome(err error) string {
	var (
		te *TransportError
		se *ServerError
		de *DecodeError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRemoteDisabled):
		return "disabled"
	case errors.As(err, &te):
		return "transport_error"
	case errors.As(err, &se):
		return "server_error"
	case errors.As(err, &de):
		return "decode_error"
	default:
		return "error"
	}
}
