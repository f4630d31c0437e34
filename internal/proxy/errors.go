package proxy

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

// ErrServerUnavailable reports that the background service could not be
// reached within the startup retry budget.
var ErrServerUnavailable = errors.New("service unavailable")

// ErrEmptyResponse reports that the service returned no output for a call.
var ErrEmptyResponse = errors.New("no output was generated")

// RemoteError carries the error message reported by the remote function.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// IsUnavailable reports whether err indicates the service cannot be reached,
// as opposed to a failure the service itself reported.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServerUnavailable) || errors.Is(err, unix.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
