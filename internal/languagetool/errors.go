package languagetool

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no server is reachable and the executable to
	// spawn one is not installed.
	ErrNotFound = errors.New("languagetool not found")
	// ErrNotReady reports a request made before the server signalled readiness.
	ErrNotReady = errors.New("languagetool not ready")
)

// RequestError is a non-2xx reply from the server.
type RequestError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("languagetool %s: HTTP %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("languagetool %s: HTTP %d: %s", e.Endpoint, e.Status, e.Body)
}

// UnavailableError is a transport failure reaching the server.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("languagetool unavailable at %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
