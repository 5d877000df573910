package dns

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is wrapped by the ProviderError returned when a record
// lookup yields no matches. The record must be created in the provider first.
var ErrRecordNotFound = errors.New("record not found")

// TransportError reports a failure to reach a remote service at all:
// connection errors, timeouts, or a non-2xx answer from the IP lookup service.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports a non-2xx or malformed response from the DNS provider.
type ProviderError struct {
	Op         string
	StatusCode int    // 0 when the response itself was fine but its body was not
	Body       string // truncated response body
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" returned status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }
