package scraper

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrPolicyDenied indicates robots.txt disallows the URL; no network
// call was made.
var ErrPolicyDenied = errors.New("fetch denied by robots policy")

// ErrUnavailable is the terminal fetch result after all proxies and the
// direct fallback have been exhausted.
var ErrUnavailable = errors.New("page unavailable")

// TransportError is a connection or proxy level fault. It is retryable
// by rotating to the next proxy.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport fault fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError is a protocol-level fault (typically a non-2xx HTTP
// status). It is not retryable.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("request failed for %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request failed for %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// RenderError is a headless-browser fault, including page-load timeouts.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// classifyFetchError maps an error reported by the HTTP layer onto the
// fault taxonomy. Connection-level failures become TransportError;
// everything else, including HTTP status errors, becomes RequestError.
func classifyFetchError(rawURL string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	if statusCode >= 400 {
		return &RequestError{URL: rawURL, StatusCode: statusCode, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransportError{URL: rawURL, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &TransportError{URL: rawURL, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &TransportError{URL: rawURL, Err: err}
	}
	return &RequestError{URL: rawURL, Err: err}
}

// isTransportFault reports whether err should trigger proxy rotation.
func isTransportFault(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
