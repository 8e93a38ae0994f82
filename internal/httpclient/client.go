// Package httpclient builds the HTTP clients used against external APIs.
package httpclient

import (
	"net/http"
	"time"
)

// userAgentTransport stamps a fixed User-Agent on every outgoing request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewIdentifyingHTTPClient creates an HTTP client that identifies itself
// with the given User-Agent on every request, as external APIs with client
// signature policies expect.
func NewIdentifyingHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}
