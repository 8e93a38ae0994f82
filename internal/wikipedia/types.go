// Package wikipedia provides a client for the MediaWiki Action API.
// This package centralizes all Wikipedia API interactions for the application.
package wikipedia

import (
	"encoding/json"
	"fmt"
)

// SearchHit is a single page hit returned by the full-text search endpoint.
type SearchHit struct {
	Title   string `json:"title"`
	PageID  int    `json:"pageid"`
	Snippet string `json:"snippet"`
}

// Page is the rendered content of a single article with redirects resolved.
type Page struct {
	Title    string
	HTML     string
	Wikitext string
}

// searchResponse is the wire format of action=query&list=search.
type searchResponse struct {
	Query struct {
		Search []SearchHit `json:"search"`
	} `json:"query"`
	Error *apiErrorPayload `json:"error"`
}

// parseResponse is the wire format of action=parse.
type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  struct {
			Content string `json:"*"`
		} `json:"text"`
		Wikitext struct {
			Content string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
	Error *apiErrorPayload `json:"error"`
}

// apiErrorPayload is the "error" object MediaWiki embeds in a 200 response.
type apiErrorPayload struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// APIError represents an error payload from the MediaWiki API.
type APIError struct {
	Code     string
	Info     string
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("MediaWiki API error: %s (code: %s, endpoint: %s)", e.Info, e.Code, e.Endpoint)
}

// TransportError wraps a transport-level failure (timeout, connection
// refused, non-2xx status). The retrieval loop treats it as "skip this
// candidate" rather than a fatal error.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("MediaWiki transport error: %v (endpoint: %s)", e.Err, e.Endpoint)
	}
	return fmt.Sprintf("MediaWiki transport error: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// decodeAPIError extracts a typed *APIError from a raw response body if the
// payload carries an "error" key, otherwise returns nil.
func decodeAPIError(body []byte, endpoint string) *APIError {
	var probe struct {
		Error *apiErrorPayload `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Error == nil {
		return nil
	}
	return &APIError{Code: probe.Error.Code, Info: probe.Error.Info, Endpoint: endpoint}
}
