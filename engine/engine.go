// Package engine owns the HTTP side of a portal query: the per-attempt
// session, redirect cleanup and body decoding.
package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Page is one HTTP response as seen by the fetcher.
type Page struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string

	// Bytes is the declared Content-Length, or len(Body) when the header is
	// absent or malformed.
	Bytes int64
}

// IsRedirect reports whether the page is the portal's search redirect.
func (p *Page) IsRedirect() bool {
	return p.StatusCode == http.StatusFound
}

// TransportError marks failures at the connection level: dial, TLS,
// timeout, redirect loops or a broken body stream.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("engine: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err, or anything it wraps, is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
