package fetcher

import (
	"fmt"
)

// NetworkError describes a connection, DNS, or body read failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned for a response that is neither 200 nor a
// followed redirect.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// RedirectLoopError is returned when a redirect chain is longer than the
// configured hop limit.
type RedirectLoopError struct {
	URL  string
	Hops int
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect limit exceeded after %d hops starting at %s", e.Hops, e.URL)
}

// InvalidContentError is returned when a response or a written file is not a
// usable image.
type InvalidContentError struct {
	URL    string
	Reason string
}

func (e *InvalidContentError) Error() string {
	return fmt.Sprintf("invalid content from %s: %s", e.URL, e.Reason)
}

// FileSystemError wraps a failure to create, write, or remove a destination
// file.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}
