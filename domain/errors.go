package domain

import (
	"errors"
	"fmt"
)

// FetchKind classifies fetch failures.
type FetchKind string

const (
	// FetchInvalidSource means the feed URL itself is malformed.
	FetchInvalidSource FetchKind = "invalid_source"
	// FetchNetwork covers connection failures, timeouts and non-2xx responses.
	FetchNetwork FetchKind = "network"
	// FetchParse means the response body is not a valid syndication document.
	FetchParse FetchKind = "parse"
)

// FetchError is returned by FeedFetcher implementations. It is reported and
// logged by the ingestion loop, never fatal to the process.
type FetchError struct {
	Kind FetchKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrNotFound is returned by store lookups for absent rows.
var ErrNotFound = errors.New("not found")
