package rss

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/purnamahesh/albatross/domain"
)

// Fetcher retrieves and parses syndication feeds over HTTP. A single fetch is
// one GET with no retries; retry policy belongs to the ingestion cadence. The
// client timeout bounds how long a hung feed can stall a cycle.
type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = userAgent
	return &Fetcher{parser: p}
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	u, err := url.Parse(feedURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = errors.New("missing scheme or host")
		}
		return nil, &domain.FetchError{Kind: domain.FetchInvalidSource, URL: feedURL, Err: err}
	}

	doc, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, &domain.FetchError{Kind: classify(err), URL: feedURL, Err: err}
	}
	return doc, nil
}

func classify(err error) domain.FetchKind {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return domain.FetchNetwork
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domain.FetchNetwork
	}
	return domain.FetchParse
}
