package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purnamahesh/albatross/domain"
)

type fakeFeedStore struct {
	mu      sync.RWMutex
	feeds   []domain.Feed
	listErr error
}

func (s *fakeFeedStore) AddFeed(ctx context.Context, f domain.Feed) (domain.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = uuid.New()
	f.Active = true
	s.feeds = append(s.feeds, f)
	return f, nil
}

func (s *fakeFeedStore) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Feed(nil), s.feeds...), nil
}

func (s *fakeFeedStore) ListActiveFeeds(ctx context.Context) ([]domain.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Feed
	for _, f := range s.feeds {
		if f.Active {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeFeedStore) DeleteFeed(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.feeds {
		if f.ID == id {
			s.feeds = append(s.feeds[:i], s.feeds[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeArticleStore struct {
	mu       sync.RWMutex
	byURL    map[string]domain.Article
	failURLs map[string]bool
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{byURL: map[string]domain.Article{}, failURLs: map[string]bool{}}
}

func (s *fakeArticleStore) InsertArticleIfAbsent(ctx context.Context, a domain.Article) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failURLs[a.URL] {
		return false, errors.New("write failed")
	}
	if _, ok := s.byURL[a.URL]; ok {
		return false, nil
	}
	a.ID = uuid.New()
	s.byURL[a.URL] = a
	return true, nil
}

func (s *fakeArticleStore) ListArticles(ctx context.Context, q domain.ArticleQuery) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Article
	for _, a := range s.byURL {
		if q.FeedID != nil && a.FeedID != *q.FeedID {
			continue
		}
		if q.UnreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeArticleStore) GetArticle(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.byURL {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Article{}, domain.ErrNotFound
}

func (s *fakeArticleStore) MarkArticleRead(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for url, a := range s.byURL {
		if a.ID == id {
			a.Read = true
			s.byURL[url] = a
			return true, nil
		}
	}
	return false, nil
}

type fakeFetcher struct {
	docs map[string]*gofeed.Feed
	errs map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if err, ok := f.errs[feedURL]; ok {
		return nil, err
	}
	if doc, ok := f.docs[feedURL]; ok {
		return doc, nil
	}
	return nil, &domain.FetchError{Kind: domain.FetchNetwork, URL: feedURL, Err: errors.New("no such feed")}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCycleEndToEnd(t *testing.T) {
	feeds := &fakeFeedStore{}
	feed, err := feeds.AddFeed(context.Background(), domain.Feed{URL: "https://x/feed", Title: "x"})
	require.NoError(t, err)

	dated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{docs: map[string]*gofeed.Feed{
		"https://x/feed": {Items: []*gofeed.Item{
			{Title: "first", Link: "https://x/a", Published: "2024-03-01T12:00:00Z", PublishedParsed: &dated},
			{Title: "second", Link: "https://x/b"},
		}},
	}}

	articles := newFakeArticleStore()
	ing := NewIngestor(feeds, articles, fetcher, time.Minute, testLogger())

	before := time.Now().UTC()
	report := ing.RunCycle(context.Background())
	after := time.Now().UTC()

	assert.Equal(t, 1, report.Feeds)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Skipped)

	a, ok := articles.byURL["https://x/a"]
	require.True(t, ok)
	assert.True(t, a.Published.Equal(dated))
	assert.False(t, a.Read)
	assert.Equal(t, feed.ID, a.FeedID)

	b, ok := articles.byURL["https://x/b"]
	require.True(t, ok)
	assert.False(t, b.Read)
	assert.False(t, b.Published.Before(before))
	assert.False(t, b.Published.After(after))

	// Same cycle again: no new articles, everything dedupes by URL.
	report = ing.RunCycle(context.Background())
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 2, report.Skipped)
	assert.Len(t, articles.byURL, 2)
}

func TestRunCycleIsolatesFeedFailures(t *testing.T) {
	feeds := &fakeFeedStore{}
	broken, err := feeds.AddFeed(context.Background(), domain.Feed{URL: "https://down/feed", Title: "down"})
	require.NoError(t, err)
	_, err = feeds.AddFeed(context.Background(), domain.Feed{URL: "https://up/feed", Title: "up"})
	require.NoError(t, err)

	fetcher := &fakeFetcher{
		errs: map[string]error{
			"https://down/feed": &domain.FetchError{Kind: domain.FetchNetwork, URL: "https://down/feed", Err: errors.New("unreachable")},
		},
		docs: map[string]*gofeed.Feed{
			"https://up/feed": {Items: []*gofeed.Item{{Title: "ok", Link: "https://up/1"}}},
		},
	}

	articles := newFakeArticleStore()
	ing := NewIngestor(feeds, articles, fetcher, time.Minute, testLogger())

	report := ing.RunCycle(context.Background())

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, broken.ID, report.Outcomes[0].FeedID)
	assert.Error(t, report.Outcomes[0].Err)
	assert.NoError(t, report.Outcomes[1].Err)
	assert.Equal(t, 1, report.Inserted)
	assert.Contains(t, articles.byURL, "https://up/1")
}

func TestRunCycleSkipsCycleWhenListingFails(t *testing.T) {
	feeds := &fakeFeedStore{listErr: errors.New("storage unavailable")}
	articles := newFakeArticleStore()
	ing := NewIngestor(feeds, articles, &fakeFetcher{}, time.Minute, testLogger())

	report := ing.RunCycle(context.Background())

	assert.Equal(t, 0, report.Feeds)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, articles.byURL)
}

func TestRunCycleWriteFailureSkipsArticleOnly(t *testing.T) {
	feeds := &fakeFeedStore{}
	_, err := feeds.AddFeed(context.Background(), domain.Feed{URL: "https://x/feed", Title: "x"})
	require.NoError(t, err)

	fetcher := &fakeFetcher{docs: map[string]*gofeed.Feed{
		"https://x/feed": {Items: []*gofeed.Item{
			{Link: "https://x/bad"},
			{Link: "https://x/good"},
		}},
	}}

	articles := newFakeArticleStore()
	articles.failURLs["https://x/bad"] = true
	ing := NewIngestor(feeds, articles, fetcher, time.Minute, testLogger())

	report := ing.RunCycle(context.Background())

	assert.Equal(t, 1, report.Inserted)
	assert.NotContains(t, articles.byURL, "https://x/bad")
	assert.Contains(t, articles.byURL, "https://x/good")
	require.Len(t, report.Outcomes, 1)
	assert.NoError(t, report.Outcomes[0].Err, "a write failure must not fail the feed outcome")
}

func TestIngestorStartStop(t *testing.T) {
	feeds := &fakeFeedStore{}
	ing := NewIngestor(feeds, newFakeArticleStore(), &fakeFetcher{}, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, ing.Start(ctx))
	require.NoError(t, ing.Start(ctx), "second start is a no-op")
	ing.Stop()
	ing.Stop() // idempotent
}
