package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/purnamahesh/albatross/domain"
)

// Ingestor is the background fetch-normalize-persist loop. It runs for the
// lifetime of the process: each cycle lists the active feeds, ingests every
// one of them, then sleeps for the configured interval measured from cycle
// end, so a slow cycle pushes out the next one instead of overlapping it.
//
// Nothing in the loop is fatal. A failed feed listing skips the cycle; a
// failed fetch is recorded in that feed's outcome and the cycle moves on to
// the next feed; a failed article write skips that article only.
type Ingestor struct {
	feeds    domain.FeedStore
	articles domain.ArticleStore
	fetcher  domain.FeedFetcher
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// CycleReport accumulates per-feed outcomes for one pass over the active
// feeds, for observability; the loop itself never acts on it.
type CycleReport struct {
	Feeds    int
	Inserted int
	Skipped  int
	Outcomes []FeedOutcome
}

// FeedOutcome is the result of ingesting a single feed within a cycle.
type FeedOutcome struct {
	FeedID   uuid.UUID
	URL      string
	Inserted int
	Skipped  int
	Err      error
}

func NewIngestor(feeds domain.FeedStore, articles domain.ArticleStore, fetcher domain.FeedFetcher, interval time.Duration, log *slog.Logger) *Ingestor {
	return &Ingestor{
		feeds:    feeds,
		articles: articles,
		fetcher:  fetcher,
		interval: interval,
		log:      log.With("component", "ingest"),
	}
}

func (s *Ingestor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.stopCh = make(chan struct{})
	s.started = true
	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

func (s *Ingestor) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Ingestor) loop(ctx context.Context) {
	defer s.wg.Done()
	s.log.Info("ingestion loop started", "interval", s.interval)
	for {
		s.RunCycle(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("ingestion loop stopped", "reason", ctx.Err())
			return
		case <-s.stopCh:
			s.log.Info("ingestion loop stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// RunCycle performs one pass over the active feeds. Exported so a cycle can
// be driven directly in tests or triggered outside the loop cadence.
func (s *Ingestor) RunCycle(ctx context.Context) CycleReport {
	var report CycleReport

	feeds, err := s.feeds.ListActiveFeeds(ctx)
	if err != nil {
		s.log.Error("listing active feeds failed, skipping cycle", "error", err)
		return report
	}

	report.Feeds = len(feeds)
	for _, feed := range feeds {
		outcome := s.ingestFeed(ctx, feed)
		if outcome.Err != nil {
			s.log.Error("feed ingestion failed", "feed_id", feed.ID, "url", feed.URL, "error", outcome.Err)
		} else {
			s.log.Info("feed ingested", "feed_id", feed.ID, "url", feed.URL,
				"inserted", outcome.Inserted, "skipped", outcome.Skipped)
		}
		report.Inserted += outcome.Inserted
		report.Skipped += outcome.Skipped
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}

// ingestFeed is the error boundary around a single feed: a fetch failure is
// captured in the outcome and never propagates to the rest of the cycle.
func (s *Ingestor) ingestFeed(ctx context.Context, feed domain.Feed) FeedOutcome {
	outcome := FeedOutcome{FeedID: feed.ID, URL: feed.URL}

	doc, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	for _, article := range Normalize(feed, doc) {
		inserted, err := s.articles.InsertArticleIfAbsent(ctx, article)
		if err != nil {
			s.log.Error("article write failed", "feed_id", feed.ID, "url", article.URL, "error", err)
			continue
		}
		if inserted {
			outcome.Inserted++
		} else {
			outcome.Skipped++
		}
	}
	return outcome
}
