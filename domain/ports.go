package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
)

// FeedStore is the persistence port for subscribed feeds.
type FeedStore interface {
	AddFeed(ctx context.Context, f Feed) (Feed, error)
	ListFeeds(ctx context.Context) ([]Feed, error)
	ListActiveFeeds(ctx context.Context) ([]Feed, error)
	DeleteFeed(ctx context.Context, id uuid.UUID) (bool, error)
}

// ArticleStore is the persistence port for ingested articles.
// InsertArticleIfAbsent must be safe for concurrent callers: the store's
// uniqueness constraint on the article URL is the arbiter, and a conflicting
// insert reports inserted=false rather than an error.
type ArticleStore interface {
	InsertArticleIfAbsent(ctx context.Context, a Article) (inserted bool, err error)
	ListArticles(ctx context.Context, q ArticleQuery) ([]Article, error)
	GetArticle(ctx context.Context, id uuid.UUID) (Article, error)
	MarkArticleRead(ctx context.Context, id uuid.UUID) (bool, error)
}

// FeedFetcher retrieves a feed URL over the network and parses it into a
// syndication document.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}
