package app

import (
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/purnamahesh/albatross/domain"
)

// Normalize converts a parsed syndication document into article records owned
// by the given feed. It never fails: absent fields become empty strings and
// entries whose publication date is missing or unparseable all receive one
// fallback timestamp, the UTC instant at which normalization of this
// document began. Entry order is preserved. Identifiers are not assigned
// here; that happens at the store write.
func Normalize(feed domain.Feed, doc *gofeed.Feed) []domain.Article {
	return normalizeAt(feed, doc, time.Now().UTC())
}

func normalizeAt(feed domain.Feed, doc *gofeed.Feed, fallback time.Time) []domain.Article {
	articles := make([]domain.Article, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item == nil {
			continue
		}
		published := fallback
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		articles = append(articles, domain.Article{
			FeedID:    feed.ID,
			URL:       item.Link,
			Title:     item.Title,
			Content:   item.Content,
			Read:      false,
			Published: published,
		})
	}
	return articles
}
