package domain

import (
	"time"

	"github.com/google/uuid"
)

// Feed is a subscribed content source. The ingestion pipeline only ever
// reads feeds; rows are created and retired through the subscription API.
type Feed struct {
	ID          uuid.UUID
	URL         string
	Title       string
	Description string
	Active      bool
}

// Article is a single normalized entry belonging to one feed. Its URL is
// the deduplication key: at most one row exists per URL, enforced by the
// store rather than by in-process bookkeeping.
type Article struct {
	ID        uuid.UUID
	FeedID    uuid.UUID
	URL       string
	Title     string
	Content   string
	Read      bool
	Published time.Time
}

// ArticleQuery filters article listings.
type ArticleQuery struct {
	FeedID     *uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}
