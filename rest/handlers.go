package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/purnamahesh/albatross/domain"
)

// Handler serves the thin CRUD surface over the durable store. The ingestion
// loop shares the same store but is never called from here; subscriptions it
// should pick up are discovered by re-querying storage each cycle.
type Handler struct {
	feeds    domain.FeedStore
	articles domain.ArticleStore
	log      *slog.Logger
}

func NewHandler(feeds domain.FeedStore, articles domain.ArticleStore, log *slog.Logger) *Handler {
	return &Handler{feeds: feeds, articles: articles, log: log.With("component", "rest")}
}

type subscribeRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type feedResponse struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
}

type articleResponse struct {
	ID        uuid.UUID `json:"id"`
	FeedID    uuid.UUID `json:"feed_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	Published time.Time `json:"published"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "up"})
}

func (h *Handler) SubscribeFeed(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}
	if strings.TrimSpace(req.URL) == "" || strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, errBody("url and title are required"))
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid feed url"))
	}

	feed, err := h.feeds.AddFeed(c.Request().Context(), domain.Feed{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.log.Error("subscribe failed", "url", req.URL, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("could not subscribe"))
	}
	h.log.Info("feed subscribed", "feed_id", feed.ID, "url", feed.URL)
	return c.JSON(http.StatusCreated, toFeedResponse(feed))
}

func (h *Handler) ListFeeds(c echo.Context) error {
	feeds, err := h.feeds.ListFeeds(c.Request().Context())
	if err != nil {
		h.log.Error("listing feeds failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("could not list feeds"))
	}
	out := make([]feedResponse, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, toFeedResponse(f))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UnsubscribeFeed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid feed id"))
	}
	deleted, err := h.feeds.DeleteFeed(c.Request().Context(), id)
	if err != nil {
		h.log.Error("unsubscribe failed", "feed_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("could not unsubscribe"))
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, errBody("feed not found"))
	}
	h.log.Info("feed unsubscribed", "feed_id", id)
	return c.JSON(http.StatusOK, map[string]string{"status": "unsubscribed"})
}

func (h *Handler) ListArticles(c echo.Context) error {
	var q domain.ArticleQuery
	if v := c.QueryParam("feed_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid feed_id"))
		}
		q.FeedID = &id
	}
	if v := c.QueryParam("unread_only"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errBody("invalid unread_only"))
		}
		q.UnreadOnly = unread
	}
	q.Limit = intParam(c, "limit")
	q.Offset = intParam(c, "offset")

	articles, err := h.articles.ListArticles(c.Request().Context(), q)
	if err != nil {
		h.log.Error("listing articles failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("could not list articles"))
	}
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetArticle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid article id"))
	}
	article, err := h.articles.GetArticle(c.Request().Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errBody("article not found"))
	}
	if err != nil {
		h.log.Error("fetching article failed", "article_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("could not fetch article"))
	}
	return c.JSON(http.StatusOK, toArticleResponse(article))
}

func (h *Handler) MarkArticleRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid article id"))
	}
	updated, err := h.articles.MarkArticleRead(c.Request().Context(), id)
	if err != nil {
		h.log.Error("marking article read failed", "article_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("could not mark article read"))
	}
	if !updated {
		return c.JSON(http.StatusNotFound, errBody("article not found"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "read"})
}

func toFeedResponse(f domain.Feed) feedResponse {
	return feedResponse{ID: f.ID, URL: f.URL, Title: f.Title, Description: f.Description, Active: f.Active}
}

func toArticleResponse(a domain.Article) articleResponse {
	return articleResponse{
		ID: a.ID, FeedID: a.FeedID, URL: a.URL, Title: a.Title,
		Content: a.Content, Read: a.Read, Published: a.Published,
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func intParam(c echo.Context, name string) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
