package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/purnamahesh/albatross/domain"
)

// Repository implements domain.FeedStore and domain.ArticleStore on a shared
// *sql.DB pool. The pool is used concurrently by the ingestion loop and the
// REST handlers; no statement here assumes exclusive access.
type Repository struct{ db *sql.DB }

func New(db *sql.DB) *Repository { return &Repository{db: db} }

// Ensure bootstraps the schema. The UNIQUE constraint on articles.url is the
// single arbiter of article identity across concurrent writers.
func (r *Repository) Ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS feeds (
    id UUID PRIMARY KEY,
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE IF NOT EXISTS articles (
    id UUID PRIMARY KEY,
    feed_id UUID NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    published TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func (r *Repository) AddFeed(ctx context.Context, f domain.Feed) (domain.Feed, error) {
	f.ID = uuid.New()
	f.Active = true
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feeds (id, url, title, description, active) VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.URL, f.Title, nullable(f.Description), f.Active)
	if err != nil {
		return domain.Feed{}, err
	}
	return f, nil
}

func (r *Repository) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	return scanFeeds(r.db.QueryContext(ctx,
		`SELECT id, url, title, description, active FROM feeds ORDER BY title`))
}

func (r *Repository) ListActiveFeeds(ctx context.Context) ([]domain.Feed, error) {
	return scanFeeds(r.db.QueryContext(ctx,
		`SELECT id, url, title, description, active FROM feeds WHERE active = TRUE ORDER BY title`))
}

func (r *Repository) DeleteFeed(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// InsertArticleIfAbsent writes an article unless one with the same URL
// already exists. A unique violation raced past ON CONFLICT by a concurrent
// writer is still a no-op, never an error.
func (r *Repository) InsertArticleIfAbsent(ctx context.Context, a domain.Article) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, feed_id, url, title, content, read, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (url) DO NOTHING`,
		uuid.New(), a.FeedID, a.URL, a.Title, a.Content, a.Read, a.Published)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return false, nil
		}
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *Repository) ListArticles(ctx context.Context, q domain.ArticleQuery) ([]domain.Article, error) {
	query := `SELECT id, feed_id, url, title, content, read, published FROM articles`
	var conds []string
	var args []any
	if q.FeedID != nil {
		args = append(args, *q.FeedID)
		conds = append(conds, `feed_id = $1`)
	}
	if q.UnreadOnly {
		conds = append(conds, `read = FALSE`)
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY published DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT ` + placeholder(len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += ` OFFSET ` + placeholder(len(args))
	}
	return scanArticles(r.db.QueryContext(ctx, query, args...))
}

func (r *Repository) GetArticle(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, feed_id, url, title, content, read, published FROM articles WHERE id = $1`, id)
	var a domain.Article
	err := row.Scan(&a.ID, &a.FeedID, &a.URL, &a.Title, &a.Content, &a.Read, &a.Published)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, err
	}
	return a, nil
}

func (r *Repository) MarkArticleRead(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE articles SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func scanFeeds(rows *sql.Rows, err error) ([]domain.Feed, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Feed
	for rows.Next() {
		var f domain.Feed
		var desc sql.NullString
		if err := rows.Scan(&f.ID, &f.URL, &f.Title, &desc, &f.Active); err != nil {
			return nil, err
		}
		f.Description = desc.String
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanArticles(rows *sql.Rows, err error) ([]domain.Article, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.FeedID, &a.URL, &a.Title, &a.Content, &a.Read, &a.Published); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
