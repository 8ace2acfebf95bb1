package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solodko/storefront/internal/domain/news"
)

const (
	newsColumns = `id, title, content, summary, date, author, main_image, images_urls`

	listNewsSQL = `SELECT ` + newsColumns + ` FROM news ORDER BY date DESC`

	getNewsByIDSQL = `SELECT ` + newsColumns + ` FROM news WHERE id = $1`

	listNewsIDsSQL = `SELECT id FROM news ORDER BY id`

	insertNewsSQL = `INSERT INTO news (` + newsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updateNewsSQL = `UPDATE news
		SET title = $2, content = $3, summary = $4, date = $5,
		    author = $6, main_image = $7, images_urls = $8
		WHERE id = $1`

	upsertNewsSQL = insertNewsSQL + `
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			summary = EXCLUDED.summary,
			date = EXCLUDED.date,
			author = EXCLUDED.author,
			main_image = EXCLUDED.main_image,
			images_urls = EXCLUDED.images_urls`

	deleteNewsSQL = `DELETE FROM news WHERE id = $1`
)

var _ news.Repository = (*NewsRepository)(nil)

// NewsRepository implements news.Repository backed by PostgreSQL.
type NewsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository returns a NewsRepository that uses the given pool.
func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

// List returns all articles ordered by publication date, newest first.
func (r *NewsRepository) List(ctx context.Context) ([]news.Article, error) {
	rows, err := r.pool.Query(ctx, listNewsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing news: %w", err)
	}
	return pgx.CollectRows(rows, scanArticle)
}

// GetByID returns a single article by its identifier.
func (r *NewsRepository) GetByID(ctx context.Context, id string) (*news.Article, error) {
	rows, err := r.pool.Query(ctx, getNewsByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting article %q: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanArticle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, news.ErrNotFound
		}
		return nil, fmt.Errorf("getting article %q: %w", id, err)
	}
	return &a, nil
}

// ListIDs returns the identifiers of all stored articles.
func (r *NewsRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listNewsIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing news ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Create inserts a new article.
func (r *NewsRepository) Create(ctx context.Context, a *news.Article) error {
	if err := r.exec(ctx, insertNewsSQL, a); err != nil {
		return fmt.Errorf("creating article %q: %w", a.ID, err)
	}
	return nil
}

// Update rewrites every mutable field of an existing article.
func (r *NewsRepository) Update(ctx context.Context, a *news.Article) error {
	tag, err := r.pool.Exec(ctx, updateNewsSQL,
		a.ID, a.Title, a.Content, a.Summary, a.Date, a.Author, a.Image, a.Images,
	)
	if err != nil {
		return fmt.Errorf("updating article %q: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return news.ErrNotFound
	}
	return nil
}

// Upsert inserts the article or rewrites it when the id already exists.
func (r *NewsRepository) Upsert(ctx context.Context, a *news.Article) error {
	if err := r.exec(ctx, upsertNewsSQL, a); err != nil {
		return fmt.Errorf("upserting article %q: %w", a.ID, err)
	}
	return nil
}

// Delete removes an article row. Deleting an absent article is a no-op.
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteNewsSQL, id); err != nil {
		return fmt.Errorf("deleting article %q: %w", id, err)
	}
	return nil
}

func (r *NewsRepository) exec(ctx context.Context, sql string, a *news.Article) error {
	_, err := r.pool.Exec(ctx, sql,
		a.ID, a.Title, a.Content, a.Summary, a.Date, a.Author, a.Image, a.Images,
	)
	return err
}

func scanArticle(row pgx.CollectableRow) (news.Article, error) {
	var a news.Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Summary,
		&a.Date, &a.Author, &a.Image, &a.Images,
	)
	return a, err
}
