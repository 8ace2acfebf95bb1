package news

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested article does not exist.
var ErrNotFound = errors.New("article not found")

// Article is a published news entry: company announcements, product launches,
// seasonal promotions.
type Article struct {
	ID      string
	Title   string
	Content string
	Summary string
	Image   string
	Images  []string
	Date    time.Time
	Author  string
}

// Gallery returns the article's images for gallery display. The primary image
// is always the first element; an article without extra images yields a
// single-element gallery when it has a primary image at all.
func (a *Article) Gallery() []string {
	if a.Image == "" {
		return a.Images
	}
	gallery := make([]string, 0, len(a.Images)+1)
	gallery = append(gallery, a.Image)
	for _, img := range a.Images {
		if img != a.Image {
			gallery = append(gallery, img)
		}
	}
	return gallery
}

// Repository defines persistence operations for news articles.
// List orders articles by publication date, newest first.
type Repository interface {
	List(ctx context.Context) ([]Article, error)
	GetByID(ctx context.Context, id string) (*Article, error)
	ListIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, a *Article) error
	Update(ctx context.Context, a *Article) error
	Upsert(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id string) error
}
