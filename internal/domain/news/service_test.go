package news

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepo struct {
	articles []Article
	listErr  error
	getErr   error
}

func (m *mockRepo) List(_ context.Context) ([]Article, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.articles, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Article, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ListIDs(_ context.Context) ([]string, error) { return nil, nil }
func (m *mockRepo) Create(_ context.Context, _ *Article) error  { return nil }
func (m *mockRepo) Update(_ context.Context, _ *Article) error  { return nil }
func (m *mockRepo) Upsert(_ context.Context, _ *Article) error  { return nil }
func (m *mockRepo) Delete(_ context.Context, _ string) error    { return nil }

func testArticle(id, title string) Article {
	return Article{
		ID:    id,
		Title: title,
		Date:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestList_Remote(t *testing.T) {
	repo := &mockRepo{articles: []Article{testArticle("a1", "Launch")}}
	svc := NewService(repo, []Article{testArticle("seed-1", "Seeded")}, zap.NewNop())

	result, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, result.Source)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "a1", result.Articles[0].ID)
}

func TestList_RepoFailureFallsBackToSeed(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("connection refused")}
	svc := NewService(repo, []Article{testArticle("seed-1", "Seeded")}, zap.NewNop())

	result, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, result.Source)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "seed-1", result.Articles[0].ID)
}

func TestList_EmptyTableFallsBackToSeed(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, []Article{testArticle("seed-1", "Seeded")}, zap.NewNop())

	result, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, result.Source)
	assert.Len(t, result.Articles, 1)
}

func TestList_EmptyTableNoSeed(t *testing.T) {
	svc := NewService(&mockRepo{}, nil, zap.NewNop())

	result, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, result.Source)
	assert.Empty(t, result.Articles)
}

func TestGetByID_Remote(t *testing.T) {
	repo := &mockRepo{articles: []Article{testArticle("a1", "Launch")}}
	svc := NewService(repo, nil, zap.NewNop())

	result, err := svc.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, result.Source)
	assert.Equal(t, "Launch", result.Article.Title)
}

func TestGetByID_NotFoundIsNotDegraded(t *testing.T) {
	// A genuine miss must not be papered over with seed data.
	repo := &mockRepo{}
	svc := NewService(repo, []Article{testArticle("a1", "Seeded")}, zap.NewNop())

	_, err := svc.GetByID(context.Background(), "a1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_RepoFailureFallsBackToSeed(t *testing.T) {
	repo := &mockRepo{getErr: errors.New("connection refused")}
	svc := NewService(repo, []Article{testArticle("a1", "Seeded")}, zap.NewNop())

	result, err := svc.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, result.Source)
	assert.Equal(t, "Seeded", result.Article.Title)

	_, err = svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGallery(t *testing.T) {
	a := Article{
		Image:  "news/main.jpg",
		Images: []string{"news/extra.jpg", "news/main.jpg", "news/other.jpg"},
	}

	// Primary image leads and is not repeated.
	assert.Equal(t, []string{"news/main.jpg", "news/extra.jpg", "news/other.jpg"}, a.Gallery())

	noPrimary := Article{Images: []string{"news/extra.jpg"}}
	assert.Equal(t, []string{"news/extra.jpg"}, noPrimary.Gallery())
}
