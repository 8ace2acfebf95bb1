package news

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Source identifies where a query result came from.
type Source string

const (
	// SourceRemote means the result was read from the database.
	SourceRemote Source = "remote"
	// SourceSeed means the database was unreachable or empty and the result
	// was substituted from the embedded seed articles. Responses built from
	// seed data are degraded, not authoritative.
	SourceSeed Source = "seed"
)

// ListResult is a news listing together with its provenance.
type ListResult struct {
	Articles []Article
	Source   Source
}

// GetResult is a single article together with its provenance.
type GetResult struct {
	Article *Article
	Source  Source
}

// Service reads news articles from the repository, falling back to the
// embedded seed set when the repository fails or holds no rows. The fallback
// is never silent: the result carries its Source and every fallback is logged
// as degraded mode.
type Service struct {
	repo Repository
	seed []Article
	lg   *zap.Logger
}

// NewService creates a news Service. The seed slice is used verbatim as the
// fallback dataset and must already be ordered by date descending.
func NewService(repo Repository, seed []Article, lg *zap.Logger) *Service {
	return &Service{repo: repo, seed: seed, lg: lg}
}

// List returns all articles, newest first. A repository failure or an empty
// table degrades to the seed set.
func (s *Service) List(ctx context.Context) (*ListResult, error) {
	articles, err := s.repo.List(ctx)
	if err != nil {
		s.lg.Warn("news listing degraded to seed data", zap.Error(err))
		return &ListResult{Articles: s.seed, Source: SourceSeed}, nil
	}
	if len(articles) == 0 && len(s.seed) > 0 {
		s.lg.Warn("news table empty, serving seed data")
		return &ListResult{Articles: s.seed, Source: SourceSeed}, nil
	}
	return &ListResult{Articles: articles, Source: SourceRemote}, nil
}

// GetByID returns a single article. When the repository fails outright the
// seed set is consulted; a genuine miss in both is ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*GetResult, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return &GetResult{Article: a, Source: SourceRemote}, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}

	s.lg.Warn("news lookup degraded to seed data", zap.String("id", id), zap.Error(err))
	for i := range s.seed {
		if s.seed[i].ID == id {
			return &GetResult{Article: &s.seed[i], Source: SourceSeed}, nil
		}
	}
	return nil, ErrNotFound
}

// Writes go straight to the repository. There is no seed fallback for
// mutations: publishing against an unreachable database is an error.

func (s *Service) Create(ctx context.Context, a *Article) error {
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, a *Article) error {
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
