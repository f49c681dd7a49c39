package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
	redisx "github.com/showtix/showtix-go/internal/redis"
	"github.com/showtix/showtix-go/internal/repository"
	redisrepo "github.com/showtix/showtix-go/internal/repository/redis"
)

type Config struct {
	CatalogTTL time.Duration
}

type Service struct {
	store repository.ShowStore
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.ShowStore, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = 30 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// ListShows returns every show with its average rating (nil when the
// show has no ratings). For an authenticated viewer, UserCanRate marks
// the shows they attended and have not yet rated; anonymous viewers
// never see it set. Only the anonymous listing is cached since the
// per-viewer flags differ per caller.
func (s *Service) ListShows(ctx context.Context, viewerID *int64) ([]domain.ShowSummary, error) {
	const op = "service.catalog.ListShows"

	if viewerID == nil && s.cache != nil {
		shows, err := redisrepo.GetOrSetJSON(
			ctx,
			s.cache,
			redisx.KeyCatalog(),
			s.cfg.CatalogTTL,
			func(ctx context.Context) ([]domain.ShowSummary, error) {
				return s.store.ListShows(ctx, nil)
			},
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return shows, nil
	}

	shows, err := s.store.ListShows(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return shows, nil
}

// GetShow retrieves one show with its current availability. It backs
// the booking form.
//
// Returns:
//   - error: catalog.ErrShowNotFound if the show does not exist.
func (s *Service) GetShow(ctx context.Context, id int64) (*domain.Show, error) {
	const op = "service.catalog.GetShow"

	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrShowNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return show, nil
}
