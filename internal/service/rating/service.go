package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository"
	redisrepo "github.com/showtix/showtix-go/internal/repository/redis"
)

type Service struct {
	store repository.RatingStore
	cache *redisrepo.Cache
}

func New(store repository.RatingStore, cache *redisrepo.Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
	}
}

// Rate records the user's rating for a show they attended. Attendance
// means a COMPLETED booking; one rating per (user, show).
//
// Returns:
//   - *domain.Rating: the created rating.
//   - error: rating.ErrInvalidRating if value is outside [1, 5].
//   - error: rating.ErrShowNotFound if the show does not exist.
//   - error: rating.ErrNotAttended if the user has no COMPLETED booking for the show.
//   - error: rating.ErrAlreadyRated if the user already rated the show.
func (s *Service) Rate(ctx context.Context, userID, showID int64, value int, comment string) (*domain.Rating, error) {
	const op = "service.rating.Rate"

	if value < 1 || value > 5 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRating)
	}

	r, err := s.store.CreateRating(ctx, userID, showID, value, comment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrShowNotFound)
		}

		if errors.Is(err, repository.ErrNotAttended) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotAttended)
		}

		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyRated)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx, showID)
	}

	return r, nil
}
