package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository"
	redisrepo "github.com/showtix/showtix-go/internal/repository/redis"
)

type Service struct {
	store repository.BookingStore
	cache *redisrepo.Cache
}

func New(store repository.BookingStore, cache *redisrepo.Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
	}
}

// Create books seats on a show for the user. The booking starts
// out PENDING; its seats are taken from the show's pool atomically with
// the availability check.
//
// Returns:
//   - *domain.Booking: the created booking.
//   - error: booking.ErrInvalidTicketCount if tickets is not positive.
//   - error: booking.ErrShowNotFound if the show does not exist.
//   - error: booking.ErrNotEnoughSeats if tickets exceeds the available seats.
func (s *Service) Create(ctx context.Context, userID, showID int64, tickets int) (*domain.Booking, error) {
	const op = "service.booking.Create"

	if tickets <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTicketCount)
	}

	b, err := s.store.CreateBooking(ctx, userID, showID, tickets)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrShowNotFound)
		}

		if errors.Is(err, repository.ErrNoSeats) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotEnoughSeats)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx, showID)
	}

	return b, nil
}

// Cancel releases an owned PENDING booking. When the booking is
// missing, owned by another user, or no longer PENDING, nothing
// happens and (nil, nil) is returned; callers report success either
// way.
func (s *Service) Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	const op = "service.booking.Cancel"

	b, err := s.store.CancelBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b != nil && s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx, b.ShowID)
	}

	return b, nil
}

// History returns the user's bookings, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]domain.BookingWithShow, error) {
	const op = "service.booking.History"

	bookings, err := s.store.ListBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// Complete moves a PENDING booking to COMPLETED, which counts as
// attendance for rating. Exposed as an admin action; the periodic
// sweep covers shows whose date has passed.
//
// Returns:
//   - error: booking.ErrBookingNotFound if no PENDING booking with that ID exists.
func (s *Service) Complete(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	const op = "service.booking.Complete"

	b, err := s.store.CompleteBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateCatalog(ctx, b.ShowID)
	}

	return b, nil
}

// CompleteElapsed completes every PENDING booking whose show date has
// passed. The app runs this periodically so attendance-gated rating
// opens up without operator involvement.
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	const op = "service.booking.CompleteElapsed"

	n, err := s.store.CompleteElapsed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
