package repository

import (
	"context"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
)

// ShowStore is the catalog's view of the store.
type ShowStore interface {
	// ListShows returns every show with its rating aggregate. When
	// viewerID is non-nil, UserCanRate is computed for that viewer;
	// otherwise it is false for all shows.
	ListShows(ctx context.Context, viewerID *int64) ([]domain.ShowSummary, error)
	GetShow(ctx context.Context, id int64) (*domain.Show, error)
}

// BookingStore owns booking rows and the shows' booked-seat counters.
// Implementations must keep the availability check and the counter
// update atomic with respect to concurrent callers.
type BookingStore interface {
	// CreateBooking inserts a PENDING booking and increments the show's
	// booked_seats by tickets. Returns ErrNotFound for an unknown show
	// and ErrNoSeats when tickets exceeds the seats still available.
	CreateBooking(ctx context.Context, userID, showID int64, tickets int) (*domain.Booking, error)
	// CancelBooking moves an owned PENDING booking to CANCELLED and
	// releases its seats. When the booking is missing, not owned by
	// userID, or not PENDING, it returns (nil, nil): callers treat
	// that as a silent no-op.
	CancelBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	// ListBookings returns userID's bookings, newest first.
	ListBookings(ctx context.Context, userID int64) ([]domain.BookingWithShow, error)
	// CompleteBooking moves a PENDING booking to COMPLETED. Returns
	// ErrNotFound when no PENDING booking with that ID exists.
	CompleteBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	// CompleteElapsed completes every PENDING booking whose show date
	// is before now, returning how many rows changed.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}

// RatingStore owns rating rows.
type RatingStore interface {
	// CreateRating inserts a rating. Returns ErrNotFound for an unknown
	// show, ErrNotAttended when userID has no COMPLETED booking for the
	// show, and ErrConflict when userID already rated it.
	CreateRating(ctx context.Context, userID, showID int64, rating int, comment string) (*domain.Rating, error)
}

// UserStore owns user accounts.
type UserStore interface {
	// CreateUser returns ErrConflict when the username is taken.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// SessionStore tracks live sessions so that logout is a real
// revocation rather than waiting out a token TTL.
type SessionStore interface {
	SaveSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	// SessionUser returns (0, false, nil) for unknown or revoked sessions.
	SessionUser(ctx context.Context, sessionID string) (int64, bool, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
