package rating_test

import (
	"context"
	"testing"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository/memory"
	"github.com/showtix/showtix-go/internal/service/booking"
	"github.com/showtix/showtix-go/internal/service/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	bookings *booking.Service
	ratings  *rating.Service
	showID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	venueID := store.AddVenue(domain.Venue{Name: "Test Hall"})
	showID := store.AddShow(domain.Show{
		VenueID:    venueID,
		Title:      "Opening Night",
		Date:       time.Now().Add(-time.Hour),
		TotalSeats: 100,
	})

	return &fixture{
		store:    store,
		bookings: booking.New(store, nil),
		ratings:  rating.New(store, nil),
		showID:   showID,
	}
}

// attend books and completes a booking so userID may rate the show.
func (f *fixture) attend(t *testing.T, userID int64) {
	t.Helper()

	b, err := f.bookings.Create(context.Background(), userID, f.showID, 1)
	require.NoError(t, err)
	_, err = f.bookings.Complete(context.Background(), b.ID)
	require.NoError(t, err)
}

func TestRateRequiresAttendance(t *testing.T) {
	f := newFixture(t)

	// no booking at all
	_, err := f.ratings.Rate(context.Background(), 1, f.showID, 4, "")
	assert.ErrorIs(t, err, rating.ErrNotAttended)

	// a PENDING booking is not attendance
	_, err = f.bookings.Create(context.Background(), 1, f.showID, 1)
	require.NoError(t, err)
	_, err = f.ratings.Rate(context.Background(), 1, f.showID, 4, "")
	assert.ErrorIs(t, err, rating.ErrNotAttended)
}

func TestRateAfterAttendance(t *testing.T) {
	f := newFixture(t)
	f.attend(t, 1)

	r, err := f.ratings.Rate(context.Background(), 1, f.showID, 5, "brilliant")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, "brilliant", r.Comment)
}

func TestRateTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	f.attend(t, 1)

	_, err := f.ratings.Rate(context.Background(), 1, f.showID, 5, "")
	require.NoError(t, err)

	_, err = f.ratings.Rate(context.Background(), 1, f.showID, 3, "changed my mind")
	assert.ErrorIs(t, err, rating.ErrAlreadyRated)
}

func TestRateValueBounds(t *testing.T) {
	f := newFixture(t)
	f.attend(t, 1)

	for _, v := range []int{0, 6, -1, 100} {
		_, err := f.ratings.Rate(context.Background(), 1, f.showID, v, "")
		assert.ErrorIs(t, err, rating.ErrInvalidRating)
	}

	for _, v := range []int{1, 5} {
		f2 := newFixture(t)
		f2.attend(t, 1)
		_, err := f2.ratings.Rate(context.Background(), 1, f2.showID, v, "")
		assert.NoError(t, err)
	}
}

func TestRateUnknownShow(t *testing.T) {
	f := newFixture(t)

	_, err := f.ratings.Rate(context.Background(), 1, 999, 3, "")
	assert.ErrorIs(t, err, rating.ErrShowNotFound)
}

func TestCancelledBookingDoesNotUnlockRating(t *testing.T) {
	f := newFixture(t)

	b, err := f.bookings.Create(context.Background(), 1, f.showID, 1)
	require.NoError(t, err)
	_, err = f.bookings.Cancel(context.Background(), 1, b.ID)
	require.NoError(t, err)

	_, err = f.ratings.Rate(context.Background(), 1, f.showID, 4, "")
	assert.ErrorIs(t, err, rating.ErrNotAttended)
}
