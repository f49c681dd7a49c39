package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository/memory"
	"github.com/showtix/showtix-go/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T, totalSeats int) (*booking.Service, *memory.Store, int64) {
	t.Helper()

	store := memory.NewStore()
	venueID := store.AddVenue(domain.Venue{Name: "Test Hall", Capacity: 500})
	showID := store.AddShow(domain.Show{
		VenueID:    venueID,
		Title:      "Opening Night",
		Date:       time.Now().Add(24 * time.Hour),
		PriceCents: 1500,
		TotalSeats: totalSeats,
	})

	return booking.New(store, nil), store, showID
}

func TestCreateTakesSeatsFromPool(t *testing.T) {
	svc, store, showID := newFixture(t, 100)

	b, err := svc.Create(context.Background(), 1, showID, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, 30, b.Tickets)

	show, ok := store.GetShowCopy(showID)
	require.True(t, ok)
	assert.Equal(t, 70, show.AvailableSeats())
}

func TestCreateRejectsNonPositiveTickets(t *testing.T) {
	svc, store, showID := newFixture(t, 100)

	for _, tickets := range []int{0, -1} {
		_, err := svc.Create(context.Background(), 1, showID, tickets)
		assert.ErrorIs(t, err, booking.ErrInvalidTicketCount)
	}

	show, _ := store.GetShowCopy(showID)
	assert.Equal(t, 100, show.AvailableSeats())
}

func TestCreateUnknownShow(t *testing.T) {
	svc, _, _ := newFixture(t, 100)

	_, err := svc.Create(context.Background(), 1, 999, 2)
	assert.ErrorIs(t, err, booking.ErrShowNotFound)
}

func TestCreateRejectsOverCapacity(t *testing.T) {
	svc, store, showID := newFixture(t, 100)

	_, err := svc.Create(context.Background(), 1, showID, 60)
	require.NoError(t, err)

	// 40 left, asking for 41 must fail and must not touch the counter
	_, err = svc.Create(context.Background(), 2, showID, 41)
	assert.ErrorIs(t, err, booking.ErrNotEnoughSeats)

	show, _ := store.GetShowCopy(showID)
	assert.Equal(t, 40, show.AvailableSeats())

	// the exact remainder still fits
	_, err = svc.Create(context.Background(), 2, showID, 40)
	require.NoError(t, err)

	show, _ = store.GetShowCopy(showID)
	assert.Equal(t, 0, show.AvailableSeats())
}

func TestCancelReturnsSeats(t *testing.T) {
	svc, store, showID := newFixture(t, 100)

	b, err := svc.Create(context.Background(), 1, showID, 30)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), 1, b.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)

	show, _ := store.GetShowCopy(showID)
	assert.Equal(t, 100, show.AvailableSeats())
}

func TestCancelTwiceIsNoOp(t *testing.T) {
	svc, store, showID := newFixture(t, 100)

	b, err := svc.Create(context.Background(), 1, showID, 30)
	require.NoError(t, err)

	first, err := svc.Cancel(context.Background(), 1, b.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	// second cancel finds no PENDING booking and reports silent success
	second, err := svc.Cancel(context.Background(), 1, b.ID)
	require.NoError(t, err)
	assert.Nil(t, second)

	// seats must be returned exactly once
	show, _ := store.GetShowCopy(showID)
	assert.Equal(t, 100, show.AvailableSeats())
}

func TestCancelForeignBookingIsNoOp(t *testing.T) {
	svc, store, showID := newFixture(t, 100)

	b, err := svc.Create(context.Background(), 1, showID, 30)
	require.NoError(t, err)

	got, err := svc.Cancel(context.Background(), 2, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	show, _ := store.GetShowCopy(showID)
	assert.Equal(t, 70, show.AvailableSeats())
}

func TestCancelUnknownBookingIsNoOp(t *testing.T) {
	svc, _, _ := newFixture(t, 100)

	got, err := svc.Cancel(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompleteTransitions(t *testing.T) {
	svc, _, showID := newFixture(t, 100)

	b, err := svc.Create(context.Background(), 1, showID, 2)
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, done.Status)

	// a completed booking cannot be completed again
	_, err = svc.Complete(context.Background(), b.ID)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	// nor cancelled
	got, err := svc.Cancel(context.Background(), 1, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompleteElapsedOnlyPastShows(t *testing.T) {
	store := memory.NewStore()
	venueID := store.AddVenue(domain.Venue{Name: "Test Hall"})

	past := store.AddShow(domain.Show{
		VenueID: venueID, Title: "Yesterday", TotalSeats: 50,
		Date: time.Now().Add(-24 * time.Hour),
	})
	future := store.AddShow(domain.Show{
		VenueID: venueID, Title: "Tomorrow", TotalSeats: 50,
		Date: time.Now().Add(24 * time.Hour),
	})

	svc := booking.New(store, nil)

	pastBooking, err := svc.Create(context.Background(), 1, past, 2)
	require.NoError(t, err)
	futureBooking, err := svc.Create(context.Background(), 1, future, 2)
	require.NoError(t, err)

	n, err := svc.CompleteElapsed(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	byID := map[int64]domain.BookingStatus{}
	for _, b := range history {
		byID[b.ID] = b.Status
	}
	assert.Equal(t, domain.BookingCompleted, byID[pastBooking.ID])
	assert.Equal(t, domain.BookingPending, byID[futureBooking.ID])
}

func TestHistoryNewestFirst(t *testing.T) {
	svc, _, showID := newFixture(t, 100)

	first, err := svc.Create(context.Background(), 1, showID, 1)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 1, showID, 2)
	require.NoError(t, err)

	// another user's bookings must not leak in
	_, err = svc.Create(context.Background(), 2, showID, 3)
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Equal(t, "Opening Night", history[0].ShowTitle)
}
