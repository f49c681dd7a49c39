// Package memory provides an in-memory implementation of the
// repository interfaces with the same semantics as the Postgres one.
// It backs the unit and router tests; nothing in the server wires it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users    map[int64]*domain.User
	venues   map[int64]*domain.Venue
	shows    map[int64]*domain.Show
	bookings map[int64]*domain.Booking
	ratings  map[int64]*domain.Rating
	sessions map[string]int64

	nextID int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*domain.User),
		venues:   make(map[int64]*domain.Venue),
		shows:    make(map[int64]*domain.Show),
		bookings: make(map[int64]*domain.Booking),
		ratings:  make(map[int64]*domain.Rating),
		sessions: make(map[string]int64),
	}
}

func (s *Store) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

// AddVenue and AddShow seed reference data for tests.

func (s *Store) AddVenue(v domain.Venue) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.ID = s.nextSeq()
	s.venues[v.ID] = &v
	return v.ID
}

func (s *Store) AddShow(show domain.Show) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	show.ID = s.nextSeq()
	s.shows[show.ID] = &show
	return show.ID
}

// GetShowCopy returns a snapshot of a show for test assertions.
func (s *Store) GetShowCopy(id int64) (domain.Show, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	show, ok := s.shows[id]
	if !ok {
		return domain.Show{}, false
	}
	return *show, true
}

func (s *Store) ListShows(ctx context.Context, viewerID *int64) ([]domain.ShowSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ShowSummary, 0, len(s.shows))
	for _, show := range s.shows {
		sum := domain.ShowSummary{Show: *show}

		var total, count int64
		for _, r := range s.ratings {
			if r.ShowID == show.ID {
				total += int64(r.Rating)
				count++
			}
		}
		if count > 0 {
			avg := float64(total) / float64(count)
			sum.AverageRating = &avg
			sum.RatingCount = count
		}

		if viewerID != nil {
			sum.UserCanRate = s.hasCompletedBookingLocked(*viewerID, show.ID) &&
				!s.hasRatedLocked(*viewerID, show.ID)
		}

		out = append(out, sum)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetShow(ctx context.Context, id int64) (*domain.Show, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	show, ok := s.shows[id]
	if !ok {
		return nil, fmt.Errorf("memory.GetShow:%w", repository.ErrNotFound)
	}

	cp := *show
	return &cp, nil
}

func (s *Store) CreateBooking(ctx context.Context, userID, showID int64, tickets int) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	show, ok := s.shows[showID]
	if !ok {
		return nil, fmt.Errorf("memory.CreateBooking:%w", repository.ErrNotFound)
	}

	if show.BookedSeats+tickets > show.TotalSeats {
		return nil, fmt.Errorf("memory.CreateBooking:%w", repository.ErrNoSeats)
	}

	show.BookedSeats += tickets

	b := &domain.Booking{
		ID:          s.nextSeq(),
		UserID:      userID,
		ShowID:      showID,
		Tickets:     tickets,
		Status:      domain.BookingPending,
		BookingTime: time.Now().UTC(),
	}
	s.bookings[b.ID] = b

	cp := *b
	return &cp, nil
}

func (s *Store) CancelBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok || b.UserID != userID || b.Status != domain.BookingPending {
		// wrong owner or not PENDING: silent no-op
		return nil, nil
	}

	b.Status = domain.BookingCancelled
	if show, ok := s.shows[b.ShowID]; ok {
		show.BookedSeats -= b.Tickets
	}

	cp := *b
	return &cp, nil
}

func (s *Store) ListBookings(ctx context.Context, userID int64) ([]domain.BookingWithShow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.BookingWithShow
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}

		bw := domain.BookingWithShow{Booking: *b}
		if show, ok := s.shows[b.ShowID]; ok {
			bw.ShowTitle = show.Title
			bw.ShowDate = show.Date
		}
		out = append(out, bw)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingTime.Equal(out[j].BookingTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].BookingTime.After(out[j].BookingTime)
	})
	return out, nil
}

func (s *Store) CompleteBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok || b.Status != domain.BookingPending {
		return nil, fmt.Errorf("memory.CompleteBooking:%w", repository.ErrNotFound)
	}

	b.Status = domain.BookingCompleted

	cp := *b
	return &cp, nil
}

func (s *Store) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, b := range s.bookings {
		if b.Status != domain.BookingPending {
			continue
		}
		show, ok := s.shows[b.ShowID]
		if !ok || !show.Date.Before(now) {
			continue
		}
		b.Status = domain.BookingCompleted
		n++
	}
	return n, nil
}

func (s *Store) CreateRating(ctx context.Context, userID, showID int64, rating int, comment string) (*domain.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shows[showID]; !ok {
		return nil, fmt.Errorf("memory.CreateRating:%w", repository.ErrNotFound)
	}

	if !s.hasCompletedBookingLocked(userID, showID) {
		return nil, fmt.Errorf("memory.CreateRating:%w", repository.ErrNotAttended)
	}

	if s.hasRatedLocked(userID, showID) {
		return nil, fmt.Errorf("memory.CreateRating:%w", repository.ErrConflict)
	}

	r := &domain.Rating{
		ID:        s.nextSeq(),
		UserID:    userID,
		ShowID:    showID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	s.ratings[r.ID] = r

	cp := *r
	return &cp, nil
}

func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, fmt.Errorf("memory.CreateUser:%w", repository.ErrConflict)
		}
	}

	u := &domain.User{
		ID:           s.nextSeq(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u

	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("memory.GetUserByUsername:%w", repository.ErrNotFound)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("memory.GetUser:%w", repository.ErrNotFound)
	}

	cp := *u
	return &cp, nil
}

// SetAdmin promotes a user for tests of admin-only routes.
func (s *Store) SetAdmin(id int64, admin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		u.IsAdmin = admin
	}
}

func (s *Store) SaveSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = userID
	return nil
}

func (s *Store) SessionUser(ctx context.Context, sessionID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.sessions[sessionID]
	return userID, ok, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *Store) hasCompletedBookingLocked(userID, showID int64) bool {
	for _, b := range s.bookings {
		if b.UserID == userID && b.ShowID == showID && b.Status == domain.BookingCompleted {
			return true
		}
	}
	return false
}

func (s *Store) hasRatedLocked(userID, showID int64) bool {
	for _, r := range s.ratings {
		if r.UserID == userID && r.ShowID == showID {
			return true
		}
	}
	return false
}
