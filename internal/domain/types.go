package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

type Venue struct {
	ID       int64
	Name     string
	Address  string
	Capacity int
}

type Show struct {
	ID          int64
	VenueID     int64
	Title       string
	Description string
	Date        time.Time
	PriceCents  int
	TotalSeats  int
	BookedSeats int
}

// AvailableSeats is derived on read, never stored.
func (s Show) AvailableSeats() int {
	return s.TotalSeats - s.BookedSeats
}

// ShowSummary is a Show as the catalog presents it: with the mean of
// its ratings (nil when the show has no ratings) and whether the
// current viewer may rate it.
type ShowSummary struct {
	Show
	AverageRating *float64
	RatingCount   int64
	UserCanRate   bool
}

type Booking struct {
	ID          int64
	UserID      int64
	ShowID      int64
	Tickets     int
	Status      BookingStatus
	BookingTime time.Time
}

type BookingWithShow struct {
	Booking
	ShowTitle string
	ShowDate  time.Time
}

type Rating struct {
	ID        int64
	UserID    int64
	ShowID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}
