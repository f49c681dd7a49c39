package httpgin

import (
	"time"

	"github.com/showtix/showtix-go/internal/domain"
)

// Submissions accept both classic form posts and JSON bodies; the
// form field names (password1, number_of_tickets) match what existing
// HTML clients send.

type RegisterRequest struct {
	Username        string `form:"username" json:"username" binding:"required"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password1" json:"password" binding:"required"`
	PasswordConfirm string `form:"password2" json:"password_confirm" binding:"required"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type BookRequest struct {
	NumberOfTickets int `form:"number_of_tickets" json:"number_of_tickets"`
}

type RateRequest struct {
	Rating  int    `form:"rating" json:"rating"`
	Comment string `form:"comment" json:"comment"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

type ShowResponse struct {
	ID             int64     `json:"id"`
	VenueID        int64     `json:"venue_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date"`
	PriceCents     int       `json:"price_cents"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
}

type ShowSummaryResponse struct {
	ShowResponse
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int64    `json:"rating_count"`
	UserCanRate   bool     `json:"user_can_rate"`
}

type BookingResponse struct {
	ID          int64     `json:"id"`
	ShowID      int64     `json:"show_id"`
	ShowTitle   string    `json:"show_title,omitempty"`
	ShowDate    time.Time `json:"show_date"`
	Tickets     int       `json:"tickets"`
	Status      string    `json:"status"`
	BookingTime time.Time `json:"booking_time"`
}

type RatingResponse struct {
	ID      int64  `json:"id"`
	ShowID  int64  `json:"show_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toShowResponse(s domain.Show) ShowResponse {
	return ShowResponse{
		ID:             s.ID,
		VenueID:        s.VenueID,
		Title:          s.Title,
		Description:    s.Description,
		Date:           s.Date,
		PriceCents:     s.PriceCents,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats(),
	}
}

func toShowSummaryResponse(s domain.ShowSummary) ShowSummaryResponse {
	return ShowSummaryResponse{
		ShowResponse:  toShowResponse(s.Show),
		AverageRating: s.AverageRating,
		RatingCount:   s.RatingCount,
		UserCanRate:   s.UserCanRate,
	}
}

func toBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		ShowID:      b.ShowID,
		Tickets:     b.Tickets,
		Status:      string(b.Status),
		BookingTime: b.BookingTime,
	}
}

func toBookingWithShowResponse(b domain.BookingWithShow) BookingResponse {
	resp := toBookingResponse(b.Booking)
	resp.ShowTitle = b.ShowTitle
	resp.ShowDate = b.ShowDate
	return resp
}
