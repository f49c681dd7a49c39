package booking

import "errors"

var (
	ErrShowNotFound       = errors.New("show not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidTicketCount = errors.New("number of tickets must be greater than zero")
	ErrNotEnoughSeats     = errors.New("not enough seats available")
)
