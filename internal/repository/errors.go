package repository

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrNoSeats     = errors.New("not enough seats available")
	ErrNotAttended = errors.New("no completed booking for show")
)
