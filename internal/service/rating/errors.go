package rating

import "errors"

var (
	ErrShowNotFound  = errors.New("show not found")
	ErrNotAttended   = errors.New("can only rate attended shows")
	ErrAlreadyRated  = errors.New("show already rated")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
