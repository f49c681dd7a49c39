package service

import (
	"github.com/showtix/showtix-go/internal/repository"
	redisrepo "github.com/showtix/showtix-go/internal/repository/redis"
	"github.com/showtix/showtix-go/internal/service/auth"
	"github.com/showtix/showtix-go/internal/service/booking"
	"github.com/showtix/showtix-go/internal/service/catalog"
	"github.com/showtix/showtix-go/internal/service/rating"
)

type Services struct {
	Auth    *auth.Service
	Catalog *catalog.Service
	Booking *booking.Service
	Rating  *rating.Service
}

type Config struct {
	Auth    auth.Config
	Catalog catalog.Config
}

// NewServices wires the services against whatever store implements the
// repository interfaces: the Postgres repos in the server, the memory
// store in tests. cache and limiter may be nil.
func NewServices(
	shows repository.ShowStore,
	bookings repository.BookingStore,
	ratings repository.RatingStore,
	users repository.UserStore,
	sessions repository.SessionStore,
	cache *redisrepo.Cache,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Auth:    auth.New(users, sessions, limiter, cfg.Auth),
		Catalog: catalog.New(shows, cache, cfg.Catalog),
		Booking: booking.New(bookings, cache),
		Rating:  rating.New(ratings, cache),
	}
}
