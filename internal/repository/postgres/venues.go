package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showtix/showtix-go/internal/domain"
)

type VenueRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *VenueRepo) With(db DB) *VenueRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *VenueRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetVenue retrieves a venue by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the venue is not found.
func (r *VenueRepo) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	const op = "postgres.VenueRepo.GetVenue"

	db := r.handle()

	var v domain.Venue
	err := db.QueryRow(ctx,
		`SELECT id, name, address, capacity
		 FROM venues WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.Address, &v.Capacity)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &v, nil
}

// GetOrCreateVenue inserts a venue unless one with the same name
// already exists. Used by the seeding fixture.
func (r *VenueRepo) GetOrCreateVenue(ctx context.Context, venue domain.Venue) (int64, bool, error) {
	const op = "postgres.VenueRepo.GetOrCreateVenue"

	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`SELECT id FROM venues WHERE name = $1 LIMIT 1`,
		venue.Name,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	err = db.QueryRow(ctx,
		`INSERT INTO venues(name, address, capacity)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		venue.Name, venue.Address, venue.Capacity,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, true, nil
}
