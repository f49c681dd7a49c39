package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showtix/showtix-go/internal/domain"
)

type ShowRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ShowRepo) With(db DB) *ShowRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ShowRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ListShows returns every show with its rating aggregate attached.
// AVG over zero ratings is NULL, which scans to a nil AverageRating.
// When viewerID is non-nil, UserCanRate is computed in the same query:
// the viewer has a COMPLETED booking for the show and no rating yet.
func (r *ShowRepo) ListShows(ctx context.Context, viewerID *int64) ([]domain.ShowSummary, error) {
	const op = "postgres.ShowRepo.ListShows"

	db := r.handle()

	var rows pgx.Rows
	var err error

	if viewerID != nil {
		rows, err = db.Query(ctx,
			`SELECT s.id, s.venue_id, s.title, s.description, s.date,
			        s.price_cents, s.total_seats, s.booked_seats,
			        AVG(r.rating)::float8, COUNT(r.id),
			        EXISTS (
			            SELECT 1 FROM bookings b
			            WHERE b.user_id = $1 AND b.show_id = s.id AND b.status = 'COMPLETED'
			        ) AND NOT EXISTS (
			            SELECT 1 FROM ratings ur
			            WHERE ur.user_id = $1 AND ur.show_id = s.id
			        )
			 FROM shows s
			 LEFT JOIN ratings r ON r.show_id = s.id
			 GROUP BY s.id
			 ORDER BY s.id`,
			*viewerID,
		)
	} else {
		rows, err = db.Query(ctx,
			`SELECT s.id, s.venue_id, s.title, s.description, s.date,
			        s.price_cents, s.total_seats, s.booked_seats,
			        AVG(r.rating)::float8, COUNT(r.id),
			        FALSE
			 FROM shows s
			 LEFT JOIN ratings r ON r.show_id = s.id
			 GROUP BY s.id
			 ORDER BY s.id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.ShowSummary
	for rows.Next() {
		var s domain.ShowSummary

		if err := rows.Scan(
			&s.ID,
			&s.VenueID,
			&s.Title,
			&s.Description,
			&s.Date,
			&s.PriceCents,
			&s.TotalSeats,
			&s.BookedSeats,
			&s.AverageRating,
			&s.RatingCount,
			&s.UserCanRate,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// GetShow retrieves a show by its ID.
//
// Returns:
//   - *domain.Show: the show when found.
//   - error: repository.ErrNotFound if the show is not found.
func (r *ShowRepo) GetShow(ctx context.Context, id int64) (*domain.Show, error) {
	const op = "postgres.ShowRepo.GetShow"

	db := r.handle()

	var s domain.Show
	err := db.QueryRow(ctx,
		`SELECT id, venue_id, title, description, date,
		        price_cents, total_seats, booked_seats
		 FROM shows WHERE id = $1`,
		id,
	).Scan(
		&s.ID,
		&s.VenueID,
		&s.Title,
		&s.Description,
		&s.Date,
		&s.PriceCents,
		&s.TotalSeats,
		&s.BookedSeats,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &s, nil
}

// GetOrCreateShow inserts a show unless one with the same title already
// exists. Titles carry no uniqueness constraint; this lookup-then-insert
// is only meant for the seeding fixture.
func (r *ShowRepo) GetOrCreateShow(ctx context.Context, show domain.Show) (int64, bool, error) {
	const op = "postgres.ShowRepo.GetOrCreateShow"

	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`SELECT id FROM shows WHERE title = $1 LIMIT 1`,
		show.Title,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	err = db.QueryRow(ctx,
		`INSERT INTO shows(venue_id, title, description, date, price_cents, total_seats, booked_seats)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		show.VenueID, show.Title, show.Description, show.Date,
		show.PriceCents, show.TotalSeats, show.BookedSeats,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, true, nil
}
