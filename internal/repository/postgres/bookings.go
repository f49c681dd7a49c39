package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateBooking inserts a PENDING booking and takes its seats from the
// show's pool. The availability check and the counter increment are a
// single conditional UPDATE, so concurrent bookings can never jointly
// oversell a show.
//
// Returns:
//   - *domain.Booking: the created booking when successful.
//   - error: repository.ErrNotFound if the show does not exist.
//   - error: repository.ErrNoSeats if tickets exceeds the available seats.
func (r *BookingRepo) CreateBooking(
	ctx context.Context,
	userID, showID int64,
	tickets int,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.CreateBooking"

	if r.db != nil {
		b, err := r.createBookingCore(ctx, r.db, userID, showID, tickets)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return b, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	b, err := r.createBookingCore(ctx, tx, userID, showID, tickets)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// CancelBooking moves an owned PENDING booking to CANCELLED and gives
// its seats back. When the booking is missing, owned by someone else,
// or already CANCELLED/COMPLETED, nothing changes and (nil, nil) is
// returned.
func (r *BookingRepo) CancelBooking(
	ctx context.Context,
	userID, bookingID int64,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.CancelBooking"

	if r.db != nil {
		b, err := r.cancelBookingCore(ctx, r.db, userID, bookingID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return b, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	b, err := r.cancelBookingCore(ctx, tx, userID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// ListBookings returns userID's bookings with their show title and
// date, newest first.
func (r *BookingRepo) ListBookings(ctx context.Context, userID int64) ([]domain.BookingWithShow, error) {
	const op = "postgres.BookingRepo.ListBookings"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT b.id, b.user_id, b.show_id, b.tickets, b.status, b.booking_time,
		        s.title, s.date
		 FROM bookings b
		 JOIN shows s ON s.id = b.show_id
		 WHERE b.user_id = $1
		 ORDER BY b.booking_time DESC, b.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.BookingWithShow
	for rows.Next() {
		var b domain.BookingWithShow
		var status string

		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.ShowID,
			&b.Tickets,
			&status,
			&b.BookingTime,
			&b.ShowTitle,
			&b.ShowDate,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		b.Status = domain.BookingStatus(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// CompleteBooking moves a PENDING booking to COMPLETED. Completion does
// not touch the seat counter: completed seats stay booked.
//
// Returns:
//   - error: repository.ErrNotFound if no PENDING booking with that ID exists.
func (r *BookingRepo) CompleteBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.CompleteBooking"

	db := r.handle()

	b := domain.Booking{ID: bookingID, Status: domain.BookingCompleted}
	err := db.QueryRow(ctx,
		`UPDATE bookings
		 SET status = 'COMPLETED'
		 WHERE id = $1 AND status = 'PENDING'
		 RETURNING user_id, show_id, tickets, booking_time`,
		bookingID,
	).Scan(&b.UserID, &b.ShowID, &b.Tickets, &b.BookingTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &b, nil
}

// CompleteElapsed completes every PENDING booking whose show has
// already taken place.
func (r *BookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	const op = "postgres.BookingRepo.CompleteElapsed"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE bookings b
		 SET status = 'COMPLETED'
		 FROM shows s
		 WHERE s.id = b.show_id
		   AND b.status = 'PENDING'
		   AND s.date < $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}

func (r *BookingRepo) createBookingCore(
	ctx context.Context,
	db DB,
	userID, showID int64,
	tickets int,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.createBookingCore"

	tag, err := db.Exec(ctx,
		`UPDATE shows
		 SET booked_seats = booked_seats + $2
		 WHERE id = $1
		   AND booked_seats + $2 <= total_seats`,
		showID, tickets,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM shows WHERE id = $1)`,
			showID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		if !exists {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, repository.ErrNoSeats)
	}

	b := domain.Booking{
		UserID:  userID,
		ShowID:  showID,
		Tickets: tickets,
		Status:  domain.BookingPending,
	}

	if err := db.QueryRow(ctx,
		`INSERT INTO bookings(user_id, show_id, tickets, status)
		 VALUES ($1, $2, $3, 'PENDING')
		 RETURNING id, booking_time`,
		userID, showID, tickets,
	).Scan(&b.ID, &b.BookingTime); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &b, nil
}

func (r *BookingRepo) cancelBookingCore(
	ctx context.Context,
	db DB,
	userID, bookingID int64,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.cancelBookingCore"

	b := domain.Booking{ID: bookingID, UserID: userID, Status: domain.BookingCancelled}
	err := db.QueryRow(ctx,
		`UPDATE bookings
		 SET status = 'CANCELLED'
		 WHERE id = $1 AND user_id = $2 AND status = 'PENDING'
		 RETURNING show_id, tickets, booking_time`,
		bookingID, userID,
	).Scan(&b.ShowID, &b.Tickets, &b.BookingTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// wrong owner or not PENDING: silent no-op
			return nil, nil
		}
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if _, err := db.Exec(ctx,
		`UPDATE shows
		 SET booked_seats = booked_seats - $2
		 WHERE id = $1`,
		b.ShowID, b.Tickets,
	); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &b, nil
}
