package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository"
)

type RatingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *RatingRepo) With(db DB) *RatingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *RatingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateRating records a rating for a show the user attended. The
// attendance check and the insert run in one transaction; duplicates
// are rejected by the (user_id, show_id) unique constraint.
//
// Returns:
//   - *domain.Rating: the created rating when successful.
//   - error: repository.ErrNotFound if the show does not exist.
//   - error: repository.ErrNotAttended if the user has no COMPLETED booking for the show.
//   - error: repository.ErrConflict if the user already rated the show.
func (r *RatingRepo) CreateRating(
	ctx context.Context,
	userID, showID int64,
	rating int,
	comment string,
) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.CreateRating"

	if r.db != nil {
		rt, err := r.createRatingCore(ctx, r.db, userID, showID, rating, comment)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return rt, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	rt, err := r.createRatingCore(ctx, tx, userID, showID, rating, comment)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return rt, nil
}

func (r *RatingRepo) createRatingCore(
	ctx context.Context,
	db DB,
	userID, showID int64,
	rating int,
	comment string,
) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.createRatingCore"

	var showExists, attended bool
	if err := db.QueryRow(ctx,
		`SELECT
		     EXISTS (SELECT 1 FROM shows WHERE id = $2),
		     EXISTS (
		         SELECT 1 FROM bookings
		         WHERE user_id = $1 AND show_id = $2 AND status = 'COMPLETED'
		     )`,
		userID, showID,
	).Scan(&showExists, &attended); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if !showExists {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	if !attended {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotAttended)
	}

	rt := domain.Rating{
		UserID:  userID,
		ShowID:  showID,
		Rating:  rating,
		Comment: comment,
	}

	if err := db.QueryRow(ctx,
		`INSERT INTO ratings(user_id, show_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		userID, showID, rating, comment,
	).Scan(&rt.ID, &rt.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &rt, nil
}
