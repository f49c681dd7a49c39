package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showtix/showtix-go/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateUser inserts an account row.
//
// Returns:
//   - *domain.User: the created user when successful.
//   - error: repository.ErrConflict if the username is already taken.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	const op = "postgres.UserRepo.CreateUser"

	db := r.handle()

	u := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := db.QueryRow(ctx,
		`INSERT INTO users(username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, is_admin, created_at`,
		username, email, passwordHash,
	).Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}

// GetUserByUsername retrieves a user by username.
//
// Returns:
//   - error: repository.ErrNotFound if no such user exists.
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetUserByUsername"

	db := r.handle()

	var u domain.User
	err := db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_admin, created_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}

// GetUser retrieves a user by ID.
//
// Returns:
//   - error: repository.ErrNotFound if no such user exists.
func (r *UserRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	const op = "postgres.UserRepo.GetUser"

	db := r.handle()

	var u domain.User
	err := db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_admin, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}
