package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS venues (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL,
	address  TEXT NOT NULL DEFAULT '',
	capacity INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS shows (
	id           BIGSERIAL PRIMARY KEY,
	venue_id     BIGINT NOT NULL REFERENCES venues(id),
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	date         TIMESTAMPTZ NOT NULL,
	price_cents  INT NOT NULL DEFAULT 0,
	total_seats  INT NOT NULL DEFAULT 0,
	booked_seats INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bookings (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL REFERENCES users(id),
	show_id      BIGINT NOT NULL REFERENCES shows(id),
	tickets      INT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'PENDING',
	booking_time TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_user_time_idx
	ON bookings (user_id, booking_time DESC);

CREATE TABLE IF NOT EXISTS ratings (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	show_id    BIGINT NOT NULL REFERENCES shows(id),
	rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, show_id)
);
`

// EnsureSchema creates all tables when they do not exist yet. Show
// titles deliberately carry no uniqueness constraint.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "postgres.Store.EnsureSchema"

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
