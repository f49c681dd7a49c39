// Package seed loads the demo catalog: one venue and a handful of
// upcoming shows. Running it twice is safe, existing rows are reused.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/showtix/showtix-go/internal/domain"
	postgresrepo "github.com/showtix/showtix-go/internal/repository/postgres"
	"github.com/showtix/showtix-go/internal/uow"
)

type sampleShow struct {
	title       string
	description string
	daysAhead   int
	priceCents  int
	totalSeats  int
}

var sampleVenue = domain.Venue{
	Name:     "CineMax Theater",
	Address:  "123 Movie Street, Cinema City",
	Capacity: 200,
}

var sampleShows = []sampleShow{
	{
		title:       "Interstellar Odyssey",
		description: "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
		daysAhead:   1,
		priceCents:  1599,
		totalSeats:  100,
	},
	{
		title:       "Galactic Heist",
		description: "A group of misfits plan the biggest heist in the galaxy, but things go hilariously wrong.",
		daysAhead:   2,
		priceCents:  1499,
		totalSeats:  150,
	},
	{
		title:       "Mystery of the Lost City",
		description: "Adventurers search for a legendary city lost to time, facing ancient puzzles and traps.",
		daysAhead:   3,
		priceCents:  1299,
		totalSeats:  120,
	},
	{
		title:       "Robot's Last Stand",
		description: "In a future ruled by machines, one robot dares to defy its programming for freedom.",
		daysAhead:   4,
		priceCents:  1399,
		totalSeats:  130,
	},
	{
		title:       "The Great Bake-Off",
		description: "Chefs from around the world compete in a high-stakes, comedic baking competition.",
		daysAhead:   5,
		priceCents:  1699,
		totalSeats:  180,
	},
}

// Run ensures the schema exists and inserts the demo venue and shows
// in a single transaction. Shows are matched by title, so rows created
// by an earlier run keep their bookings and ratings.
func Run(ctx context.Context, store *postgresrepo.Store, logger *slog.Logger) error {
	const op = "seed.Run"

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	now := time.Now().UTC()

	u := uow.NewUoW(store)
	err := u.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		venueID, created, err := store.Venues().With(tx).GetOrCreateVenue(ctx, sampleVenue)
		if err != nil {
			return err
		}

		var inserted int
		for _, s := range sampleShows {
			_, fresh, err := store.Shows().With(tx).GetOrCreateShow(ctx, domain.Show{
				VenueID:     venueID,
				Title:       s.title,
				Description: s.description,
				Date:        now.AddDate(0, 0, s.daysAhead),
				PriceCents:  s.priceCents,
				TotalSeats:  s.totalSeats,
			})
			if err != nil {
				return err
			}
			if fresh {
				inserted++
			}
		}

		after(func(ctx context.Context) {
			logger.Info("seed finished",
				"venue", sampleVenue.Name,
				"venue_created", created,
				"shows_inserted", inserted,
			)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
