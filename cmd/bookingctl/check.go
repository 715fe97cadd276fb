package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/venue-platform/internal/availability"
	"github.com/wolfman30/venue-platform/internal/venue"
)

func newCheckCmd(e *env) *cobra.Command {
	var (
		date     string
		clock    string
		party    int
		duration time.Duration
	)
	c := &cobra.Command{
		Use:   "check",
		Short: "Run the availability layers against the database without booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := venue.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
			}
			at, err := venue.ParseClock(clock)
			if err != nil {
				return fmt.Errorf("invalid --time (want HH:MM)")
			}
			if party <= 0 {
				return fmt.Errorf("--party must be positive")
			}
			if duration <= 0 {
				duration = e.cfg.ReservationDuration
			}

			ctx := cmd.Context()
			pool, err := e.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			loc := venue.Location(e.cfg.VenueTimezone)
			resolver := availability.NewResolver(availability.NewPostgresStore(pool), loc)
			start := at.On(d, loc)
			result, err := resolver.Resolve(ctx, availability.Request{
				Start:     start.UTC(),
				End:       start.Add(duration).UTC(),
				PartySize: party,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Approved {
				fmt.Fprintf(out, "available: table %d (seats %d) for %d on %s at %s\n",
					result.Table.Number, result.Table.Capacity, party, venue.FormatLongDate(start), venue.FormatTime(start))
				return nil
			}
			fmt.Fprintf(out, "rejected by %s: %s\n", result.Layer, result.Message)
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", "", "local date, YYYY-MM-DD")
	c.Flags().StringVar(&clock, "time", "20:00", "local time, HH:MM")
	c.Flags().IntVar(&party, "party", 2, "party size")
	c.Flags().DurationVar(&duration, "duration", 0, "reservation length (default RESERVATION_DURATION)")
	_ = c.MarkFlagRequired("date")
	return c
}
