package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wolfman30/venue-platform/internal/availability"
	"github.com/wolfman30/venue-platform/internal/venue"
)

func newWindowCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show or change the dates that accept reservations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configured booking window",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := e.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			bw, ok, err := availability.NewPostgresStore(pool).BookingWindow(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no booking window configured; every date is open")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s through %s\n", bw.Start, bw.End)
			return nil
		},
	})
	cmd.AddCommand(newWindowSetCmd(e))
	return cmd
}

func newWindowSetCmd(e *env) *cobra.Command {
	var start, end string
	c := &cobra.Command{
		Use:   "set",
		Short: "Replace the booking window",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := venue.ParseDate(start)
			if err != nil {
				return fmt.Errorf("invalid --start (want YYYY-MM-DD)")
			}
			en, err := venue.ParseDate(end)
			if err != nil {
				return fmt.Errorf("invalid --end (want YYYY-MM-DD)")
			}
			if en.Before(s) {
				return fmt.Errorf("--end is before --start")
			}

			pool, err := e.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := availability.NewPostgresStore(pool).SetBookingWindow(cmd.Context(), venue.BookingWindow{Start: s, End: en}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booking window set to %s through %s\n", s, en)
			return nil
		},
	}
	c.Flags().StringVar(&start, "start", "", "first bookable date, YYYY-MM-DD")
	c.Flags().StringVar(&end, "end", "", "last bookable date, YYYY-MM-DD")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}
