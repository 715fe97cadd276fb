package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/venue-platform/cmd/mainconfig"
	"github.com/wolfman30/venue-platform/internal/app/bootstrap"
	"github.com/wolfman30/venue-platform/internal/intent"
	"github.com/wolfman30/venue-platform/internal/llm"
	"github.com/wolfman30/venue-platform/internal/venue"
)

func newParseCmd(e *env) *cobra.Command {
	var (
		patternOnly bool
		now         string
	)
	c := &cobra.Command{
		Use:   "parse <message>",
		Short: "Show the reservation intent extracted from a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg := *e.cfg
			loc := venue.Location(cfg.VenueTimezone)
			opts := intent.Options{
				Location:     loc,
				Duration:     cfg.ReservationDuration,
				DefaultLabel: cfg.ReservationLabel,
			}
			if now != "" {
				fixed, err := time.Parse(time.RFC3339, now)
				if err != nil {
					return fmt.Errorf("invalid --now (want RFC3339): %w", err)
				}
				opts.Now = func() time.Time { return fixed }
			}

			var model llm.Client
			if !patternOnly {
				awsCfg, err := mainconfig.LoadAWSConfig(ctx, &cfg)
				if err != nil {
					e.logger.Warn("aws config unavailable", "error", err)
				}
				var cleanup func()
				model, cleanup = bootstrap.BuildIntentModel(ctx, &cfg, awsCfg, e.logger)
				defer cleanup()
			}

			strategies := []intent.Strategy{intent.NewPatternStrategy(opts)}
			if model != nil {
				strategies = append([]intent.Strategy{intent.NewAIStrategy(model, "", opts, e.logger)}, strategies...)
			}
			in, strategy, err := intent.NewParser(strategies...).Parse(ctx, strings.Join(args, " "))
			if errors.Is(err, intent.ErrNotUnderstood) {
				return fmt.Errorf("message not understood by any strategy")
			}
			if err != nil {
				return err
			}

			local := in.Start.In(loc)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "strategy:   %s\n", strategy)
			fmt.Fprintf(out, "party size: %d\n", in.PartySize)
			fmt.Fprintf(out, "date:       %s\n", venue.FormatLongDate(local))
			fmt.Fprintf(out, "time:       %s\n", venue.FormatTime(local))
			fmt.Fprintf(out, "window:     %s - %s UTC\n", in.Start.UTC().Format(time.RFC3339), in.End.UTC().Format(time.RFC3339))
			if in.Notes != "" {
				fmt.Fprintf(out, "notes:      %s\n", in.Notes)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&patternOnly, "pattern-only", false, "skip the language model")
	c.Flags().StringVar(&now, "now", "", "pretend the current time is this RFC3339 instant")
	return c
}
