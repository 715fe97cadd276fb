package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/venue-platform/internal/config"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// env bundles what every subcommand loads from the environment.
type env struct {
	cfg    *appconfig.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Operate the SMS reservation booking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = appconfig.Load()
			level, _ := cmd.Flags().GetString("log-level")
			e.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
		},
	}
	root.PersistentFlags().String("log-level", "warn", "log level for diagnostics written to stderr")

	root.AddCommand(newParseCmd(e))
	root.AddCommand(newCheckCmd(e))
	root.AddCommand(newWindowCmd(e))
	return root
}

func (e *env) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if strings.TrimSpace(e.cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
