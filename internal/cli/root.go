// Package cli holds the operator commands of the back-office: catalog seeding,
// stock inspection and spreadsheet exports.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/gasflow-backend/api/routes"
	"github.com/angelmondragon/gasflow-backend/internal/app"
	"github.com/angelmondragon/gasflow-backend/pkg/config"
	"github.com/angelmondragon/gasflow-backend/pkg/db"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
	"github.com/angelmondragon/gasflow-backend/pkg/migrate"
)

// env is what every subcommand gets after bootstrap.
type env struct {
	cfg      *config.Config
	logg     *logger.Logger
	loc      *time.Location
	db       *db.Client
	services routes.Services
}

var current *env

var rootCmd = &cobra.Command{
	Use:           "backoffice",
	Short:         "Operator tools for the gas and water delivery back-office",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if current != nil {
			return nil
		}
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		current = e
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil || current.db == nil {
			return nil
		}
		return current.db.Close()
	},
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func bootstrap(ctx context.Context) (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Service.Kind = "cli"

	logg := logger.ForApp("backoffice-cli", cfg.App, os.Stderr)
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	services, err := app.BuildServices(app.Params{Config: cfg, Logger: logg, DB: dbClient})
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	return &env{cfg: cfg, logg: logg, loc: loc, db: dbClient, services: services}, nil
}
