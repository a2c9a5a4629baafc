package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/persistence"
	"github.com/spec-kit/tour-service/internal/repository"
	"github.com/spec-kit/tour-service/internal/seed"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if pg.Pool == nil {
				return persistence.ErrNoDatabase
			}
			return persistence.RunMigrations(cmd.Context(), pg, logger)
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		toursFile string
		usersFile string
		purge     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import or delete development data",
		Long: `Imports tours and users from JSON exports, or empties every table.

Example:
  tour-service seed --tours dev-data/tours.json --users dev-data/users.json
  tour-service seed --delete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !purge && toursFile == "" && usersFile == "" {
				return errors.New("nothing to do: pass --tours, --users or --delete")
			}

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if pg.Pool == nil {
				return persistence.ErrNoDatabase
			}

			if purge {
				if err := seed.Purge(ctx, pg.Pool); err != nil {
					return fmt.Errorf("delete data: %w", err)
				}
				logger.Info("data deleted")
			}

			importer := seed.NewImporter(
				repository.NewUserRepository(pg.Pool),
				repository.NewTourRepository(pg.Pool),
				auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency),
				logger,
			)
			if usersFile != "" {
				if err := importFile(usersFile, func(f *os.File) (int, error) { return importer.ImportUsers(ctx, f) }); err != nil {
					return err
				}
			}
			if toursFile != "" {
				if err := importFile(toursFile, func(f *os.File) (int, error) { return importer.ImportTours(ctx, f) }); err != nil {
					return err
				}
			}
			logger.Info("seed finished", zap.String("tours", toursFile), zap.String("users", usersFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&toursFile, "tours", "", "JSON file of tours to import")
	cmd.Flags().StringVar(&usersFile, "users", "", "JSON file of users to import")
	cmd.Flags().BoolVar(&purge, "delete", false, "Delete all bookings, reviews, tours and users first")

	return cmd
}

func importFile(path string, load func(*os.File) (int, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := load(f); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return nil
}
