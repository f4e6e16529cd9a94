package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/services"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(ctx context.Context, c *commandContext) error {
	cfg := c.ensureConfig()
	return c.withStore(ctx, func(store repository.Store) error {
		if cfg.Database.Seed {
			if _, err := services.NewDatabaseSeeder(store).SeedDatabase(ctx); err != nil {
				slog.Error("Failed to seed database", "error", err)
			}
		}

		server := services.NewServer(cfg, store)
		if err := server.InitializeServices(ctx); err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		return server.Start(ctx)
	})
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// OpenStore migrates before returning.
			return ctx.withStore(cmd.Context(), func(repository.Store) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s store\n", ctx.ensureConfig().Database.ResolveDriver())
				return nil
			})
		},
	}
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo student accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store repository.Store) error {
				created, err := services.NewDatabaseSeeder(store).SeedDatabase(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d user(s)\n", created)
				return nil
			})
		},
	}
}
