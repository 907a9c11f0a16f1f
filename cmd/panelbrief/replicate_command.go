package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"panel-brief/pkg/db"
	"panel-brief/pkg/replication"
)

func newReplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "replicate",
		Short: "Copy analyses and download records from Mongo into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config.Store
			if cfg.Kind == "mongo" || cfg.Kind == "" || cfg.Kind == "none" {
				return fmt.Errorf("replicate needs --store postgres or supabase as the target, got %q", cfg.Kind)
			}

			mongo := db.NewClient(cfg.MongoURI, cfg.MongoDatabase)
			if err := mongo.Connect(cmd.Context()); err != nil {
				return fmt.Errorf("failed to connect to mongo: %w", err)
			}
			defer mongo.Close(cmd.Context())

			return ctx.withStore(cmd.Context(), func(store db.Store) error {
				r, err := replication.NewReplicator(replication.Config{From: mongo, To: store})
				if err != nil {
					return err
				}
				stats, err := r.Replicate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %d analyses and %d download records (%d already present)\n",
					stats.Analyses, stats.Downloads, stats.Skipped)
				return nil
			})
		},
	}
}
