package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghostal/pkg/db"
)

func newInitDBCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the episodes, dialogue, tokens and actions tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			provider, err := ctx.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer provider.Close()

			if err := db.EnsureSchema(cmd.Context(), provider); err != nil {
				return err
			}
			log := ctx.logger(cmd)
			log.WithField("driver", cfg.Database.Driver).Info("schema ready")
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.Database.Driver)

			if sb, ok := provider.(*db.SupabaseClient); ok && sb.SDK() != nil {
				// A freshly created table can lag behind the REST schema cache.
				n, err := sb.RESTRowCount("episodes")
				if err != nil {
					log.WithError(err).Warn("episodes table not reachable through supabase REST")
					return nil
				}
				log.WithField("rows", n).Info("supabase REST reachable")
				fmt.Fprintf(cmd.OutOrStdout(), "supabase REST: episodes rows=%d\n", n)
			}
			return nil
		},
	}
}
