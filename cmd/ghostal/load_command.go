package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghostal/pkg/db"
	"ghostal/pkg/episodefile"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var file string
	var replace bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load processed episode files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("replace-transcript") {
				cfg.Database.ReplaceTranscript = replace
			}

			provider, err := ctx.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer provider.Close()

			if err := db.EnsureSchema(cmd.Context(), provider); err != nil {
				return err
			}

			l := newLoader(cfg, provider, ctx.logger(cmd))

			if file != "" {
				outcome, err := l.LoadFile(cmd.Context(), file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "load: %s %s\n", file, outcome)
				return nil
			}

			sum, err := l.LoadDir(cmd.Context(), episodefile.NewDir(cfg.Preprocess.ProcessedDir), limit)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), "load", sum)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Load at most N files (0 = all)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Load a single processed episode file")
	cmd.Flags().BoolVar(&replace, "replace-transcript", false, "Rewrite dialogue and token rows of episodes already loaded")
	return cmd
}
