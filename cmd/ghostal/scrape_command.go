package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scrape [base-url]",
		Short: "Download new episode pages into the raw directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				cfg.Scrape.BaseURL = strings.TrimSpace(args[0])
			}

			log := ctx.logger(cmd)
			archive, err := ctx.openArchive(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer closeArchive(cmd.Context(), archive, log)

			sum, err := runScrape(cmd.Context(), cfg, archive, log, limit)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), "scrape", sum)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Scrape at most N new episodes (0 = all)")
	return cmd
}
