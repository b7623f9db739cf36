package main

import (
	"github.com/spf13/cobra"

	"ghostal/pkg/db"
	"ghostal/pkg/episodefile"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape, preprocess and load in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			log := ctx.logger(cmd)
			out := cmd.OutOrStdout()

			// fail on configuration problems before any network traffic
			annotator, err := ctx.newAnnotator()
			if err != nil {
				return err
			}
			provider, err := ctx.openDatabase(runCtx)
			if err != nil {
				return err
			}
			defer provider.Close()
			if err := db.EnsureSchema(runCtx, provider); err != nil {
				return err
			}

			archive, err := ctx.openArchive(runCtx, log)
			if err != nil {
				return err
			}
			defer closeArchive(runCtx, archive, log)

			sum, err := runScrape(runCtx, cfg, archive, log, limit)
			if err != nil {
				return err
			}
			printSummary(out, "scrape", sum)

			sum, err = runPreprocess(runCtx, cfg, newPreprocessor(annotator, archive, log), 0)
			if err != nil {
				return err
			}
			printSummary(out, "preprocess", sum)

			sum, err = newLoader(cfg, provider, log).LoadDir(runCtx, episodefile.NewDir(cfg.Preprocess.ProcessedDir), 0)
			if err != nil {
				return err
			}
			printSummary(out, "load", sum)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Scrape at most N new episodes (0 = all)")
	return cmd
}
