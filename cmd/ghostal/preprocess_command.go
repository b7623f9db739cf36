package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghostal/pkg/episodefile"
)

func newPreprocessCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var file string

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Annotate raw episode files into the processed directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			log := ctx.logger(cmd)
			annotator, err := ctx.newAnnotator()
			if err != nil {
				return err
			}
			archive, err := ctx.openArchive(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer closeArchive(cmd.Context(), archive, log)

			p := newPreprocessor(annotator, archive, log)

			if file != "" {
				res, err := p.ProcessFile(cmd.Context(), file, episodefile.NewDir(cfg.Preprocess.ProcessedDir))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "preprocess: %s %s\n", file, res)
				return nil
			}

			sum, err := runPreprocess(cmd.Context(), cfg, p, limit)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), "preprocess", sum)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Preprocess at most N files (0 = all)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Preprocess a single raw episode file")
	return cmd
}
