package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var speaker string
	var known bool

	cmd := &cobra.Command{
		Use:         "inspect <processed-file>",
		Short:       "Show the annotated turns of a processed episode file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := episodefile.ReadProcessed(args[0])
			if err != nil {
				return err
			}

			var keep func(string) bool
			switch {
			case speaker != "":
				keep = func(s string) bool { return strings.EqualFold(s, speaker) }
			case known:
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				keep = func(s string) bool { return containsFold(cfg.Preprocess.KnownSpeakers, s) }
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", titleOrURL(ep.EpisodeMeta), ep.URL)
			if gs := domain.Deref(ep.GuestStars); gs != "" {
				fmt.Fprintf(out, "Guest stars: %s\n", gs)
			}

			rows := turnRows(ep.Transcript, keep)
			fmt.Fprintln(out, renderTurns(rows, len(ep.Transcript), tableStyle(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&speaker, "speaker", "s", "", "Only show turns by this speaker")
	cmd.Flags().BoolVar(&known, "known", false, "Only show turns by the configured known speakers")
	return cmd
}

// turnRows builds one row per kept turn in turnColumns order. The # column
// keeps the turn's position in the full transcript.
func turnRows(turns []domain.ProcessedTurn, keep func(string) bool) [][]string {
	rows := make([][]string, 0, len(turns))
	for i, t := range turns {
		if keep != nil && !keep(t.Speaker) {
			continue
		}
		entities := make([]string, len(t.Entities))
		for j, e := range t.Entities {
			entities[j] = e.Text + "/" + e.Label
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Speaker,
			t.Text,
			strings.Join(t.Actions, "; "),
			strconv.Itoa(len(domain.FlattenSubwords(t.SubwordTokens))),
			strings.Join(entities, ", "),
		})
	}
	return rows
}

func titleOrURL(meta domain.EpisodeMeta) string {
	if meta.Title != nil {
		return *meta.Title
	}
	return meta.URL
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
