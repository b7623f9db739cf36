package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// turnColumn describes one column of the inspect view.
type turnColumn struct {
	title    string
	align    text.Align
	widthMax int
	wrap     table.WidthEnforcer
}

// turnColumns lays out a processed turn. Dialogue gets the most room and is
// soft-wrapped on words; the bookkeeping columns stay narrow.
var turnColumns = []turnColumn{
	{title: "#", align: text.AlignRight, widthMax: 5},
	{title: "Speaker", align: text.AlignLeft, widthMax: 20, wrap: text.WrapSoft},
	{title: "Text", align: text.AlignLeft, widthMax: 60, wrap: text.WrapSoft},
	{title: "Actions", align: text.AlignLeft, widthMax: 24, wrap: text.WrapSoft},
	{title: "Tokens", align: text.AlignRight, widthMax: 6},
	{title: "Entities", align: text.AlignLeft, widthMax: 32, wrap: text.WrapSoft},
}

// renderTurns renders rows built by turnRows, with a footer counting the
// shown turns against the episode total.
func renderTurns(rows [][]string, total int, style table.Style) string {
	tw := table.NewWriter()
	tw.SetStyle(style)

	header := make(table.Row, len(turnColumns))
	configs := make([]table.ColumnConfig, len(turnColumns))
	for i, col := range turnColumns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			Align:            col.align,
			AlignHeader:      text.AlignLeft,
			AlignFooter:      text.AlignLeft,
			WidthMax:         col.widthMax,
			WidthMaxEnforcer: col.wrap,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(turnColumns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d turns", len(rows), total)})

	return tw.Render()
}

// tableStyle uses box drawing on terminals and plain ASCII otherwise.
func tableStyle(w io.Writer) table.Style {
	file, ok := w.(*os.File)
	if !ok {
		return table.StyleDefault
	}
	fd := file.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return table.StyleRounded
	}
	return table.StyleDefault
}
