package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderTable(w io.Writer, header table.Row, rows []table.Row, configs []table.ColumnConfig) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if stdoutIsTerminal() {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = true
	}
	tw.AppendHeader(header)
	if len(configs) > 0 {
		tw.SetColumnConfigs(configs)
	}
	tw.AppendRows(rows)
	tw.Render()
}

func rightAligned(number int) table.ColumnConfig {
	return table.ColumnConfig{Number: number, Align: text.AlignRight}
}
