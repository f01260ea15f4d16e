package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Table    tableCmd    `cmd:"" help:"Print a page of a widget or data file as a table."`
	Chart    chartCmd    `cmd:"" help:"Render a chart widget or data file to an HTML file."`
	Ask      askCmd      `cmd:"" help:"Ask the insight generator a question about a chart."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a widget definition to a manifest, deriving columns or series from sample data."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("dataviewctl"),
		kong.Description("Query tables, render charts and scaffold go-dataview manifests."),
		kong.UsageOnError(),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}
