package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dashboard"
)

type chartCmd struct {
	sourceFlags `embed:""`

	Title  string   `help:"Chart title."`
	XField string   `name:"x-field" help:"Field used for the x axis."`
	Shape  string   `help:"Chart shape (line, bar, area)."`
	Series []string `help:"Series keys to keep visible (repeatable). Others are hidden."`
	Sort   string   `help:"Sort direction of the x axis (asc, desc, none)."`
	Out    string   `short:"o" default:"chart.html" type:"path" help:"HTML output file, '-' for stdout."`
}

func (cmd *chartCmd) Run(ctx context.Context, out io.Writer) error {
	view, err := cmd.open(ctx, dashboard.KindChart, dashboard.SalesChartCode, func(def *dashboard.WidgetDefinition) {
		def.Chart.XField = cmd.XField
	})
	if err != nil {
		return err
	}
	commands, err := cmd.commands(view)
	if err != nil {
		return err
	}
	for _, cc := range commands {
		if err := view.service.ApplyChart(ctx, view.session.ID, cc); err != nil {
			return err
		}
	}
	html, err := view.service.RenderChart(ctx, view.session.ID)
	if err != nil {
		return err
	}
	if cmd.Out == "-" {
		_, err = io.WriteString(out, html)
		return err
	}
	if err := os.WriteFile(cmd.Out, []byte(html), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("dataviewctl: write chart: %w", err)
	}
	snap, err := view.service.ChartSnapshot(view.session.ID)
	if err != nil {
		return err
	}
	printChartSummary(out, snap, cmd.Out)
	return nil
}

func (cmd *chartCmd) commands(view *openedView) ([]dashboard.ChartCommand, error) {
	var out []dashboard.ChartCommand
	if cmd.Title != "" {
		out = append(out, dashboard.ChartCommand{Op: dashboard.ChartTitle, Title: cmd.Title})
	}
	if cmd.XField != "" && cmd.Data == "" {
		out = append(out, dashboard.ChartCommand{Op: dashboard.ChartXField, Field: cmd.XField})
	}
	if cmd.Shape != "" {
		out = append(out, dashboard.ChartCommand{Op: dashboard.ChartShape, Shape: chart.ParseShape(cmd.Shape)})
	}
	if cmd.Sort != "" {
		out = append(out, dashboard.ChartCommand{Op: dashboard.ChartSort, Direction: chart.SortDirection(cmd.Sort)})
	}
	if len(cmd.Series) > 0 {
		snap, err := view.service.ChartSnapshot(view.session.ID)
		if err != nil {
			return nil, err
		}
		keep := map[string]bool{}
		for _, key := range cmd.Series {
			keep[key] = true
		}
		for _, s := range snap.Config.Series {
			if keep[s.Key] != snap.Config.Active.Has(s.Key) {
				out = append(out, dashboard.ChartCommand{Op: dashboard.ChartToggleSeries, Key: s.Key})
			}
		}
	}
	return out, nil
}

func printChartSummary(out io.Writer, snap dashboard.ChartSnapshot, path string) {
	color.New(color.Bold, color.FgCyan).Fprintln(out, snap.Spec.Title)
	var labels []string
	for _, s := range snap.Spec.Data.Series {
		labels = append(labels, s.Label)
	}
	fmt.Fprintf(out, "%s chart of %s over %d points\n", snap.Spec.Shape, strings.Join(labels, ", "), len(snap.Spec.Data.Categories))
	ticks := make([]string, len(snap.Spec.Ticks))
	for i, t := range snap.Spec.Ticks {
		ticks[i] = fmt.Sprintf("%g", t)
	}
	fmt.Fprintf(out, "max %g · ticks %s\n", snap.Spec.Max, strings.Join(ticks, " "))
	color.New(color.FgGreen).Fprintf(out, "✓ wrote %s\n", path)
}
