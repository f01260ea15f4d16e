package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/dataset"
)

type tableCmd struct {
	sourceFlags `embed:""`

	Search       string   `short:"s" help:"Search text matched against the search column."`
	SearchColumn string   `help:"Search column for --data tables."`
	Status       []string `help:"Accepted status values (repeatable)."`
	StatusColumn string   `help:"Status column for --data tables."`
	Sort         []string `help:"Sort columns in priority order, prefix with '-' for descending."`
	Page         int      `default:"1" help:"1-based page number."`
	PageSize     int      `help:"Rows per page."`
	Facets       bool     `help:"Print the status facet counts."`
}

func (cmd *tableCmd) Run(ctx context.Context, out io.Writer) error {
	view, err := cmd.open(ctx, dashboard.KindTable, dashboard.OrdersTableCode, func(def *dashboard.WidgetDefinition) {
		def.Table.SearchColumn = cmd.SearchColumn
		def.Table.StatusColumn = cmd.StatusColumn
	})
	if err != nil {
		return err
	}
	for _, tc := range cmd.commands() {
		if err := view.service.ApplyTable(ctx, view.session.ID, tc); err != nil {
			return err
		}
	}
	snap, err := view.service.TableSnapshot(ctx, view.session.ID)
	if err != nil {
		return err
	}
	printTable(out, snap, cmd.Facets)
	return nil
}

func (cmd *tableCmd) commands() []dashboard.TableCommand {
	var out []dashboard.TableCommand
	if cmd.Search != "" {
		out = append(out, dashboard.TableCommand{Op: dashboard.TableSearch, Value: cmd.Search})
	}
	if len(cmd.Status) > 0 {
		out = append(out, dashboard.TableCommand{Op: dashboard.TableStatus, Values: cmd.Status})
	}
	for i, key := range cmd.Sort {
		column := strings.TrimPrefix(key, "-")
		multi := i > 0
		out = append(out, dashboard.TableCommand{Op: dashboard.TableSort, Column: column, Multi: multi})
		if strings.HasPrefix(key, "-") {
			out = append(out, dashboard.TableCommand{Op: dashboard.TableSort, Column: column, Multi: true})
		}
	}
	if cmd.PageSize > 0 {
		out = append(out, dashboard.TableCommand{Op: dashboard.TablePageSize, Size: cmd.PageSize})
	}
	if cmd.Page > 1 {
		out = append(out, dashboard.TableCommand{Op: dashboard.TablePage, Index: cmd.Page - 1})
	}
	return out
}

func printTable(out io.Writer, snap dashboard.TableSnapshot, facets bool) {
	header := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.Faint)

	header.Fprintln(out, snap.Title)
	rows := pageCells(snap)
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	var headers []string
	for _, col := range snap.Columns {
		if col.Visible && !col.Select {
			label := col.Header
			switch col.Sort {
			case "asc":
				label += " ↑"
			case "desc":
				label += " ↓"
			}
			headers = append(headers, label)
		}
	}
	fmt.Fprintln(tw, header.Sprint(strings.Join(headers, "\t")))
	for _, cells := range rows {
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()

	page := snap.Page
	dim.Fprintf(out, "page %d of %d · %d of %d rows\n", page.PageIndex+1, max(page.PageCount, 1), page.FilteredRows, page.TotalRows)
	if facets && len(snap.Facets) > 0 {
		parts := make([]string, 0, len(snap.Facets))
		for _, f := range snap.Facets {
			parts = append(parts, fmt.Sprintf("%s %s", f.Value, color.YellowString("%d", f.Count)))
		}
		fmt.Fprintln(out, strings.Join(parts, "  "))
	}
}

func pageCells(snap dashboard.TableSnapshot) [][]string {
	rows := make([][]string, 0, len(snap.Page.Rows))
	for _, row := range snap.Page.Rows {
		var cells []string
		for _, col := range snap.Columns {
			if !col.Visible || col.Select {
				continue
			}
			cells = append(cells, dataset.Stringify(row.Record.Value(col.Accessor)))
		}
		rows = append(rows, cells)
	}
	return rows
}
