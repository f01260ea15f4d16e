package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/goliatone/go-dataview/components/dashboard"
)

type askCmd struct {
	sourceFlags `embed:""`

	Query []string `arg:"" help:"Questions to ask, answered in order."`
	Style string   `default:"dark" enum:"dark,light,notty" help:"Markdown style for answers."`
	Plain bool     `help:"Print answers without markdown rendering."`
}

func (cmd *askCmd) Run(ctx context.Context, out io.Writer) error {
	view, err := cmd.open(ctx, dashboard.KindChart, dashboard.SalesChartCode, nil)
	if err != nil {
		return err
	}
	for _, query := range cmd.Query {
		reply, err := view.service.Ask(ctx, view.session.ID, query)
		if err != nil {
			return err
		}
		color.New(color.Bold, color.FgMagenta).Fprintf(out, "> %s\n", query)
		answer, err := cmd.render(reply.Content)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, answer)
	}
	return nil
}

func (cmd *askCmd) render(markdown string) (string, error) {
	if cmd.Plain {
		return markdown, nil
	}
	rendered, err := glamour.Render(markdown, cmd.Style)
	if err != nil {
		return "", fmt.Errorf("dataviewctl: render answer: %w", err)
	}
	return rendered, nil
}
