package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dataview/components/chart"
	dashboard "github.com/goliatone/go-dataview/components/dashboard"
)

type viewService interface {
	ApplyTable(ctx context.Context, sessionID string, cmd dashboard.TableCommand) error
	ApplyChart(ctx context.Context, sessionID string, cmd dashboard.ChartCommand) error
	Ask(ctx context.Context, sessionID, query string) (chart.Message, error)
}

// ApplyTableInput carries one table mutation.
type ApplyTableInput struct {
	SessionID string                 `json:"session_id"`
	Command   dashboard.TableCommand `json:"command"`
}

// ApplyTableCommand wraps Service.ApplyTable.
type ApplyTableCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewApplyTableCommand creates the command.
func NewApplyTableCommand(service viewService, telemetry Telemetry) *ApplyTableCommand {
	return &ApplyTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyTableInput] = (*ApplyTableCommand)(nil)

// Execute applies the table mutation.
func (c *ApplyTableCommand) Execute(ctx context.Context, msg ApplyTableInput) error {
	if c.service == nil {
		return errors.New("table command requires service")
	}
	if msg.SessionID == "" {
		return errMissingSessionID
	}
	if msg.Command.Op == "" {
		return errors.New("table command requires an op")
	}
	if err := c.service.ApplyTable(ctx, msg.SessionID, msg.Command); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.table.apply", map[string]any{
		"session_id": msg.SessionID,
		"op":         string(msg.Command.Op),
	})
	return nil
}

// ApplyChartInput carries one chart mutation.
type ApplyChartInput struct {
	SessionID string                 `json:"session_id"`
	Command   dashboard.ChartCommand `json:"command"`
}

// ApplyChartCommand wraps Service.ApplyChart.
type ApplyChartCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewApplyChartCommand creates the command.
func NewApplyChartCommand(service viewService, telemetry Telemetry) *ApplyChartCommand {
	return &ApplyChartCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyChartInput] = (*ApplyChartCommand)(nil)

// Execute applies the chart mutation.
func (c *ApplyChartCommand) Execute(ctx context.Context, msg ApplyChartInput) error {
	if c.service == nil {
		return errors.New("chart command requires service")
	}
	if msg.SessionID == "" {
		return errMissingSessionID
	}
	if msg.Command.Op == "" {
		return errors.New("chart command requires an op")
	}
	if err := c.service.ApplyChart(ctx, msg.SessionID, msg.Command); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.chart.apply", map[string]any{
		"session_id": msg.SessionID,
		"op":         string(msg.Command.Op),
	})
	return nil
}

// AskInput sends a question to a chart session's chat. Reply, when set,
// receives the assistant message.
type AskInput struct {
	SessionID string         `json:"session_id"`
	Query     string         `json:"query"`
	Reply     *chart.Message `json:"-"`
}

// AskCommand wraps Service.Ask.
type AskCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewAskCommand creates the command.
func NewAskCommand(service viewService, telemetry Telemetry) *AskCommand {
	return &AskCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AskInput] = (*AskCommand)(nil)

// Execute asks the question and waits for the reply.
func (c *AskCommand) Execute(ctx context.Context, msg AskInput) error {
	if c.service == nil {
		return errors.New("ask command requires service")
	}
	if msg.SessionID == "" {
		return errMissingSessionID
	}
	reply, err := c.service.Ask(ctx, msg.SessionID, msg.Query)
	if err != nil {
		return err
	}
	if msg.Reply != nil {
		*msg.Reply = reply
	}
	c.telemetry.Record(ctx, "dataview.chat.ask", map[string]any{"session_id": msg.SessionID})
	return nil
}
