package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dataview/components/dashboard"
)

// NotifyViewInput emits a view event to the refresh hooks.
type NotifyViewInput struct {
	Event dashboard.ViewEvent
}

type refreshNotifier interface {
	NotifyViewUpdated(ctx context.Context, event dashboard.ViewEvent) error
}

// NotifyViewCommand triggers refresh hooks without forcing transports.
type NotifyViewCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewNotifyViewCommand creates the command.
func NewNotifyViewCommand(service refreshNotifier, telemetry Telemetry) *NotifyViewCommand {
	return &NotifyViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[NotifyViewInput] = (*NotifyViewCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *NotifyViewCommand) Execute(ctx context.Context, msg NotifyViewInput) error {
	if c.service == nil {
		return errors.New("notify command requires service")
	}
	if err := c.service.NotifyViewUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.view.notify", map[string]any{
		"code":       msg.Event.Code,
		"session_id": msg.Event.SessionID,
		"reason":     msg.Event.Reason,
	})
	return nil
}
