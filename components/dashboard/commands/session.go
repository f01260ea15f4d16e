package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dataview/components/dashboard"
)

var errMissingSessionID = errors.New("commands: session id is required")

type sessionService interface {
	Open(ctx context.Context, viewer dashboard.ViewerContext, req dashboard.OpenRequest) (*dashboard.Session, error)
	Close(ctx context.Context, id string) error
	Refresh(ctx context.Context, id string) error
}

// OpenSessionInput opens a widget for a viewer. Result, when set, receives
// the opened session identity.
type OpenSessionInput struct {
	Viewer        dashboard.ViewerContext `json:"viewer"`
	Code          string                  `json:"code"`
	Configuration map[string]any          `json:"configuration,omitempty"`
	Result        *OpenSessionResult      `json:"-"`
}

// OpenSessionResult identifies an opened session.
type OpenSessionResult struct {
	SessionID string         `json:"session_id"`
	Code      string         `json:"code"`
	Kind      dashboard.Kind `json:"kind"`
}

// OpenSessionCommand wraps Service.Open.
type OpenSessionCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewOpenSessionCommand creates the command.
func NewOpenSessionCommand(service sessionService, telemetry Telemetry) *OpenSessionCommand {
	return &OpenSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenSessionInput] = (*OpenSessionCommand)(nil)

// Execute opens the session and copies it into msg.Result.
func (c *OpenSessionCommand) Execute(ctx context.Context, msg OpenSessionInput) error {
	if c.service == nil {
		return errors.New("open command requires service")
	}
	if msg.Code == "" {
		return errors.New("open command requires widget code")
	}
	sess, err := c.service.Open(ctx, msg.Viewer, dashboard.OpenRequest{Code: msg.Code, Configuration: msg.Configuration})
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = OpenSessionResult{
			SessionID: sess.ID,
			Code:      sess.Definition.Code,
			Kind:      sess.Kind(),
		}
	}
	c.telemetry.Record(ctx, "dataview.session.open", map[string]any{
		"code":       msg.Code,
		"session_id": sess.ID,
	})
	return nil
}

// CloseSessionInput identifies the session to close.
type CloseSessionInput struct {
	SessionID string `json:"session_id"`
}

// CloseSessionCommand wraps Service.Close.
type CloseSessionCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewCloseSessionCommand creates the command.
func NewCloseSessionCommand(service sessionService, telemetry Telemetry) *CloseSessionCommand {
	return &CloseSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CloseSessionInput] = (*CloseSessionCommand)(nil)

// Execute closes the session.
func (c *CloseSessionCommand) Execute(ctx context.Context, msg CloseSessionInput) error {
	if c.service == nil {
		return errors.New("close command requires service")
	}
	if msg.SessionID == "" {
		return errMissingSessionID
	}
	if err := c.service.Close(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.session.close", map[string]any{"session_id": msg.SessionID})
	return nil
}

// RefreshSessionInput identifies the session to reload.
type RefreshSessionInput struct {
	SessionID string `json:"session_id"`
}

// RefreshSessionCommand reloads session records from their source.
type RefreshSessionCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewRefreshSessionCommand creates the command.
func NewRefreshSessionCommand(service sessionService, telemetry Telemetry) *RefreshSessionCommand {
	return &RefreshSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshSessionInput] = (*RefreshSessionCommand)(nil)

// Execute reloads the session.
func (c *RefreshSessionCommand) Execute(ctx context.Context, msg RefreshSessionInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.SessionID == "" {
		return errMissingSessionID
	}
	if err := c.service.Refresh(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.session.refresh", map[string]any{"session_id": msg.SessionID})
	return nil
}
