package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dataview/components/webhooks"
)

var errMissingWebhookID = errors.New("commands: webhook id is required")

type webhookService interface {
	Create(ctx context.Context, form webhooks.CreateForm) (webhooks.Webhook, error)
	SetStatus(ctx context.Context, id string, status webhooks.Status) (webhooks.Webhook, error)
	Delete(ctx context.Context, ids []string) error
	Test(ctx context.Context, id string) (webhooks.TestResult, error)
}

// CreateWebhookInput submits the create wizard.
type CreateWebhookInput struct {
	Form   webhooks.CreateForm `json:"form"`
	Result *webhooks.Webhook   `json:"-"`
}

// CreateWebhookCommand wraps webhooks.Service.Create.
type CreateWebhookCommand struct {
	service   webhookService
	telemetry Telemetry
}

// NewCreateWebhookCommand creates the command.
func NewCreateWebhookCommand(service webhookService, telemetry Telemetry) *CreateWebhookCommand {
	return &CreateWebhookCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateWebhookInput] = (*CreateWebhookCommand)(nil)

// Execute creates the webhook.
func (c *CreateWebhookCommand) Execute(ctx context.Context, msg CreateWebhookInput) error {
	if c.service == nil {
		return errors.New("create webhook command requires service")
	}
	hook, err := c.service.Create(ctx, msg.Form)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = hook
	}
	c.telemetry.Record(ctx, "webhooks.create", map[string]any{
		"webhook_id": hook.ID,
		"hook_name":  hook.HookName,
		"events":     len(hook.Events),
	})
	return nil
}

// SetWebhookStatusInput activates or deactivates a webhook.
type SetWebhookStatusInput struct {
	WebhookID string          `json:"webhook_id"`
	Status    webhooks.Status `json:"status"`
}

// SetWebhookStatusCommand wraps webhooks.Service.SetStatus.
type SetWebhookStatusCommand struct {
	service   webhookService
	telemetry Telemetry
}

// NewSetWebhookStatusCommand creates the command.
func NewSetWebhookStatusCommand(service webhookService, telemetry Telemetry) *SetWebhookStatusCommand {
	return &SetWebhookStatusCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetWebhookStatusInput] = (*SetWebhookStatusCommand)(nil)

// Execute changes the status.
func (c *SetWebhookStatusCommand) Execute(ctx context.Context, msg SetWebhookStatusInput) error {
	if c.service == nil {
		return errors.New("webhook status command requires service")
	}
	if msg.WebhookID == "" {
		return errMissingWebhookID
	}
	hook, err := c.service.SetStatus(ctx, msg.WebhookID, msg.Status)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "webhooks.status", map[string]any{
		"webhook_id": hook.ID,
		"status":     string(hook.Status),
	})
	return nil
}

// DeleteWebhooksInput removes webhooks by id.
type DeleteWebhooksInput struct {
	WebhookIDs []string `json:"webhook_ids"`
}

// DeleteWebhooksCommand wraps webhooks.Service.Delete.
type DeleteWebhooksCommand struct {
	service   webhookService
	telemetry Telemetry
}

// NewDeleteWebhooksCommand creates the command.
func NewDeleteWebhooksCommand(service webhookService, telemetry Telemetry) *DeleteWebhooksCommand {
	return &DeleteWebhooksCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteWebhooksInput] = (*DeleteWebhooksCommand)(nil)

// Execute deletes the webhooks.
func (c *DeleteWebhooksCommand) Execute(ctx context.Context, msg DeleteWebhooksInput) error {
	if c.service == nil {
		return errors.New("delete webhooks command requires service")
	}
	if len(msg.WebhookIDs) == 0 {
		return errMissingWebhookID
	}
	if err := c.service.Delete(ctx, msg.WebhookIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "webhooks.delete", map[string]any{"count": len(msg.WebhookIDs)})
	return nil
}

// TestWebhookInput runs a simulated delivery. Result, when set, receives the
// outcome.
type TestWebhookInput struct {
	WebhookID string               `json:"webhook_id"`
	Result    *webhooks.TestResult `json:"-"`
}

// TestWebhookCommand wraps webhooks.Service.Test.
type TestWebhookCommand struct {
	service   webhookService
	telemetry Telemetry
}

// NewTestWebhookCommand creates the command.
func NewTestWebhookCommand(service webhookService, telemetry Telemetry) *TestWebhookCommand {
	return &TestWebhookCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TestWebhookInput] = (*TestWebhookCommand)(nil)

// Execute runs the test delivery.
func (c *TestWebhookCommand) Execute(ctx context.Context, msg TestWebhookInput) error {
	if c.service == nil {
		return errors.New("test webhook command requires service")
	}
	if msg.WebhookID == "" {
		return errMissingWebhookID
	}
	result, err := c.service.Test(ctx, msg.WebhookID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "webhooks.test", map[string]any{
		"webhook_id":  msg.WebhookID,
		"success":     result.Success,
		"status_code": result.StatusCode,
	})
	return nil
}
