package webhooks

import (
	"time"

	"github.com/goliatone/go-dataview/components/dataset"
)

// KeyHookField is the schema property every webhook payload must carry. It
// holds the hook name so receivers can route the delivery.
const KeyHookField = "keyHook"

// Status of a configured webhook.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Webhook is a configured delivery target.
type Webhook struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	HookName  string    `json:"hook_name"`
	Events    []string  `json:"events"`
	Schema    string    `json:"schema"`
	Secret    string    `json:"-"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	LastRunAt time.Time `json:"last_run_at,omitempty"`
}

// Record exposes the webhook to table views. The secret is never included.
func (w Webhook) Record() dataset.Record {
	rec := dataset.Record{
		dataset.IDField: w.ID,
		"name":          w.Name,
		"url":           w.URL,
		"hook_name":     w.HookName,
		"events":        len(w.Events),
		"status":        string(w.Status),
		"created_at":    w.CreatedAt,
	}
	if !w.LastRunAt.IsZero() {
		rec["last_run_at"] = w.LastRunAt
	}
	return rec
}

// SchemaField is one top-level property of a payload schema.
type SchemaField struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// Template pre-fills the create wizard.
type Template struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	HookName    string   `json:"hook_name" yaml:"hook_name"`
	Events      []string `json:"events" yaml:"events"`
	Schema      string   `json:"schema" yaml:"schema"`
}

// Event names a webhook can subscribe to.
var Events = []string{
	"member.created",
	"member.removed",
	"member.role_changed",
	"metrics.threshold",
	"report.generated",
}

// DefaultSchemaFields is used whenever a template schema cannot be parsed.
func DefaultSchemaFields() []SchemaField {
	return []SchemaField{
		{Name: KeyHookField, Type: "string", Required: true},
		{Name: "event", Type: "string", Required: true},
		{Name: "timestamp", Type: "string", Required: true},
		{Name: "data", Type: "object"},
	}
}

// DefaultTemplates ships with the wizard.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:          "member-events",
			Name:        "Member events",
			Description: "Notify when members join, leave or change role",
			HookName:    "members",
			Events:      []string{"member.created", "member.removed", "member.role_changed"},
			Schema: `{"type":"object","properties":{"keyHook":{"type":"string"},"event":{"type":"string"},` +
				`"member_id":{"type":"string"},"email":{"type":"string"},"role":{"type":"string"}},` +
				`"required":["keyHook","event","member_id"]}`,
		},
		{
			ID:          "metrics-alert",
			Name:        "Metrics alert",
			Description: "Post when a metric crosses its threshold",
			HookName:    "metrics-alert",
			Events:      []string{"metrics.threshold"},
			Schema: `{"type":"object","properties":{"keyHook":{"type":"string"},"metric":{"type":"string"},` +
				`"value":{"type":"number"},"threshold":{"type":"number"}},"required":["keyHook","metric","value"]}`,
		},
		{
			ID:          "blank",
			Name:        "Blank",
			Description: "Start from the default payload",
			Events:      []string{},
		},
	}
}
