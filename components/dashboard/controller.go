package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-dataview/components/dataset"
)

var errMissingRenderer = errors.New("dashboard: controller renderer not configured")

// Default template names rendered by the Controller.
const (
	IndexTemplate = "index.html"
	TableTemplate = "table.html"
	ChartTemplate = "chart.html"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ViewService is the read side of Service the controller renders from.
type ViewService interface {
	Definitions(ctx context.Context, viewer ViewerContext) []WidgetDefinition
	Session(id string) (*Session, error)
	TableSnapshot(ctx context.Context, sessionID string) (TableSnapshot, error)
	ChartSnapshot(sessionID string) (ChartSnapshot, error)
	RenderChart(ctx context.Context, sessionID string) (string, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service       ViewService
	Renderer      Renderer
	IndexTemplate string
	TableTemplate string
	ChartTemplate string
	BasePath      string
}

// Controller turns sessions into HTML pages and JSON payloads.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.IndexTemplate == "" {
		opts.IndexTemplate = IndexTemplate
	}
	if opts.TableTemplate == "" {
		opts.TableTemplate = TableTemplate
	}
	if opts.ChartTemplate == "" {
		opts.ChartTemplate = ChartTemplate
	}
	if opts.BasePath == "" {
		opts.BasePath = "/admin/dataview"
	}
	return &Controller{opts: opts}
}

// RenderIndex renders the list of widgets the viewer may open.
func (c *Controller) RenderIndex(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Service == nil {
		return errors.New("dashboard: controller service not configured")
	}
	defs := c.opts.Service.Definitions(ctx, viewer)
	items := make([]map[string]any, 0, len(defs))
	for _, def := range defs {
		items = append(items, map[string]any{
			"code":        def.Code,
			"kind":        string(def.Kind),
			"name":        def.Name,
			"description": def.Description,
			"category":    def.Category,
		})
	}
	return c.render(c.opts.IndexTemplate, map[string]any{
		"widgets":   items,
		"locale":    viewer.Locale,
		"base_path": c.opts.BasePath,
	}, out)
}

// RenderSession renders a table or chart session page.
func (c *Controller) RenderSession(ctx context.Context, sessionID string, out io.Writer) error {
	payload, err := c.SessionPayload(ctx, sessionID)
	if err != nil {
		return err
	}
	name := c.opts.TableTemplate
	if payload["kind"] == string(KindChart) {
		name = c.opts.ChartTemplate
		html, err := c.opts.Service.RenderChart(ctx, sessionID)
		if err != nil {
			return err
		}
		payload["chart_html"] = html
	}
	payload["base_path"] = c.opts.BasePath
	return c.render(name, payload, out)
}

// SessionPayload returns the JSON-ready state of a session.
func (c *Controller) SessionPayload(ctx context.Context, sessionID string) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, errors.New("dashboard: controller service not configured")
	}
	sess, err := c.opts.Service.Session(sessionID)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"session_id": sess.ID,
		"code":       sess.Definition.Code,
		"kind":       string(sess.Definition.Kind),
	}
	switch sess.Definition.Kind {
	case KindChart:
		snap, err := c.opts.Service.ChartSnapshot(sessionID)
		if err != nil {
			return nil, err
		}
		payload["title"] = snap.Title
		payload["chart"] = snap
	default:
		snap, err := c.opts.Service.TableSnapshot(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		payload["title"] = snap.Title
		payload["table"] = snap
		payload["rows"] = tableRows(snap)
	}
	return payload, nil
}

func (c *Controller) render(name string, data map[string]any, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	if _, err := c.opts.Renderer.Render(name, data, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", name, err)
	}
	return nil
}

// tableRows flattens the page into display cells for the visible columns so
// templates need no map lookups.
func tableRows(snap TableSnapshot) []map[string]any {
	rows := make([]map[string]any, 0, len(snap.Page.Rows))
	for _, row := range snap.Page.Rows {
		cells := make([]string, 0, len(snap.Columns))
		for _, col := range snap.Columns {
			if !col.Visible || col.Select {
				continue
			}
			cells = append(cells, dataset.Stringify(row.Record.Value(col.Accessor)))
		}
		rows = append(rows, map[string]any{
			"id":       row.ID,
			"selected": row.Selected,
			"cells":    cells,
			"actions":  snap.Actions[row.ID],
		})
	}
	return rows
}
