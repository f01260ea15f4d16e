package dashboard

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func TestControllerRenderIndex(t *testing.T) {
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Service:  newTestService(Options{}),
		Renderer: renderer,
	})

	var buf bytes.Buffer
	if err := controller.RenderIndex(context.Background(), ViewerContext{UserID: "user", Locale: "es"}, &buf); err != nil {
		t.Fatalf("RenderIndex returned error: %v", err)
	}
	if renderer.lastTemplate != IndexTemplate {
		t.Fatalf("expected index template to render, got %s", renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
	widgets, ok := renderer.lastPayload["widgets"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, widgets, 3)
	names := map[string]any{}
	for _, w := range widgets {
		names[w["code"].(string)] = w["name"]
	}
	assert.Equal(t, "Pedidos", names[OrdersTableCode])
	assert.Equal(t, "/admin/dataview", renderer.lastPayload["base_path"])
}

func TestControllerRenderTableSession(t *testing.T) {
	svc := newTestService(Options{})
	sess, err := svc.Open(context.Background(), ViewerContext{UserID: "user"}, OpenRequest{Code: OrdersTableCode})
	require.NoError(t, err)
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{Service: svc, Renderer: renderer, BasePath: "/dv"})

	var buf bytes.Buffer
	require.NoError(t, controller.RenderSession(context.Background(), sess.ID, &buf))
	assert.Equal(t, TableTemplate, renderer.lastTemplate)
	assert.Equal(t, "/dv", renderer.lastPayload["base_path"])
	assert.Equal(t, "Orders", renderer.lastPayload["title"])

	rows, ok := renderer.lastPayload["rows"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 10)
	cells, ok := rows[0]["cells"].([]string)
	require.True(t, ok)
	assert.Len(t, cells, 5)
}

func TestControllerRenderChartSession(t *testing.T) {
	svc := newTestService(Options{})
	sess, err := svc.Open(context.Background(), ViewerContext{UserID: "user"}, OpenRequest{Code: SalesChartCode})
	require.NoError(t, err)
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{Service: svc, Renderer: renderer})

	var buf bytes.Buffer
	require.NoError(t, controller.RenderSession(context.Background(), sess.ID, &buf))
	assert.Equal(t, ChartTemplate, renderer.lastTemplate)
	html, _ := renderer.lastPayload["chart_html"].(string)
	assert.NotEmpty(t, html)
	_, ok := renderer.lastPayload["chart"].(ChartSnapshot)
	assert.True(t, ok)
}

func TestControllerSessionPayloadUnknownSession(t *testing.T) {
	controller := NewController(ControllerOptions{Service: newTestService(Options{}), Renderer: &stubRenderer{}})
	_, err := controller.SessionPayload(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestControllerRequiresRenderer(t *testing.T) {
	controller := NewController(ControllerOptions{Service: newTestService(Options{})})
	err := controller.RenderIndex(context.Background(), ViewerContext{}, io.Discard)
	assert.ErrorIs(t, err, errMissingRenderer)
}
