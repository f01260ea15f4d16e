package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/dashboard/commands"
	"github.com/goliatone/go-dataview/components/dashboard/httpapi"
	"github.com/goliatone/go-dataview/components/dashboard/queries"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestMountRegistersRoutes(t *testing.T) {
	fx := newFixture()
	mock := newMockRouter("/admin/dataview")
	mount(mock, fx.options())

	for _, key := range []string{
		"GET:/admin/dataview/",
		"GET:/admin/dataview/sessions/:id",
		"GET:/admin/dataview/sessions/:id/_state",
		"GET:/admin/dataview/sessions/:id/window",
		"POST:/admin/dataview/sessions",
		"POST:/admin/dataview/sessions/:id/table",
		"POST:/admin/dataview/sessions/:id/chart",
		"POST:/admin/dataview/sessions/:id/ask",
		"POST:/admin/dataview/sessions/:id/refresh",
		"POST:/admin/dataview/events",
		"DELETE:/admin/dataview/sessions/:id",
	} {
		if _, ok := mock.routes[key]; !ok {
			t.Fatalf("expected route %s to be registered", key)
		}
	}
	if _, ok := mock.ws["/admin/dataview/ws"]; !ok {
		t.Fatalf("expected websocket route")
	}
}

func TestIndexRendersWidgets(t *testing.T) {
	fx := newFixture()
	h := fx.endpoint(t, http.MethodGet, "/")

	ctx := newMockContext()
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if string(ctx.body) != "ok" {
		t.Fatalf("expected rendered body, got %q", ctx.body)
	}
	if ctx.headers["Content-Type"] != "text/html; charset=utf-8" {
		t.Fatalf("expected html content type, got %q", ctx.headers["Content-Type"])
	}
	if fx.renderer.calls != 1 || fx.renderer.last != dashboard.IndexTemplate {
		t.Fatalf("expected index template render, got %d calls of %q", fx.renderer.calls, fx.renderer.last)
	}
}

func TestOpenSessionThenApplyTableCommand(t *testing.T) {
	fx := newFixture()

	open := newMockContext()
	open.body = []byte(`{"code":"` + dashboard.OrdersTableCode + `"}`)
	open.locals["user_id"] = "u1"
	if err := fx.endpoint(t, http.MethodPost, "/sessions")(open); err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	if open.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", open.status, open.body)
	}
	var result commands.OpenSessionResult
	if err := json.Unmarshal(open.body, &result); err != nil {
		t.Fatalf("decode open result: %v", err)
	}
	if result.SessionID != "s-1" || result.Kind != dashboard.KindTable {
		t.Fatalf("unexpected open result %+v", result)
	}

	apply := newMockContext()
	apply.params["id"] = result.SessionID
	apply.body = []byte(`{"op":"search","value":"olivia"}`)
	if err := fx.endpoint(t, http.MethodPost, "/sessions/:id/table")(apply); err != nil {
		t.Fatalf("table returned error: %v", err)
	}
	if apply.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", apply.status, apply.body)
	}

	state := newMockContext()
	state.params["id"] = result.SessionID
	if err := fx.endpoint(t, http.MethodGet, "/sessions/:id/_state")(state); err != nil {
		t.Fatalf("state returned error: %v", err)
	}
	var payload struct {
		Table dashboard.TableSnapshot `json:"table"`
	}
	if err := json.Unmarshal(state.body, &payload); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if payload.Table.Search != "olivia" || payload.Table.Page.FilteredRows != 1 {
		t.Fatalf("expected filtered table, got search %q rows %d", payload.Table.Search, payload.Table.Page.FilteredRows)
	}
}

func TestUnknownSessionMapsToNotFound(t *testing.T) {
	fx := newFixture()
	ctx := newMockContext()
	ctx.params["id"] = "missing"
	if err := fx.endpoint(t, http.MethodGet, "/sessions/:id/_state")(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.status)
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	fx := newFixture()
	ctx := newMockContext()
	ctx.params["id"] = "s-1"
	ctx.body = []byte(`{`)
	if err := fx.endpoint(t, http.MethodPost, "/sessions/:id/ask")(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.status)
	}
}

func TestInferLocale(t *testing.T) {
	ctx := newMockContext()
	ctx.header["Accept-Language"] = "pt-BR,pt;q=0.9,en;q=0.8"
	if got := inferLocale(ctx); got != "pt-br" {
		t.Fatalf("expected header locale, got %q", got)
	}
	ctx.query["locale"] = "ES"
	if got := inferLocale(ctx); got != "es" {
		t.Fatalf("expected query locale, got %q", got)
	}
	ctx.locals["locale"] = "fr"
	if got := inferLocale(ctx); got != "fr" {
		t.Fatalf("expected locals locale, got %q", got)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"en-US":             "en-us",
		" ;q=0.1, de;q=0.5": "de",
		"es;q=0.9,en":       "es",
	}
	for header, want := range cases {
		if got := parseAcceptLanguage(header); got != want {
			t.Fatalf("parseAcceptLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Index: "/home"})
	if routes.Index != "/home" {
		t.Fatalf("override lost: %q", routes.Index)
	}
	if routes.WebSocket != "/ws" || routes.Session != "/sessions/:id" {
		t.Fatalf("defaults not applied: %+v", routes)
	}
}

// --- Test helpers ---

type fixture struct {
	service    *dashboard.Service
	renderer   *stubRenderer
	controller *dashboard.Controller
	api        *httpapi.Handlers
}

func newFixture() *fixture {
	service := dashboard.NewService(dashboard.Options{
		NewID: func() string { return "s-1" },
	})
	renderer := &stubRenderer{}
	return &fixture{
		service:  service,
		renderer: renderer,
		controller: dashboard.NewController(dashboard.ControllerOptions{
			Service:  service,
			Renderer: renderer,
		}),
		api: &httpapi.Handlers{
			Open:    commands.NewOpenSessionCommand(service, nil),
			Close:   commands.NewCloseSessionCommand(service, nil),
			Refresh: commands.NewRefreshSessionCommand(service, nil),
			Table:   commands.NewApplyTableCommand(service, nil),
			Chart:   commands.NewApplyChartCommand(service, nil),
			Ask:     commands.NewAskCommand(service, nil),
			Notify:  commands.NewNotifyViewCommand(service, nil),
		},
	}
}

func (fx *fixture) options() mountOptions {
	return mountOptions{
		controller: fx.controller,
		api:        fx.api,
		window:     queries.NewTableWindowQuery(fx.service),
		broadcast:  dashboard.NewBroadcastHook(),
		routes:     defaultRouteConfig(RouteConfig{}),
	}
}

func (fx *fixture) endpoint(t *testing.T, method, path string) func(RequestContext) error {
	t.Helper()
	for _, ep := range endpoints(fx.options()) {
		if ep.method == method && ep.path == path {
			return ep.handler
		}
	}
	t.Fatalf("no endpoint %s %s", method, path)
	return nil
}

type mockRouter struct {
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter(prefix string) *mockRouter {
	return &mockRouter{
		prefix: prefix,
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	m.routes[method+":"+m.prefix+path] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(http.MethodGet, path, handler)
	return nil
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(http.MethodPost, path, handler)
	return nil
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(http.MethodDelete, path, handler)
	return nil
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[m.prefix+path] = handler
	return nil
}

type mockContext struct {
	ctx     context.Context
	headers map[string]string
	header  map[string]string
	query   map[string]string
	body    []byte
	locals  map[any]any
	params  map[string]string
	status  int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:     context.Background(),
		headers: map[string]string{},
		header:  map[string]string{},
		query:   map[string]string{},
		locals:  map[any]any{},
		params:  map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return nil
}

func (m *mockContext) Header(k string) string {
	return m.header[k]
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	return lookup(m.params, name, defaultValue)
}

func (m *mockContext) Query(name string, defaultValue ...string) string {
	return lookup(m.query, name, defaultValue)
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

func lookup(values map[string]string, name string, defaultValue []string) string {
	if v, ok := values[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

type stubRenderer struct {
	calls int
	last  string
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	s.last = name
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}
