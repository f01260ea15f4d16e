package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/dashboard/commands"
	"github.com/goliatone/go-dataview/components/dashboard/httpapi"
	"github.com/goliatone/go-dataview/components/dashboard/queries"
	"github.com/goliatone/go-dataview/components/table"
)

// ViewerResolver converts a request into a dashboard.ViewerContext.
type ViewerResolver func(RequestContext) dashboard.ViewerContext

// RequestContext is the part of router.Context the handlers read and write.
type RequestContext interface {
	Context() context.Context
	Body() []byte
	Param(name string, defaultValue ...string) string
	Query(name string, defaultValue ...string) string
	Header(key string) string
	Locals(key any, value ...any) any
	SetHeader(key, value string) router.Context
	Send(body []byte) error
	JSON(code int, v any) error
}

// Routes is the part of a go-router router the package mounts on.
type Routes interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// Config wires go-router with the data view controller, commands and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            *httpapi.Handlers
	Window         gocommand.Querier[queries.WindowInput, table.VirtualPage]
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for data view endpoints.
type RouteConfig struct {
	Index     string
	Sessions  string
	Session   string
	State     string
	Table     string
	Chart     string
	Ask       string
	Refresh   string
	Window    string
	Events    string
	WebSocket string
}

// Register mounts the data view routes (HTML, JSON, commands, WebSocket) on
// a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/admin/dataview"
	}
	mount(cfg.Router.Group(base), mountOptions{
		controller: cfg.Controller,
		api:        cfg.API,
		window:     cfg.Window,
		broadcast:  cfg.Broadcast,
		resolver:   cfg.ViewerResolver,
		routes:     defaultRouteConfig(cfg.Routes),
	})
	return nil
}

type mountOptions struct {
	controller *dashboard.Controller
	api        *httpapi.Handlers
	window     gocommand.Querier[queries.WindowInput, table.VirtualPage]
	broadcast  *dashboard.BroadcastHook
	resolver   ViewerResolver
	routes     RouteConfig
}

type endpoint struct {
	method  string
	path    string
	handler func(RequestContext) error
}

func mount(r Routes, opts mountOptions) {
	for _, ep := range endpoints(opts) {
		h := handle(ep.handler)
		switch ep.method {
		case http.MethodPost:
			r.Post(ep.path, h)
		case http.MethodDelete:
			r.Delete(ep.path, h)
		default:
			r.Get(ep.path, h)
		}
	}
	if opts.broadcast != nil {
		registerWebSocket(r, opts.broadcast, opts.routes.WebSocket)
	}
}

func endpoints(opts mountOptions) []endpoint {
	resolver := opts.resolver
	if resolver == nil {
		resolver = defaultViewerResolver
	}
	routes := opts.routes
	controller := opts.controller

	out := []endpoint{
		{http.MethodGet, routes.Index, func(ctx RequestContext) error {
			var buf bytes.Buffer
			if err := controller.RenderIndex(ctx.Context(), resolver(ctx), &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return sendHTML(ctx, buf.Bytes())
		}},
		{http.MethodGet, routes.Session, func(ctx RequestContext) error {
			var buf bytes.Buffer
			if err := controller.RenderSession(ctx.Context(), ctx.Param("id"), &buf); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return sendHTML(ctx, buf.Bytes())
		}},
		{http.MethodGet, routes.State, func(ctx RequestContext) error {
			payload, err := controller.SessionPayload(ctx.Context(), ctx.Param("id"))
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, payload)
		}},
	}
	if opts.api != nil {
		out = append(out, apiEndpoints(opts.api, resolver, routes)...)
	}
	if opts.window != nil {
		out = append(out, windowEndpoint(opts.window, routes.Window))
	}
	return out
}

func apiEndpoints(api *httpapi.Handlers, resolver ViewerResolver, routes RouteConfig) []endpoint {
	var out []endpoint
	if api.Open != nil {
		out = append(out, endpoint{http.MethodPost, routes.Sessions, func(ctx RequestContext) error {
			var payload struct {
				Code          string         `json:"code"`
				Configuration map[string]any `json:"configuration,omitempty"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			var result commands.OpenSessionResult
			input := commands.OpenSessionInput{
				Viewer:        resolver(ctx),
				Code:          payload.Code,
				Configuration: payload.Configuration,
				Result:        &result,
			}
			if err := api.Open.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, result)
		}})
	}
	if api.Close != nil {
		out = append(out, endpoint{http.MethodDelete, routes.Session, func(ctx RequestContext) error {
			if err := api.Close.Execute(ctx.Context(), commands.CloseSessionInput{SessionID: ctx.Param("id")}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "closed"})
		}})
	}
	if api.Refresh != nil {
		out = append(out, endpoint{http.MethodPost, routes.Refresh, func(ctx RequestContext) error {
			if err := api.Refresh.Execute(ctx.Context(), commands.RefreshSessionInput{SessionID: ctx.Param("id")}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusAccepted, map[string]string{"status": "refreshed"})
		}})
	}
	if api.Table != nil {
		out = append(out, endpoint{http.MethodPost, routes.Table, func(ctx RequestContext) error {
			var cmd dashboard.TableCommand
			if err := json.Unmarshal(ctx.Body(), &cmd); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.ApplyTableInput{SessionID: ctx.Param("id"), Command: cmd}
			if err := api.Table.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "applied"})
		}})
	}
	if api.Chart != nil {
		out = append(out, endpoint{http.MethodPost, routes.Chart, func(ctx RequestContext) error {
			var cmd dashboard.ChartCommand
			if err := json.Unmarshal(ctx.Body(), &cmd); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.ApplyChartInput{SessionID: ctx.Param("id"), Command: cmd}
			if err := api.Chart.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "applied"})
		}})
	}
	if api.Ask != nil {
		out = append(out, endpoint{http.MethodPost, routes.Ask, func(ctx RequestContext) error {
			var payload struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			var reply chart.Message
			input := commands.AskInput{SessionID: ctx.Param("id"), Query: payload.Query, Reply: &reply}
			if err := api.Ask.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, reply)
		}})
	}
	if api.Notify != nil {
		out = append(out, endpoint{http.MethodPost, routes.Events, func(ctx RequestContext) error {
			var payload commands.NotifyViewInput
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := api.Notify.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
		}})
	}
	return out
}

func windowEndpoint(window gocommand.Querier[queries.WindowInput, table.VirtualPage], path string) endpoint {
	return endpoint{http.MethodGet, path, func(ctx RequestContext) error {
		input := queries.WindowInput{
			SessionID: ctx.Param("id"),
			Offset:    queryFloat(ctx, "offset"),
			Viewport:  queryFloat(ctx, "viewport"),
		}
		page, err := window.Query(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, page)
	}}
}

func registerWebSocket(r Routes, hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func handle(fn func(RequestContext) error) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return fn(ctx)
	})
}

func sendHTML(ctx RequestContext, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func queryFloat(ctx RequestContext, name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(ctx.Query(name)), 64)
	if err != nil {
		return 0
	}
	return v
}

func defaultViewerResolver(ctx RequestContext) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx RequestContext) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Param("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx RequestContext, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Index == "" {
		routes.Index = "/"
	}
	if routes.Sessions == "" {
		routes.Sessions = "/sessions"
	}
	if routes.Session == "" {
		routes.Session = "/sessions/:id"
	}
	if routes.State == "" {
		routes.State = "/sessions/:id/_state"
	}
	if routes.Table == "" {
		routes.Table = "/sessions/:id/table"
	}
	if routes.Chart == "" {
		routes.Chart = "/sessions/:id/chart"
	}
	if routes.Ask == "" {
		routes.Ask = "/sessions/:id/ask"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/sessions/:id/refresh"
	}
	if routes.Window == "" {
		routes.Window = "/sessions/:id/window"
	}
	if routes.Events == "" {
		routes.Events = "/events"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
