package goadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-dataview/pkg/activity"
	"github.com/goliatone/go-dataview/pkg/dataview"
)

// MenuBuilder ensures data view entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures data view link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Path     string
	Icon     string
	Position int
}

// Config wires the data view service and feature flags into an admin shell.
type Config struct {
	EnableDataView bool
	MenuCode       string
	MenuBuilder    MenuBuilder
	Service        *dataview.Service
	// Viewer decides which widgets get a menu entry.
	Viewer         dataview.ViewerContext
	BasePath       string
	RoutePrefix    string
	StartPosition  int
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg     Config
	emitter *activity.Emitter
}

// New creates an Admin helper that can seed data view menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDataView && cfg.Service == nil {
		return nil, errors.New("goadmin: data view service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/admin/dataview"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "admin.dataview"
	}
	return &Admin{
		cfg:     cfg,
		emitter: activity.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig),
	}, nil
}

// DataView exposes the configured service when enabled.
func (a *Admin) DataView() *dataview.Service {
	if !a.cfg.EnableDataView {
		return nil
	}
	return a.cfg.Service
}

// MenuItems lists one entry per widget the configured viewer may open,
// ordered by widget code.
func (a *Admin) MenuItems(ctx context.Context) []MenuItem {
	if !a.cfg.EnableDataView {
		return nil
	}
	defs := a.cfg.Service.Definitions(ctx, a.cfg.Viewer)
	items := make([]MenuItem, 0, len(defs))
	for i, def := range defs {
		items = append(items, MenuItem{
			Label:    def.Name,
			Route:    a.cfg.RoutePrefix + "." + strcase.ToSnake(def.Code),
			Path:     strings.TrimRight(a.cfg.BasePath, "/") + "/?open=" + def.Code,
			Icon:     iconFor(def),
			Position: a.cfg.StartPosition + i,
		})
	}
	return items
}

// Bootstrap seeds menu entries when data view support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDataView || a.cfg.MenuBuilder == nil {
		return nil
	}
	items := a.MenuItems(ctx)
	for _, item := range items {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: ensure %s: %w", item.Route, err)
		}
	}
	return a.emitter.Emit(ctx, activity.Event{
		Verb:       activity.VerbUpdate,
		ObjectType: "menu",
		ObjectID:   a.cfg.MenuCode,
		Metadata:   map[string]any{"items": len(items)},
	})
}

func iconFor(def dataview.WidgetDefinition) string {
	if def.Kind == dataview.KindChart {
		return "bar-chart"
	}
	return "table"
}
