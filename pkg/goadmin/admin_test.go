package goadmin_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-dataview/pkg/activity"
	"github.com/goliatone/go-dataview/pkg/dataview"
	"github.com/goliatone/go-dataview/pkg/goadmin"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item goadmin.MenuItem) error {
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, item)
	return nil
}

func TestAdminBootstrapSeedsOneItemPerWidget(t *testing.T) {
	builder := &stubMenuBuilder{}
	var events []activity.Event
	admin, err := goadmin.New(goadmin.Config{
		EnableDataView: true,
		Service:        dataview.NewService(dataview.Options{}),
		MenuBuilder:    builder,
		StartPosition:  10,
		ActivityHooks: activity.Hooks{activity.HookFunc(func(_ context.Context, evt activity.Event) error {
			events = append(events, evt)
			return nil
		})},
		ActivityConfig: activity.Config{Enabled: true},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != len(dataview.DefaultWidgetDefinitions()) {
		t.Fatalf("expected one item per widget, got %d", len(builder.items))
	}
	for i, item := range builder.items {
		if item.Position != 10+i {
			t.Fatalf("unexpected position %d for %s", item.Position, item.Label)
		}
		if !strings.HasPrefix(item.Path, "/admin/dataview/?open=") {
			t.Fatalf("unexpected path %q", item.Path)
		}
		if !strings.HasPrefix(item.Route, "admin.dataview.") {
			t.Fatalf("unexpected route %q", item.Route)
		}
	}
	if len(events) != 1 || events[0].ObjectID != "admin.main" {
		t.Fatalf("expected one menu activity event, got %+v", events)
	}
	if admin.DataView() == nil {
		t.Fatalf("expected data view service")
	}
}

func TestAdminChartItemsUseChartIcon(t *testing.T) {
	admin, err := goadmin.New(goadmin.Config{
		EnableDataView: true,
		Service:        dataview.NewService(dataview.Options{}),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	icons := map[string]string{}
	for _, item := range admin.MenuItems(context.Background()) {
		icons[item.Label] = item.Icon
	}
	if icons["Monthly Sales"] != "bar-chart" || icons["Orders"] != "table" {
		t.Fatalf("unexpected icons %v", icons)
	}
}

func TestAdminBootstrapWrapsBuilderError(t *testing.T) {
	boom := errors.New("boom")
	admin, err := goadmin.New(goadmin.Config{
		EnableDataView: true,
		Service:        dataview.NewService(dataview.Options{}),
		MenuBuilder:    &stubMenuBuilder{err: boom},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped builder error, got %v", err)
	}
}

func TestAdminRequiresServiceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableDataView: true}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDataView: false,
		MenuBuilder:    builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected no items, got %d", len(builder.items))
	}
	if admin.DataView() != nil {
		t.Fatalf("expected nil service when disabled")
	}
}
